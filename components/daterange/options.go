package daterange

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/goliatone/go-daterange/pkg/render"
)

type GuardFunc func(r *http.Request) error

// Query is a validated range handed to the Searcher.
type Query struct {
	StartDate string
	EndDate   string
	Start     time.Time
	End       time.Time
}

// Searcher runs the host's search for a validated range. Returning a
// *SearchError with a payload maps the messages back onto the form; any other
// error is reported as a failed search.
type Searcher interface {
	Search(ctx context.Context, query Query) error
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, query Query) error

func (f SearcherFunc) Search(ctx context.Context, query Query) error {
	return f(ctx, query)
}

type Options struct {
	RoutePath string
	// SuccessURL, when set, turns a successful submission into a 303 redirect
	// carrying the range in the query string.
	SuccessURL string
	// AssetsPath is the URL prefix the embedded stylesheet and runtime script
	// are served under. Empty leaves asset tags out of the markup.
	AssetsPath   string
	TemplatesDir string
	MaxBodyBytes int64

	Searcher Searcher
	Guard    GuardFunc
	Logger   *slog.Logger
	Location *time.Location
	Clock    func() time.Time

	// CSRFField and CSRFToken emit a hidden token input. Verification is left
	// to middleware in front of the handler, such as gorilla/csrf.
	CSRFField string
	CSRFToken func(r *http.Request) string

	// Renderers overrides the negotiated renderers. The first one registered is
	// the fallback.
	Renderers []render.Renderer
}

type OptionFn func(*Options)

const (
	defaultRoutePath    = "/daterange"
	defaultMaxBodyBytes = 1 << 16
)

func DefaultOptions() Options {
	return Options{
		RoutePath:    defaultRoutePath,
		MaxBodyBytes: defaultMaxBodyBytes,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Location:     time.UTC,
		Clock:        time.Now,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = defaultRoutePath
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Renderers != nil {
		opts.Renderers = append([]render.Renderer{}, opts.Renderers...)
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithSuccessURL(url string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SuccessURL = url
	}
}

func WithAssetsPath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.AssetsPath = path
	}
}

func WithTemplatesDir(dir string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.TemplatesDir = dir
	}
}

func WithMaxBodyBytes(n int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxBodyBytes = n
	}
}

func WithSearcher(searcher Searcher) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Searcher = searcher
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func WithLocation(loc *time.Location) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Location = loc
	}
}

func WithClock(clock func() time.Time) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Clock = clock
	}
}

func WithCSRF(field string, token func(r *http.Request) string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.CSRFField = field
		o.CSRFToken = token
	}
}

func WithRenderers(renderers ...render.Renderer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Renderers = append([]render.Renderer{}, renderers...)
	}
}
