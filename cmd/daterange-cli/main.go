package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	component "github.com/goliatone/go-daterange/components/daterange"
	"github.com/goliatone/go-daterange/pkg/binding"
	"github.com/goliatone/go-daterange/pkg/daterange"
	"github.com/goliatone/go-daterange/pkg/render"
	"github.com/goliatone/go-daterange/pkg/renderers/jsonview"
	"github.com/goliatone/go-daterange/pkg/renderers/tui"
	"github.com/goliatone/go-daterange/pkg/renderers/vanilla"
)

type messageList []string

func (m *messageList) String() string { return strings.Join(*m, ", ") }

func (m *messageList) Set(value string) error {
	*m = append(*m, value)
	return nil
}

type cliOptions struct {
	renderer  string
	start     string
	end       string
	fetching  bool
	messages  []string
	format    string
	timezone  string
	action    string
	styles    bool
	templates string
}

func main() {
	var (
		opts     cliOptions
		messages messageList
	)
	flag.StringVar(&opts.renderer, "renderer", "vanilla", "renderer to use (vanilla, json, tui)")
	flag.StringVar(&opts.start, "start", "", "prefilled start date (YYYY-MM-DD)")
	flag.StringVar(&opts.end, "end", "", "prefilled end date (YYYY-MM-DD)")
	flag.BoolVar(&opts.fetching, "fetching", false, "render the in-flight state")
	flag.Var(&messages, "message", "external error message (repeatable)")
	flag.StringVar(&opts.format, "format", string(tui.OutputFormatJSON), "tui output format (json, form, pretty, yaml)")
	flag.StringVar(&opts.timezone, "timezone", "UTC", "timezone used to derive today")
	flag.StringVar(&opts.action, "action", "", "form action URL")
	flag.BoolVar(&opts.styles, "styles", false, "inline the default stylesheet (vanilla)")
	flag.StringVar(&opts.templates, "templates", "", "template directory overriding the embedded bundle (vanilla)")
	output := flag.String("output", "", "output file (stdout if empty)")
	flag.Parse()
	opts.messages = messages

	out, err := run(context.Background(), opts)
	if err != nil {
		log.Fatalf("Failed to render date range: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, out, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Date range written to %s\n", *output)
		return
	}
	writeOutput(os.Stdout, out)
}

func run(ctx context.Context, opts cliOptions) ([]byte, error) {
	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", opts.timezone, err)
	}

	registry, err := buildRegistry(opts)
	if err != nil {
		return nil, err
	}
	renderer, err := registry.Get(opts.renderer)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(registry.List(), ", "))
	}

	store := binding.NewStore()
	today := func() string { return daterange.Today(time.Now(), loc) }
	field, err := daterange.New(daterange.Props{
		IsFetching:    opts.fetching,
		Control:       store,
		ErrorMessages: opts.messages,
		OnSubmit: store.HandleSubmit(func(values binding.Values) error {
			if _, messages := component.CheckRange(daterange.ValuesFrom(values), today()); len(messages) > 0 {
				return &component.RangeError{Messages: messages}
			}
			return nil
		}),
	}, daterange.WithLocation(loc))
	if err != nil {
		return nil, err
	}

	if opts.start != "" {
		field.ChangeStart(opts.start)
	}
	if opts.end != "" {
		field.ChangeEnd(opts.end)
	}

	return renderer.Render(ctx, field, render.RenderOptions{Action: opts.action})
}

func buildRegistry(opts cliOptions) (*render.Registry, error) {
	registry := render.NewRegistry()

	vanillaOpts := []vanilla.Option{vanilla.WithTemplatesDir(opts.templates)}
	if opts.styles {
		vanillaOpts = append(vanillaOpts, vanilla.WithDefaultStyles())
	}
	html, err := vanilla.New(vanillaOpts...)
	if err != nil {
		return nil, err
	}
	registry.MustRegister(html)
	registry.MustRegister(jsonview.New(jsonview.WithIndent("  ")))

	if opts.renderer == "tui" {
		format, ok := tui.ParseOutputFormat(opts.format)
		if !ok {
			return nil, fmt.Errorf("unknown output format %q", opts.format)
		}
		terminal, err := tui.New(tui.WithOutputFormat(format))
		if err != nil {
			return nil, err
		}
		registry.MustRegister(terminal)
	}
	return registry, nil
}

func writeOutput(w io.Writer, out []byte) {
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	_, _ = w.Write(out)
}
