package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/gorilla/csrf"

	"github.com/goliatone/go-daterange/components/daterange"
	"github.com/goliatone/go-daterange/internal/config"
	"github.com/goliatone/go-daterange/internal/sl"
	"github.com/goliatone/go-daterange/pkg/renderers/vanilla"
)

var errCSRFRejected = errors.New("csrf token rejected")

type errorResponse struct {
	Error string `json:"error"`
}

// RegisterRoutes mounts the middleware stack, the embedded assets and the date
// range component on r.
func RegisterRoutes(r chi.Router, cfg *config.Config, logger *slog.Logger, searcher daterange.Searcher) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	if err := cfg.CSRF.Validate(); err != nil {
		return err
	}

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	fns := []daterange.OptionFn{
		daterange.WithRoutePath("/"),
		daterange.WithLogger(logger),
		daterange.WithLocation(loc),
		daterange.WithSearcher(searcher),
		daterange.WithTemplatesDir(cfg.TemplatesDir),
		daterange.WithSuccessURL(cfg.SuccessURL),
	}
	if cfg.CSRF.Enabled() {
		r.Use(csrfProtection(cfg.CSRF, logger))
		fns = append(fns, daterange.WithCSRF(cfg.CSRF.Field, csrf.Token))
	}

	assets := strings.TrimRight(cfg.AssetsPath, "/")
	if assets != "" {
		r.Handle(assets+"/*", http.StripPrefix(assets+"/", http.FileServer(http.FS(vanilla.AssetsFS()))))
		fns = append(fns, daterange.WithAssetsPath(assets))
	}

	_, err = daterange.RegisterRoutes(r, cfg.BasePath, fns...)
	return err
}

// csrfProtection verifies the token on unsafe methods. The token is read from
// the X-CSRF-Token header first, then from the form field. Without Secure the
// cookie is sent over plain http and the https Referer check is skipped.
func csrfProtection(cfg config.CSRF, logger *slog.Logger) func(http.Handler) http.Handler {
	protect := csrf.Protect([]byte(cfg.Key),
		csrf.FieldName(cfg.Field),
		csrf.Path("/"),
		csrf.Secure(cfg.Secure),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "server.csrf"

			reason := csrf.FailureReason(r)
			if reason == nil {
				reason = errCSRFRejected
			}
			logger.Warn("csrf check failed",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				sl.Err(reason),
			)
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, errorResponse{Error: "invalid csrf token"})
		})),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		if cfg.Secure {
			return protected
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			protected.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
