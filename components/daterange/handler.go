package daterange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/middleware"
	chirender "github.com/go-chi/render"

	"github.com/goliatone/go-daterange/internal/sl"
	"github.com/goliatone/go-daterange/pkg/binding"
	"github.com/goliatone/go-daterange/pkg/daterange"
	"github.com/goliatone/go-daterange/pkg/openapi"
	"github.com/goliatone/go-daterange/pkg/render"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler builds a net/http handler with default options plus any overrides.
func Handler(fns ...OptionFn) (http.Handler, error) {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) (http.Handler, error) {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions builds a handler from a pre-constructed Options value.
// The OpenAPI document describes the routes relative to opts.RoutePath; use
// RegisterRoutesWithOptions when mounting under a base path.
func HandlerWithOptions(opts Options) (http.Handler, error) {
	opts = NewOptions(func(o *Options) { *o = opts })
	return newHandler(opts, mountPath("", opts.RoutePath))
}

type handler struct {
	opts      Options
	mount     string
	renderers *render.Registry
	doc       *openapi.Document
}

func newHandler(opts Options, mount string) (*handler, error) {
	renderers, err := buildRegistry(opts)
	if err != nil {
		return nil, err
	}
	doc, err := buildDocument(mount)
	if err != nil {
		return nil, err
	}
	return &handler{
		opts:      opts,
		mount:     mount,
		renderers: renderers,
		doc:       doc,
	}, nil
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if h.opts.Guard != nil {
		if err := h.opts.Guard(r); err != nil {
			writeGuardError(w, err)
			return
		}
	}

	switch {
	case strings.HasSuffix(r.URL.Path, viewSuffix):
		if !allowRead(w, r) {
			return
		}
		h.serveView(w, r)
	case strings.HasSuffix(r.URL.Path, openAPISuffix):
		if !allowRead(w, r) {
			return
		}
		h.doc.Handler().ServeHTTP(w, r)
	default:
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			h.serveForm(w, r)
		case http.MethodPost:
			h.submit(w, r)
		default:
			w.Header().Set("Allow", strings.Join([]string{http.MethodGet, http.MethodHead, http.MethodPost}, ", "))
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		}
	}
}

func allowRead(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}

// newField builds a fresh store and field for a single request.
func (h *handler) newField(props daterange.Props) (*daterange.Field, *binding.Store, error) {
	store := binding.NewStore()
	props.Control = store
	field, err := daterange.New(props,
		daterange.WithClock(h.opts.Clock),
		daterange.WithLocation(h.opts.Location),
	)
	if err != nil {
		return nil, nil, err
	}
	return field, store, nil
}

func (h *handler) serveForm(w http.ResponseWriter, r *http.Request) {
	const op = "daterange.handler.serveForm"

	log := h.logger(r, op)

	field, _, err := h.newField(daterange.Props{})
	if err != nil {
		log.Error("failed to mount field", sl.Err(err))
		h.writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	prefill(field, r.URL.Query())

	h.writeComponent(w, r, log, http.StatusOK, field)
}

func (h *handler) serveView(w http.ResponseWriter, r *http.Request) {
	const op = "daterange.handler.serveView"

	log := h.logger(r, op)

	field, _, err := h.newField(daterange.Props{})
	if err != nil {
		log.Error("failed to mount field", sl.Err(err))
		h.writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	prefill(field, r.URL.Query())

	chirender.Status(r, http.StatusOK)
	chirender.JSON(w, r, field.View())
}

func (h *handler) submit(w http.ResponseWriter, r *http.Request) {
	const op = "daterange.handler.submit"

	log := h.logger(r, op)

	values, payloadErrors, err := h.readSubmission(w, r)
	if err != nil {
		log.Info("rejected submission body", sl.Err(err))
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	var query Query
	field, store, err := h.newField(daterange.Props{})
	if err != nil {
		log.Error("failed to mount field", sl.Err(err))
		h.writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	ctx := r.Context()
	today := daterange.Today(h.opts.Clock(), h.opts.Location)
	field.SetProps(daterange.Props{
		Control: store,
		OnSubmit: store.HandleSubmit(func(bound binding.Values) error {
			checked, messages := CheckRange(daterange.ValuesFrom(bound), today)
			if len(messages) > 0 {
				return &RangeError{Messages: messages}
			}
			query = checked
			return h.search(ctx, checked)
		}),
	})

	field.ChangeStart(values.StartDate)
	field.ChangeEnd(values.EndDate)

	if len(payloadErrors) > 0 {
		log.Info("submission failed schema validation", slog.Any("errors", payloadErrors))
		field.SetProps(render.MapErrorPayload(payloadErrors).Apply(field.Props()))
		h.writeComponent(w, r, log, http.StatusUnprocessableEntity, field)
		return
	}

	status, props := h.outcome(log, field.Submit(), store, field.Props())
	if status == http.StatusOK && h.opts.SuccessURL != "" {
		http.Redirect(w, r, successLocation(h.opts.SuccessURL, query), http.StatusSeeOther)
		return
	}

	field.SetProps(props)
	h.writeComponent(w, r, log, status, field)
}

// outcome maps the submit result onto a status code and the props the form
// is re-rendered with.
func (h *handler) outcome(log *slog.Logger, err error, store *binding.Store, props daterange.Props) (int, daterange.Props) {
	if err == nil {
		log.Info("search accepted")
		return http.StatusOK, props
	}

	var validationErr *binding.ValidationError
	if errors.As(err, &validationErr) {
		log.Info("submission failed validation", slog.Any("fields", validationErr.Fields))
		return http.StatusUnprocessableEntity, props.WithFieldErrors(store)
	}

	var rangeErr *RangeError
	if errors.As(err, &rangeErr) {
		log.Info("submission failed range check", slog.Any("messages", rangeErr.Messages))
		props.ErrorMessages = render.MergeFormErrors(props.ErrorMessages, rangeErr.Messages...)
		return http.StatusUnprocessableEntity, props
	}

	var searchErr *SearchError
	if errors.As(err, &searchErr) && len(searchErr.Payload) > 0 {
		log.Info("search rejected range", sl.Err(err))
		return http.StatusUnprocessableEntity, render.MapErrorPayload(searchErr.Payload).Apply(props)
	}

	log.Error("search failed", sl.Err(err))
	props.ErrorMessages = render.MergeFormErrors(props.ErrorMessages, SearchFailedMessage)
	return http.StatusBadGateway, props
}

func (h *handler) search(ctx context.Context, query Query) error {
	if h.opts.Searcher == nil {
		return nil
	}
	return h.opts.Searcher.Search(ctx, query)
}

// readSubmission decodes a JSON or form body. JSON bodies are checked against
// the submission schema; schema failures are returned keyed by field.
func (h *handler) readSubmission(w http.ResponseWriter, r *http.Request) (daterange.FormValues, map[string][]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)

	if chirender.GetRequestContentType(r) == chirender.ContentTypeJSON {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return daterange.FormValues{}, nil, fmt.Errorf("decode json: %w", err)
		}
		if body == nil {
			body = map[string]any{}
		}
		values := daterange.FormValues{
			StartDate: stringValue(body[daterange.StartDateField]),
			EndDate:   stringValue(body[daterange.EndDateField]),
		}
		return values, h.doc.ValidateSubmission(body), nil
	}

	if err := r.ParseForm(); err != nil {
		return daterange.FormValues{}, nil, fmt.Errorf("parse form: %w", err)
	}
	return daterange.FormValues{
		StartDate: r.PostForm.Get(daterange.StartDateField),
		EndDate:   r.PostForm.Get(daterange.EndDateField),
	}, nil, nil
}

func (h *handler) writeComponent(w http.ResponseWriter, r *http.Request, log *slog.Logger, status int, field *daterange.Field) {
	renderer, err := h.renderers.Negotiate(r.Header.Get("Accept"))
	if err != nil {
		log.Error("no renderer available", sl.Err(err))
		h.writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	body, err := renderer.Render(r.Context(), field, h.renderOptions(r))
	if err != nil {
		log.Error("failed to render form", slog.String("renderer", renderer.Name()), sl.Err(err))
		h.writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(body)
}

func (h *handler) renderOptions(r *http.Request) render.RenderOptions {
	options := render.RenderOptions{
		Action: h.mount,
		Method: http.MethodPost,
	}
	if h.opts.CSRFField != "" && h.opts.CSRFToken != nil {
		options.Hidden = render.MergeHiddenFields(nil, render.CSRFToken(h.opts.CSRFField, h.opts.CSRFToken(r)))
	}
	return options
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	chirender.Status(r, status)
	chirender.JSON(w, r, errorResponse{Error: message})
}

func (h *handler) logger(r *http.Request, op string) *slog.Logger {
	return h.opts.Logger.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func prefill(field *daterange.Field, query url.Values) {
	if start := query.Get(daterange.StartDateField); start != "" {
		field.ChangeStart(start)
	}
	if end := query.Get(daterange.EndDateField); end != "" {
		field.ChangeEnd(end)
	}
}

func successLocation(target string, query Query) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set(daterange.StartDateField, query.StartDate)
	q.Set(daterange.EndDateField, query.EndDate)
	u.RawQuery = q.Encode()
	return u.String()
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}
