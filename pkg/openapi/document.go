package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"

	"github.com/goliatone/go-daterange/pkg/daterange"
)

const (
	// SearchOperationID identifies the submit operation.
	SearchOperationID = "searchByDateRange"
	// ViewOperationID identifies the JSON view operation.
	ViewOperationID = "getDateRangeView"

	contentJSON = "application/json"
	contentForm = "application/x-www-form-urlencoded"
	contentHTML = "text/html"
)

// Options configure the generated document.
type Options struct {
	Title     string
	Version   string
	BasePath  string
	ServerURL string
}

// Option mutates Options.
type Option func(*Options)

// WithTitle sets info.title.
func WithTitle(title string) Option {
	return func(o *Options) {
		if t := strings.TrimSpace(title); t != "" {
			o.Title = t
		}
	}
}

// WithVersion sets info.version.
func WithVersion(version string) Option {
	return func(o *Options) {
		if v := strings.TrimSpace(version); v != "" {
			o.Version = v
		}
	}
}

// WithBasePath prefixes the operation paths.
func WithBasePath(base string) Option {
	return func(o *Options) {
		o.BasePath = base
	}
}

// WithServerURL adds a servers entry.
func WithServerURL(url string) Option {
	return func(o *Options) {
		o.ServerURL = strings.TrimSpace(url)
	}
}

// Document is a loaded and validated OpenAPI description of the date range
// endpoints.
type Document struct {
	raw        []byte
	spec       *openapi3.T
	searchPath string
	viewPath   string
}

// New builds, loads and validates the document.
func New(ctx context.Context, options ...Option) (*Document, error) {
	opts := Options{Title: "Date range search", Version: "1.0.0"}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}

	searchPath := joinPath(opts.BasePath, "/")
	viewPath := joinPath(opts.BasePath, "/view.json")

	raw, err := json.Marshal(build(opts, searchPath, viewPath))
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal document: %w", err)
	}

	doc, err := Load(ctx, raw)
	if err != nil {
		return nil, err
	}
	doc.searchPath = searchPath
	doc.viewPath = viewPath
	return doc, nil
}

// Load parses and validates an OpenAPI document. The search operation is
// located by its operation id.
func Load(ctx context.Context, raw []byte) (*Document, error) {
	if len(raw) == 0 {
		return nil, errors.New("openapi: raw document is empty")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx

	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := spec.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: validate document: %w", err)
	}

	doc := &Document{
		raw:  append([]byte(nil), raw...),
		spec: spec,
	}
	if spec.Paths != nil {
		for path, item := range spec.Paths.Map() {
			if item == nil {
				continue
			}
			if item.Post != nil && item.Post.OperationID == SearchOperationID {
				doc.searchPath = path
			}
			if item.Get != nil && item.Get.OperationID == ViewOperationID {
				doc.viewPath = path
			}
		}
	}
	if doc.searchPath == "" {
		return nil, fmt.Errorf("openapi: operation %q not found", SearchOperationID)
	}
	return doc, nil
}

// Raw returns a copy of the JSON document.
func (d *Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Spec exposes the parsed kin-openapi document.
func (d *Document) Spec() *openapi3.T {
	return d.spec
}

// SearchPath returns the path of the submit operation.
func (d *Document) SearchPath() string {
	return d.searchPath
}

// SearchOperation returns the submit operation.
func (d *Document) SearchOperation() *openapi3.Operation {
	item := d.spec.Paths.Map()[d.searchPath]
	if item == nil {
		return nil
	}
	return item.Post
}

// ViewPath returns the path of the JSON view operation.
func (d *Document) ViewPath() string {
	return d.viewPath
}

// ValidateResponse checks a response written for req against the responses
// documented for the matching operation. Undocumented status codes are
// rejected.
func (d *Document) ValidateResponse(ctx context.Context, req *http.Request, status int, header http.Header, body []byte) error {
	route, err := d.route(req)
	if err != nil {
		return err
	}
	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request: req,
			Route:   route,
		},
		Status:  status,
		Header:  header,
		Options: &openapi3filter.Options{IncludeResponseStatus: true},
	}
	input.SetBodyBytes(body)
	if err := openapi3filter.ValidateResponse(ctx, input); err != nil {
		return fmt.Errorf("openapi: %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func (d *Document) route(req *http.Request) (*routers.Route, error) {
	if req == nil || req.URL == nil {
		return nil, errors.New("openapi: request is required")
	}
	item := d.spec.Paths.Find(req.URL.Path)
	if item == nil {
		return nil, fmt.Errorf("openapi: no path for %s", req.URL.Path)
	}
	method := req.Method
	if method == http.MethodHead {
		method = http.MethodGet
	}
	op := item.GetOperation(method)
	if op == nil {
		return nil, fmt.Errorf("openapi: no operation for %s %s", req.Method, req.URL.Path)
	}
	return &routers.Route{
		Spec:      d.spec,
		Path:      req.URL.Path,
		PathItem:  item,
		Method:    req.Method,
		Operation: op,
	}, nil
}

// ValidateSubmission checks a decoded JSON body against the submit request
// schema. The result is keyed by field name and is empty when the body is
// valid; it feeds render.MapErrorPayload directly.
func (d *Document) ValidateSubmission(body map[string]any) map[string][]string {
	schema := d.requestSchema()
	if schema == nil {
		return nil
	}

	err := schema.VisitJSON(body, openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	out := make(map[string][]string)
	for _, item := range flattenErrors(err) {
		key, message := describe(item)
		if !contains(out[key], message) {
			out[key] = append(out[key], message)
		}
	}
	return out
}

func (d *Document) requestSchema() *openapi3.Schema {
	op := d.SearchOperation()
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	media := op.RequestBody.Value.Content.Get(contentJSON)
	if media == nil || media.Schema == nil {
		return nil
	}
	return media.Schema.Value
}

func flattenErrors(err error) []error {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []error
		for _, item := range multi {
			out = append(out, flattenErrors(item)...)
		}
		return out
	}
	return []error{err}
}

// describe maps a schema failure onto the field it concerns and the message
// the binding engine would report for the same failure.
func describe(err error) (string, string) {
	var schemaErr *openapi3.SchemaError
	if !errors.As(err, &schemaErr) {
		return "", err.Error()
	}

	pointer := schemaErr.JSONPointer()
	if len(pointer) == 0 {
		return "", schemaErr.Reason
	}
	field := pointer[0]

	switch schemaErr.SchemaField {
	case "required":
		if msg := requiredMessage(field); msg != "" {
			return field, msg
		}
	case "pattern":
		// An empty string fails the pattern too; report it as missing.
		if value, ok := schemaErr.Value.(string); ok && value == "" {
			if msg := requiredMessage(field); msg != "" {
				return field, msg
			}
		}
		return field, daterange.InvalidDateMessage
	case "type":
		return field, "must be a string in YYYY-MM-DD form"
	}
	return field, schemaErr.Reason
}

func requiredMessage(field string) string {
	switch field {
	case daterange.StartDateField:
		return daterange.StartRequiredMessage
	case daterange.EndDateField:
		return daterange.EndRequiredMessage
	}
	return ""
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func joinPath(base, suffix string) string {
	base = "/" + strings.Trim(strings.TrimSpace(base), "/")
	if base == "/" {
		return suffix
	}
	if suffix == "/" {
		return base
	}
	return base + suffix
}

func build(opts Options, searchPath, viewPath string) map[string]any {
	dateSchema := map[string]any{
		"type":        "string",
		"pattern":     daterange.DatePattern.String(),
		"description": "Calendar date as YYYY-MM-DD. Only the shape is checked.",
		"example":     "2024-05-01",
	}
	rangeSchema := map[string]any{
		"type":     "object",
		"required": []string{daterange.StartDateField, daterange.EndDateField},
		"properties": map[string]any{
			daterange.StartDateField: dateSchema,
			daterange.EndDateField:   dateSchema,
		},
	}
	errorSchema := map[string]any{
		"type":     "object",
		"required": []string{"error"},
		"properties": map[string]any{
			"error": map[string]any{"type": "string"},
		},
	}
	inputSchema := map[string]any{
		"type":     "object",
		"required": []string{"id", "name", "label", "type", "value", "required", "disabled", "invalid"},
		"properties": map[string]any{
			"id":         map[string]any{"type": "string"},
			"name":       map[string]any{"type": "string"},
			"label":      map[string]any{"type": "string"},
			"type":       map[string]any{"type": "string"},
			"value":      map[string]any{"type": "string"},
			"min":        map[string]any{"type": "string"},
			"max":        map[string]any{"type": "string"},
			"required":   map[string]any{"type": "boolean"},
			"disabled":   map[string]any{"type": "boolean"},
			"invalid":    map[string]any{"type": "boolean"},
			"helperText": map[string]any{"type": "string"},
		},
	}
	viewSchema := map[string]any{
		"type":     "object",
		"required": []string{"today", "start", "end", "submit"},
		"properties": map[string]any{
			"today":    map[string]any{"type": "string"},
			"start":    inputSchema,
			"end":      inputSchema,
			"messages": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"submit": map[string]any{
				"type":     "object",
				"required": []string{"label", "idleLabel", "loadingLabel", "type", "disabled"},
				"properties": map[string]any{
					"label":        map[string]any{"type": "string"},
					"idleLabel":    map[string]any{"type": "string"},
					"loadingLabel": map[string]any{"type": "string"},
					"type":         map[string]any{"type": "string"},
					"disabled":     map[string]any{"type": "boolean"},
				},
			},
		},
	}
	payloadSchema := map[string]any{
		"type":     "object",
		"required": []string{"form", "view"},
		"properties": map[string]any{
			"form": map[string]any{
				"type":     "object",
				"required": []string{"id", "method"},
				"properties": map[string]any{
					"id":     map[string]any{"type": "string"},
					"method": map[string]any{"type": "string"},
					"action": map[string]any{"type": "string"},
				},
			},
			"view": viewSchema,
			"hidden": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"name", "value"},
					"properties": map[string]any{
						"name":  map[string]any{"type": "string"},
						"value": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
	// Form responses are negotiated: JSON clients get the payload, browsers
	// get the rendered markup.
	formContent := map[string]any{
		contentJSON: map[string]any{"schema": payloadSchema},
		contentHTML: map[string]any{},
	}
	errorContent := map[string]any{
		contentJSON: map[string]any{"schema": errorSchema},
	}

	doc := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   opts.Title,
			"version": opts.Version,
		},
		"paths": map[string]any{
			searchPath: map[string]any{
				"post": map[string]any{
					"operationId": SearchOperationID,
					"summary":     daterange.SubmitLabel,
					"requestBody": map[string]any{
						"required": true,
						"content": map[string]any{
							contentJSON: map[string]any{"schema": rangeSchema},
							contentForm: map[string]any{"schema": rangeSchema},
						},
					},
					"responses": map[string]any{
						"200": map[string]any{
							"description": "Search accepted; the form is re-rendered.",
							"content":     formContent,
						},
						"303": map[string]any{"description": "Search accepted; redirect to the results page."},
						"400": map[string]any{
							"description": "The body could not be decoded.",
							"content":     errorContent,
						},
						"422": map[string]any{
							"description": "Field or range errors; the form is re-rendered with messages.",
							"content":     formContent,
						},
						"500": map[string]any{
							"description": "The form could not be rendered.",
							"content":     errorContent,
						},
						"502": map[string]any{
							"description": "The search backend failed; the form is re-rendered with a generic message.",
							"content":     formContent,
						},
					},
				},
			},
			viewPath: map[string]any{
				"get": map[string]any{
					"operationId": ViewOperationID,
					"summary":     "Current field view",
					"parameters": []any{
						map[string]any{"name": daterange.StartDateField, "in": "query", "schema": dateSchema},
						map[string]any{"name": daterange.EndDateField, "in": "query", "schema": dateSchema},
					},
					"responses": map[string]any{
						"200": map[string]any{
							"description": "Field view.",
							"content": map[string]any{
								contentJSON: map[string]any{"schema": viewSchema},
							},
						},
						"500": map[string]any{
							"description": "The field could not be mounted.",
							"content":     errorContent,
						},
					},
				},
			},
		},
	}
	if opts.ServerURL != "" {
		doc["servers"] = []any{map[string]any{"url": opts.ServerURL}}
	}
	return doc
}

// Handler serves the raw document as JSON.
func (d *Document) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentJSON)
		_, _ = w.Write(d.raw)
	})
}
