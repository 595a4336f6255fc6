// Package daterange mounts the date range field as a small net/http component.
//
// The handler serves the form on GET, accepts submissions on POST (form or
// JSON bodies), exposes the field view as JSON under view.json and the OpenAPI
// description of the submission under openapi.json. Each request builds a
// fresh binding store and replays the submitted values through the field, so
// the start date change also drives the end input's bounds on re-render.
//
// Submissions run through the binding engine first (required, then the date
// pattern), then through a calendar and range check, and finally through the
// host Searcher.
package daterange
