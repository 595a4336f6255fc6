// Package openapi describes the date range submission as an OpenAPI 3
// document. The document is assembled from the daterange rules, loaded and
// validated with kin-openapi, and reused to check JSON submissions before they
// reach the binding engine.
package openapi
