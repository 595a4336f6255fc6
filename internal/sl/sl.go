// Package sl holds small helpers for building slog attributes.
package sl

import "log/slog"

// Err returns an slog.Attr with the key "error" and the error text.
//
//	log.Error("search failed", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
