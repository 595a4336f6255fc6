package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-daterange/pkg/binding"
	"github.com/goliatone/go-daterange/pkg/daterange"
)

// FixedNow is the instant fixtures render against. Its UTC calendar date is
// 2024-05-15.
var FixedNow = time.Date(2024, time.May, 15, 10, 30, 0, 0, time.UTC)

// FixedToday is the calendar date of FixedNow in UTC.
const FixedToday = "2024-05-15"

// NewStore returns a binding store with start and end preset. Empty values
// are left unset.
func NewStore(start, end string) *binding.Store {
	defaults := binding.Values{}
	if start != "" {
		defaults[daterange.StartDateField] = start
	}
	if end != "" {
		defaults[daterange.EndDateField] = end
	}
	return binding.NewStore(binding.WithDefaults(defaults))
}

// NewField builds a date range field pinned to FixedNow. When props carries no
// control a store seeded with start and end is attached. A non-empty start is
// replayed through ChangeStart so the end input is enabled the way it would be
// after user input.
func NewField(t *testing.T, props daterange.Props, start, end string) *daterange.Field {
	t.Helper()

	if props.Control == nil {
		props.Control = NewStore(start, end)
	}
	field, err := daterange.New(props, daterange.WithClock(func() time.Time { return FixedNow }))
	if err != nil {
		t.Fatalf("new field: %v", err)
	}
	if start != "" {
		field.ChangeStart(start)
	}
	return field
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}
