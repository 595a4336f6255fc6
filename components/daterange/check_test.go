package daterange

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-daterange/pkg/daterange"
)

func TestCheckRange(t *testing.T) {
	tests := []struct {
		name   string
		values daterange.FormValues
		want   []string
	}{
		{
			name:   "same day",
			values: daterange.FormValues{StartDate: "2024-05-15", EndDate: "2024-05-15"},
		},
		{
			name:   "leap day",
			values: daterange.FormValues{StartDate: "2024-02-29", EndDate: "2024-03-01"},
		},
		{
			name:   "not a leap year",
			values: daterange.FormValues{StartDate: "2023-02-29", EndDate: "2023-03-01"},
			want:   []string{InvalidStartCalendarMessage},
		},
		{
			name:   "both invalid",
			values: daterange.FormValues{StartDate: "2024-13-01", EndDate: "2024-04-31"},
			want:   []string{InvalidStartCalendarMessage, InvalidEndCalendarMessage},
		},
		{
			name:   "reversed and future",
			values: daterange.FormValues{StartDate: "2024-06-02", EndDate: "2024-06-01"},
			want:   []string{StartInFutureMessage, EndInFutureMessage, EndBeforeStartMessage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := CheckRange(tt.values, "2024-05-15")
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("messages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckRange_ParsesQuery(t *testing.T) {
	query, messages := CheckRange(daterange.FormValues{StartDate: "2024-05-01", EndDate: "2024-05-10"}, "")

	if len(messages) != 0 {
		t.Fatalf("expected no messages, got %v", messages)
	}
	if want := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC); !query.End.Equal(want) {
		t.Fatalf("expected end %s, got %s", want, query.End)
	}
	if query.StartDate != "2024-05-01" {
		t.Fatalf("unexpected start date %q", query.StartDate)
	}
}

func TestErrorTypes(t *testing.T) {
	rangeErr := &RangeError{Messages: []string{"a", "b"}}
	if got := rangeErr.Error(); got != "daterange: invalid range: a; b" {
		t.Fatalf("unexpected range error %q", got)
	}

	searchErr := &SearchError{}
	if got := searchErr.Error(); got != "daterange: search rejected" {
		t.Fatalf("unexpected search error %q", got)
	}
	if searchErr.Unwrap() != nil {
		t.Fatalf("expected nil unwrap")
	}
}
