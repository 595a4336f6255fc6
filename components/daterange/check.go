package daterange

import (
	"strings"
	"time"

	"github.com/goliatone/go-daterange/pkg/daterange"
)

const (
	InvalidStartCalendarMessage = "Start Date is not a valid calendar date"
	InvalidEndCalendarMessage   = "End Date is not a valid calendar date"
	EndBeforeStartMessage       = "End Date must be on or after Start Date"
	StartInFutureMessage        = "Start Date cannot be after today"
	EndInFutureMessage          = "End Date cannot be after today"
	SearchFailedMessage         = "Search failed. Please try again."
)

// RangeError carries the messages produced by CheckRange.
type RangeError struct {
	Messages []string
}

func (e *RangeError) Error() string {
	return "daterange: invalid range: " + strings.Join(e.Messages, "; ")
}

// SearchError lets a Searcher report messages keyed by field path (see
// render.MapErrorPayload for the accepted key shapes).
type SearchError struct {
	Payload map[string][]string
	Err     error
}

func (e *SearchError) Error() string {
	if e.Err != nil {
		return "daterange: search rejected: " + e.Err.Error()
	}
	return "daterange: search rejected"
}

func (e *SearchError) Unwrap() error { return e.Err }

// CheckRange applies the calendar and ordering rules the date pattern leaves
// open. today is the YYYY-MM-DD upper bound shown on the inputs.
func CheckRange(values daterange.FormValues, today string) (Query, []string) {
	var messages []string

	start, startErr := time.Parse(daterange.DateLayout, values.StartDate)
	if startErr != nil {
		messages = append(messages, InvalidStartCalendarMessage)
	}
	end, endErr := time.Parse(daterange.DateLayout, values.EndDate)
	if endErr != nil {
		messages = append(messages, InvalidEndCalendarMessage)
	}

	if startErr == nil && today != "" && values.StartDate > today {
		messages = append(messages, StartInFutureMessage)
	}
	if endErr == nil && today != "" && values.EndDate > today {
		messages = append(messages, EndInFutureMessage)
	}
	if startErr == nil && endErr == nil && end.Before(start) {
		messages = append(messages, EndBeforeStartMessage)
	}

	return Query{
		StartDate: values.StartDate,
		EndDate:   values.EndDate,
		Start:     start,
		End:       end,
	}, messages
}
