package daterange

import (
	"regexp"
	"time"

	"github.com/goliatone/go-daterange/pkg/binding"
)

const (
	StartDateField = "startDate"
	EndDateField   = "endDate"

	// DateLayout is the textual form both fields use.
	DateLayout = "2006-01-02"

	StartRequiredMessage = "Start Date is required"
	EndRequiredMessage   = "End Date is required"
	InvalidDateMessage   = "Invalid date format (YYYY-MM-DD)"
)

// DatePattern is the sole structural validator for both fields.
var DatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// StartRules returns the fixed rule set for the start date.
func StartRules() binding.Rules {
	return dateRules(StartRequiredMessage)
}

// EndRules returns the fixed rule set for the end date.
func EndRules() binding.Rules {
	return dateRules(EndRequiredMessage)
}

func dateRules(required string) binding.Rules {
	return binding.Rules{
		Required: required,
		Pattern: &binding.Pattern{
			Value:   DatePattern,
			Message: InvalidDateMessage,
		},
	}
}

// Today truncates now to its calendar date in loc (UTC when nil).
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DateLayout)
}

// FormValues is the typed view of the two bound fields.
type FormValues struct {
	StartDate string `json:"startDate" yaml:"startDate"`
	EndDate   string `json:"endDate" yaml:"endDate"`
}

// ValuesFrom extracts FormValues from a binding snapshot.
func ValuesFrom(values binding.Values) FormValues {
	return FormValues{
		StartDate: values[StartDateField],
		EndDate:   values[EndDateField],
	}
}

// Binding converts the typed values back into a binding snapshot.
func (v FormValues) Binding() binding.Values {
	return binding.Values{
		StartDateField: v.StartDate,
		EndDateField:   v.EndDate,
	}
}
