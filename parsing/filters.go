package parsing

import (
	"fmt"
	"net/url"
	"time"

	"github.com/formrelay/webform-relay-api/models"
)

// Submission list query parameter names
const (
	// FilterParamStatus restricts results to one delivery state
	FilterParamStatus = "status"

	// FilterParamFormID restricts results to one form
	FilterParamFormID = "form_id"

	// FilterParamFrom restricts results to submissions created at or after
	// this RFC 3339 time
	FilterParamFrom = "from"

	// FilterParamTo restricts results to submissions created before this
	// RFC 3339 time
	FilterParamTo = "to"
)

// ParseSubmissionFilters builds models.SubmissionFilters from URL query
// parameters. Returns a *ParseError describing the first invalid parameter,
// which is safe to show to the user.
func ParseSubmissionFilters(query url.Values) (models.SubmissionFilters, *ParseError) {
	filters := models.SubmissionFilters{}

	if status := query.Get(FilterParamStatus); status != "" {
		statusT := models.SubStatusT(status)

		if !models.ValidSubmissionStatus(statusT) {
			return filters, &ParseError{
				What: fmt.Sprintf("%s query parameter", FilterParamStatus),
				Why:  fmt.Sprintf("\"%s\" is not a recognized status", status),
				FixInstructions: "use one of: pending, processing, " +
					"sent, failed",
			}
		}

		filters.Status = statusT
	}

	filters.FormID = query.Get(FilterParamFormID)

	if from := query.Get(FilterParamFrom); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return filters, &ParseError{
				What:            fmt.Sprintf("%s query parameter", FilterParamFrom),
				Why:             err.Error(),
				FixInstructions: "provide an RFC 3339 timestamp",
			}
		}

		filters.From = t
	}

	if to := query.Get(FilterParamTo); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return filters, &ParseError{
				What:            fmt.Sprintf("%s query parameter", FilterParamTo),
				Why:             err.Error(),
				FixInstructions: "provide an RFC 3339 timestamp",
			}
		}

		filters.To = t
	}

	if !filters.From.IsZero() && !filters.To.IsZero() && filters.To.Before(filters.From) {
		return filters, &ParseError{
			What: "date range query parameters",
			Why: fmt.Sprintf("%s must not be before %s",
				FilterParamTo, FilterParamFrom),
		}
	}

	return filters, nil
}
