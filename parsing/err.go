package parsing

import (
	"fmt"
)

// ParseError provides details about a failure to parse an object. ParseErrors are meant to
// be presented to users.
type ParseError struct {
	// What indicates the object that failed to be parsed
	What string

	// Why indicates why the object failed to be parsed
	Why string

	// FixInstructions for the user to remedy this error.
	// Leave this field blank if there is nothing the user can do to fix
	// the issue.
	FixInstructions string
}

// Error implements the error interface
func (e ParseError) Error() string {
	return e.UserError()
}

// UserError returns an error string meant to be displayed to the user
func (e ParseError) UserError() string {
	if e.FixInstructions == "" {
		return fmt.Sprintf("failed to parse %s: %s", e.What, e.Why)
	}

	return fmt.Sprintf("failed to parse %s: %s: %s",
		e.What, e.Why, e.FixInstructions)
}
