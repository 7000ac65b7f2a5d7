package validation

import (
	"regexp"

	"github.com/formrelay/webform-relay-api/models"

	"gopkg.in/go-playground/validator.v9"
)

// formIDExp matches a form identifier. Form IDs are embedded into submission
// IDs with underscore separators so they are restricted to URL safe
// characters.
var formIDExp *regexp.Regexp = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// StatusUpdateRequest is the body of a submission status transition request
type StatusUpdateRequest struct {
	// Status is the delivery state to transition to
	Status string `json:"status" validate:"required,submission_status"`

	// ErrorMessage is the reason for a failed transition, optional
	ErrorMessage string `json:"error_message"`
}

// validateSubmissionStatus ensures that a field matches one of the values
// of models.SubStatusT.
// Only works on fields which are strings.
func validateSubmissionStatus(fl validator.FieldLevel) bool {
	return models.ValidSubmissionStatus(models.SubStatusT(fl.Field().String()))
}

// newValidate builds a validator with the custom validations registered
func newValidate() *validator.Validate {
	validate := validator.New()
	validate.RegisterValidation("submission_status", validateSubmissionStatus)

	return validate
}

// ValidateStatusUpdate ensures a status update request meets all constraints
func ValidateStatusUpdate(req StatusUpdateRequest) error {
	return newValidate().Struct(req)
}

// ValidFormID tells if an identifier is usable as a form ID
func ValidFormID(id string) bool {
	return formIDExp.MatchString(id)
}
