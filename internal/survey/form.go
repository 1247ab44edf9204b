package survey

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/models"
)

// ErrValidationFailed matches any *ValidationError.
var ErrValidationFailed = errors.New("validation failed")

// ValidationError lists the required fields that are still empty, in form order.
type ValidationError struct {
	Missing []models.Field
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("%s: missing %s", ErrValidationFailed, strings.Join(names, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// First returns the field the respondent should be pointed at.
func (e *ValidationError) First() models.Field {
	if len(e.Missing) == 0 {
		return ""
	}
	return e.Missing[0]
}

// Form collects answers for one in-progress response. It is not safe for
// concurrent use; the owning Session serializes access.
type Form struct {
	response models.SurveyResponse
}

// NewForm returns a form holding an all-default response.
func NewForm() *Form {
	return &Form{response: models.NewSurveyResponse()}
}

// SetField assigns a scalar answer. Values are not checked against the
// option vocabularies; names that are not scalar fields are ignored.
func (f *Form) SetField(name models.Field, value string) {
	f.response.Set(name, value)
}

// ToggleReason adds tag to the reasons set, or removes it when already present.
func (f *Form) ToggleReason(tag string) {
	for i, r := range f.response.Reasons {
		if r == tag {
			f.response.Reasons = append(f.response.Reasons[:i], f.response.Reasons[i+1:]...)
			return
		}
	}
	f.response.Reasons = append(f.response.Reasons, tag)
}

// Progress returns the fraction of tracked fields holding a value, in [0,1].
func (f *Form) Progress() float64 {
	filled := 0
	for _, field := range models.TrackedFields {
		if f.response.Filled(field) {
			filled++
		}
	}
	return float64(filled) / float64(len(models.TrackedFields))
}

// Validate returns the required fields that are empty or blank, by the same
// rule Progress counts answers. A nil result means the response can be
// submitted.
func (f *Form) Validate() []models.Field {
	var missing []models.Field
	for _, field := range models.RequiredFields {
		if !f.response.Filled(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// Submit validates the form and returns a copy of the response detached
// from further edits.
func (f *Form) Submit() (models.SurveyResponse, error) {
	if missing := f.Validate(); len(missing) > 0 {
		return models.SurveyResponse{}, &ValidationError{Missing: missing}
	}
	return f.response.Clone(), nil
}

// Response returns a snapshot of the answers so far.
func (f *Form) Response() models.SurveyResponse {
	return f.response.Clone()
}
