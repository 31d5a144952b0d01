package domain

// ValidationError reports a malformed request field. It is recovered at the
// handler boundary and turned into a 400 response carrying the offending
// field name.
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}

	return e.Message
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Message: message, Field: field}
}
