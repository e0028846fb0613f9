// Package derivatives holds the option-chain entry points used by the API
// and CLI: the surface filter and the catalyst screen. Unlike the analytics
// packages they validate their input strictly and stop on the first
// precondition that fails.
package derivatives

// ValidationError reports a failed input precondition. Field names the
// offending parameter.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

const errNoData = "No data to process!"
