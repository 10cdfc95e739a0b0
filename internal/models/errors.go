package models

import "fmt"

// ValidationError reports a malformed or missing required field on a
// command or request. It is raised before any aggregate state change.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required field missing: %s", e.Field)
}

func requireField(name, value string) error {
	if value == "" {
		return &ValidationError{Field: name}
	}
	return nil
}
