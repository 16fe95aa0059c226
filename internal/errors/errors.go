// internal/errors/errors.go
package errors

import "fmt"

// ErrUnknownRegistrySource is returned when REGISTRY_SOURCE names a source
// implementation that does not exist.
type ErrUnknownRegistrySource struct {
	Source string
}

func (e *ErrUnknownRegistrySource) Error() string {
	return fmt.Sprintf("unknown registry source: %q, expected 'postgres' or 'static'", e.Source)
}

// ErrInvalidRegistration is returned when a registration submitted through
// the API is missing a required field.
type ErrInvalidRegistration struct {
	Field string
}

func (e *ErrInvalidRegistration) Error() string {
	return fmt.Sprintf("invalid registration: field %q is required", e.Field)
}
