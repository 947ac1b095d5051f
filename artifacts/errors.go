package artifacts

import "fmt"

// GetError wraps any failure of a fetch operation (Download, Raw). The
// wrapped error is typically a *rest.Error; errors.Is and errors.As reach
// through to the rest taxonomy sentinels.
type GetError struct {
	Err error
}

// Error implements the error interface.
func (e *GetError) Error() string {
	return fmt.Sprintf("artifacts: get: %s", e.Err)
}

// Unwrap returns the underlying cause.
func (e *GetError) Unwrap() error { return e.Err }

// DeleteError wraps any failure of the Delete operation.
type DeleteError struct {
	Err error
}

// Error implements the error interface.
func (e *DeleteError) Error() string {
	return fmt.Sprintf("artifacts: delete: %s", e.Err)
}

// Unwrap returns the underlying cause.
func (e *DeleteError) Unwrap() error { return e.Err }
