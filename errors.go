package revise

import "fmt"

// InputError identifies which merge input could not be used.
type InputError struct {
	Input string // Reviewer id, or "base"
	Err   error
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return fmt.Sprintf("input %q: %v", e.Input, e.Err)
}

// Unwrap returns the underlying error.
func (e *InputError) Unwrap() error {
	return e.Err
}
