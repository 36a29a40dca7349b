package vocab

import "fmt"

// #region validation-error

// ValidationError names the constraint a rejected batch violated. Any call
// that returns one has left the store untouched.
type ValidationError struct {
	Constraint string // e.g. "array_length", "weight_range"
	Detail     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Constraint, e.Detail)
}

// #endregion validation-error
