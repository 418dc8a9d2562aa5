package statement

import "fmt"

// ValidationError covers bad input shape or values. User-correctable.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ConflictError marks a batch rejected because it repeats history. The user
// must remove the duplicates and resubmit.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// NotFoundError marks a missing upstream reference (company, schedule). Not
// retried automatically; it signals a data-integrity gap, not a transient
// fault.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}
