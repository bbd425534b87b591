package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ValidationError represents rejected input, naming the offending value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// ErrValidation is the sentinel error for input validation failures.
var ErrValidation = ValidationError{}

// UnsupportedBodyError marks a painting body this service cannot decompose,
// such as a canvas painted as the body of another canvas. Fatal for the
// manifest being processed.
type UnsupportedBodyError struct {
	BodyType string
}

func (e UnsupportedBodyError) Error() string {
	if e.BodyType == "" {
		return "unsupported painting body"
	}
	return fmt.Sprintf("unsupported painting body type %q", e.BodyType)
}

func (e UnsupportedBodyError) Is(target error) bool {
	_, ok := target.(UnsupportedBodyError)
	if ok {
		return true
	}
	_, ok = target.(*UnsupportedBodyError)
	return ok
}

// ErrUnsupportedBody is the sentinel error for unsupported painting bodies.
var ErrUnsupportedBody = UnsupportedBodyError{}

// OrderingError identifies a conflicting canvas/choice order group.
type OrderingError struct {
	CanvasOrder int
	Reason      string
}

func (e OrderingError) Error() string {
	return fmt.Sprintf("canvas order %d %s", e.CanvasOrder, e.Reason)
}

func (e OrderingError) Is(target error) bool {
	_, ok := target.(OrderingError)
	if ok {
		return true
	}
	_, ok = target.(*OrderingError)
	return ok
}

// ErrOrdering is the sentinel error for choice-order conflicts.
var ErrOrdering = OrderingError{}
