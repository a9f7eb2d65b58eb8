package resolver

import "errors"

// InvalidInputError means the caller's request was malformed. It maps to a
// 400 response.
type InvalidInputError struct {
	Reason string
	Err    error
}

func (e *InvalidInputError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}

func invalidInput(reason string, err error) error {
	return &InvalidInputError{Reason: reason, Err: err}
}

func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}
