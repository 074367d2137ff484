package domain

import "errors"

// PipelineError wraps any otherwise-unhandled failure during
// reconciliation. The HTTP layer maps it to a generic 500 response.
type PipelineError struct {
	Msg string
	Err error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func IsPipelineError(err error) bool {
	var target *PipelineError
	return errors.As(err, &target)
}
