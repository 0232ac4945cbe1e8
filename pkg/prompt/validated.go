package prompt

import (
	stderrors "errors"
)

// RetryHook is called with every rejected answer before asking again.
type RetryHook func(err error)

// Validated asks message until validate accepts the answer. Validation errors
// are reported through onRetry and never escape; ErrAbort and read errors do.
func Validated[T any](p Prompter, message string, validate func(string) (T, error), onRetry RetryHook) (T, error) {
	var zero T
	for {
		answer, err := p.Prompt(message)
		if err != nil {
			return zero, err
		}

		v, err := validate(answer)
		if err == nil {
			return v, nil
		}
		if stderrors.Is(err, ErrAbort) {
			return zero, err
		}
		if onRetry != nil {
			onRetry(err)
		}
	}
}
