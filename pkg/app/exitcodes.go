// pkg/app/exitcodes.go
package app

import (
	"errors"

	"github.com/mconlon17/vivo-person-ingest/pkg/ingest"
)

// Process exit codes
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitValidation = 2
	ExitUsage      = 3
	ExitStore      = 4
	ExitWrite      = 5
)

// Error carries the exit code a command should end with
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithCode attaches an exit code to err; nil stays nil
func WithCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// ExitCode picks the exit code for err. An explicit code wins; otherwise
// store and lookup failures map to ExitStore and output failures to
// ExitWrite.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	switch {
	case ingest.IsExternal(err):
		return ExitStore
	case ingest.IsOutput(err):
		return ExitWrite
	default:
		return ExitFailure
	}
}
