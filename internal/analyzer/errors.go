package analyzer

import (
	"fmt"

	"github.com/pkg/errors"
)

// KindValidation is the kind of every run-scoped failure.
const KindValidation = "validation"

// AnalysisError is a run-scoped failure. When Analyze returns one, no partial
// result is available.
type AnalysisError struct {
	Kind    string
	Message string
	// Stack is the stack trace captured where the failure was detected.
	Stack string

	cause error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.cause
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// newValidationError wraps err, recording a stack trace unless err already
// carries one.
func newValidationError(err error) *AnalysisError {
	traced, ok := err.(stackTracer)
	if !ok {
		traced = errors.WithStack(err).(stackTracer)
	}
	return &AnalysisError{
		Kind:    KindValidation,
		Message: err.Error(),
		Stack:   fmt.Sprintf("%+v", traced.StackTrace()),
		cause:   err,
	}
}
