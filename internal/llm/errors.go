package llm

import (
	"errors"
	"fmt"
)

// Common LLM client errors
var (
	// ErrMissingAPIKey is returned when no bearer token is configured for the gateway.
	ErrMissingAPIKey = errors.New("missing LLM API key: pass --api-key or set LLM_API_KEY")

	// ErrEmptyResponse is returned when the gateway answers without any completion choices.
	ErrEmptyResponse = errors.New("no completion choices in LLM response")
)

// LLMError wraps errors with additional context about the failed gateway call.
type LLMError struct {
	// Op is the operation that failed (e.g., "Generate").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *LLMError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("llm: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("llm: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *LLMError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *LLMError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapLLMError wraps an error as an LLMError if it isn't already one.
func WrapLLMError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return err
	}

	return &LLMError{Op: op, Err: err, Details: details}
}
