package gateway

import (
	"errors"
	"fmt"

	"gemgate/internal/llm"
)

// BadRequestError reports a missing required input (HTTP 400).
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

// ValidationError reports an input that is present but unusable (HTTP 422).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrContentFetchFailed is returned by the assessment operation when the URL
// path yields no usable text. The model is never called in that case.
var ErrContentFetchFailed = errors.New("failed to fetch content from URL")

// UpstreamError wraps a model failure with its classified kind so the HTTP
// layer can pick a status and guidance message.
type UpstreamError struct {
	Kind llm.Kind
	Err  error
}

func (e *UpstreamError) Error() string { return e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }
