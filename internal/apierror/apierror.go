// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	// Available is set when a sale exceeds the container's remaining quantity.
	Available string `json:"available,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// WithAvailable reports an oversell together with the sellable quantity.
func WithAvailable(msg, available string) *APIError {
	return &APIError{Detail: msg, Available: available}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation error", Fields: fields}
}
