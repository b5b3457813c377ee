package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Error kinds. Match with errors.Is; handlers map them to HTTP statuses.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrIntegrity    = errors.New("integrity failure")
	ErrUnauthorized = errors.New("unauthorized")
)

// LedgerError carries a client-safe message alongside its kind. Available is
// set on oversell rejections so the caller can retry with a smaller amount.
type LedgerError struct {
	Kind      error
	Message   string
	Available *decimal.Decimal
	cause     error
}

func (e *LedgerError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *LedgerError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Kind, e.cause}
	}
	return []error{e.Kind}
}

func notFound(format string, args ...interface{}) error {
	return &LedgerError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...interface{}) error {
	return &LedgerError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func conflict(msg string, cause error) error {
	return &LedgerError{Kind: ErrConflict, Message: msg, cause: cause}
}

func integrity(msg string, cause error) error {
	return &LedgerError{Kind: ErrIntegrity, Message: msg, cause: cause}
}
