package shared

import "errors"

// DomainError is a coded business error. Two DomainErrors match under errors.Is
// when their codes are equal, so wrapping with a more specific message keeps the match.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Is(target error) bool {
	var other *DomainError
	return errors.As(target, &other) && other.Code == e.Code
}

var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "record not found")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "invalid input")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "operation not allowed in current state")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "record was modified concurrently")
	ErrInsufficientBalance = NewDomainError("INSUFFICIENT_BALANCE", "insufficient balance")
	ErrInvariantViolation  = NewDomainError("INVARIANT_VIOLATION", "operation would break an invariant")
	ErrLockNotAcquired     = NewDomainError("LOCK_NOT_ACQUIRED", "aggregate is locked by another worker")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
