package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	Forbidden           ErrorCode = "forbidden"
	Unauthorized        ErrorCode = "unauthorized"
	AccountNotFound     ErrorCode = "account_not_found"
	ContractNotFound    ErrorCode = "contract_not_found"
	JobNotFound         ErrorCode = "job_not_found"
	InvalidAccount      ErrorCode = "invalid_account"
	AlreadyPaid         ErrorCode = "already_paid"
	InsufficientBalance ErrorCode = "insufficient_balance"
	InvalidAmount       ErrorCode = "invalid_amount"
	NoUnpaidObligations ErrorCode = "no_unpaid_obligations"
	LimitExceeded       ErrorCode = "limit_exceeded"
	Conflict            ErrorCode = "conflict"
	StaleVersion        ErrorCode = "stale_version"
	DuplicateEntity     ErrorCode = "duplicate_entity"
	StorageUnavailable  ErrorCode = "storage_unavailable"
	InvalidInput        ErrorCode = "invalid_input"
	InternalError       ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is an *AppError carrying the same code, so a
// detailed copy still matches its predefined sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetails must only be called on freshly built errors, never on the
// predefined ones below. Use Detailed for those.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// Detailed returns a copy of e with details attached.
func (e *AppError) Detailed(details string) *AppError {
	c := *e
	c.Details = details
	return &c
}

// Retryable reports whether resubmitting the same request may succeed.
func (e *AppError) Retryable() bool {
	switch e.Code {
	case Conflict, StaleVersion, StorageUnavailable:
		return true
	default:
		return false
	}
}

func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case AccountNotFound, ContractNotFound, JobNotFound:
		return http.StatusNotFound
	case InvalidAccount, InvalidAmount, InvalidInput:
		return http.StatusBadRequest
	case AlreadyPaid, Conflict, StaleVersion, DuplicateEntity:
		return http.StatusConflict
	case InsufficientBalance, NoUnpaidObligations, LimitExceeded:
		return http.StatusUnprocessableEntity
	case StorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Storage wraps a persistence failure.
func Storage(message string, err error) *AppError {
	return NewAppError(StorageUnavailable, message).WithDetails(err.Error())
}

// As extracts the *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Predefined errors for common cases
var (
	ErrForbidden           = NewAppError(Forbidden, "only the contract client may pay for a job")
	ErrUnauthorized        = NewAppError(Unauthorized, "missing or malformed profile_id header")
	ErrAccountNotFound     = NewAppError(AccountNotFound, "account not found")
	ErrContractNotFound    = NewAppError(ContractNotFound, "contract not found")
	ErrJobNotFound         = NewAppError(JobNotFound, "invalid job id")
	ErrInvalidAccount      = NewAppError(InvalidAccount, "invalid account for deposit")
	ErrAlreadyPaid         = NewAppError(AlreadyPaid, "job already paid")
	ErrInsufficientBalance = NewAppError(InsufficientBalance, "insufficient balance")
	ErrInvalidAmount       = NewAppError(InvalidAmount, "amount must be a positive number with at most two decimals")
	ErrNoUnpaidObligations = NewAppError(NoUnpaidObligations, "client has no unpaid jobs")
	ErrLimitExceeded       = NewAppError(LimitExceeded, "deposit exceeds 25% of unpaid jobs total")
	ErrConflict            = NewAppError(Conflict, "concurrent update detected, operation not applied")
	ErrStaleVersion        = NewAppError(StaleVersion, "stale version")
	ErrDuplicateEntity     = NewAppError(DuplicateEntity, "entity already exists")
	ErrInvalidAccountID    = NewAppError(InvalidInput, "account id must be a positive integer")
	ErrInvalidJobID        = NewAppError(InvalidInput, "job id must be a positive integer")
	ErrInvalidLimit        = NewAppError(InvalidInput, "limit must be between 1 and 100")
	ErrInvalidDateRange    = NewAppError(InvalidInput, "start and end must be RFC 3339 timestamps with start before end")
)
