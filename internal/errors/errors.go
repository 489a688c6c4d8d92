package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	InvalidInput       ErrorCode = "invalid_input"
	InvalidAmount      ErrorCode = "invalid_amount"
	InvalidTransaction ErrorCode = "invalid_transaction"
	AccountNotFound    ErrorCode = "account_not_found"
	InsufficientFunds  ErrorCode = "insufficient_funds"
	DuplicateAccount   ErrorCode = "duplicate_account"
	InternalError      ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
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

func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// HTTPStatus maps the error code to the response status used by the handlers.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case InvalidInput, InvalidAmount, InvalidTransaction:
		return http.StatusBadRequest
	case AccountNotFound:
		return http.StatusNotFound
	case InsufficientFunds:
		return http.StatusUnprocessableEntity
	case DuplicateAccount:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Predefined errors for common cases
var (
	ErrAccountNotFound      = NewAppError(AccountNotFound, "account not found")
	ErrInsufficientFunds    = NewAppError(InsufficientFunds, "insufficient funds")
	ErrSameAccountTransfer  = NewAppError(InvalidTransaction, "source and destination accounts cannot be the same")
	ErrInvalidAmount        = NewAppError(InvalidAmount, "amount must be greater than zero")
	ErrInvalidAccountNumber = NewAppError(InvalidInput, "account number must be exactly 10 digits")
	ErrDuplicateAccount     = NewAppError(DuplicateAccount, "account already exists")
)
