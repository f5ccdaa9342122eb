package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrClientNotFound      = errors.New("client not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrInstallmentNotFound = errors.New("installment not found")
	ErrInvalidAccessCode   = errors.New("invalid access code")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrLoanNotActive       = errors.New("loan is not active")
	ErrInstallmentSettled  = errors.New("installment is already paid in full")
	ErrPaymentExceedsDue   = errors.New("payment exceeds the amount due on the installment")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrConcurrentUpdate    = errors.New("loan was modified concurrently, retry")
	ErrInvalidInterval     = errors.New("unknown payment interval")
	ErrInvalidPaidDate     = errors.New("paid date cannot be in the future")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeClientNotFound      = "CLIENT_NOT_FOUND"
	ErrCodeLoanNotFound        = "LOAN_NOT_FOUND"
	ErrCodeInstallmentNotFound = "INSTALLMENT_NOT_FOUND"
	ErrCodeInvalidAccessCode   = "INVALID_ACCESS_CODE"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeLoanNotActive       = "LOAN_NOT_ACTIVE"
	ErrCodeInstallmentSettled  = "INSTALLMENT_SETTLED"
	ErrCodePaymentExceedsDue   = "PAYMENT_EXCEEDS_DUE"
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
	ErrCodeConcurrentUpdate    = "CONCURRENT_UPDATE"
	ErrCodeInvalidInterval     = "INVALID_INTERVAL"
	ErrCodeInvalidPaidDate     = "INVALID_PAID_DATE"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
	ErrCodeCacheError          = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapClientNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeClientNotFound,
		fmt.Sprintf("Client with ID %s not found", id),
		ErrClientNotFound,
	)
}

func WrapLoanNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", id),
		ErrLoanNotFound,
	)
}

func WrapInstallmentNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentNotFound,
		fmt.Sprintf("Installment with ID %s not found", id),
		ErrInstallmentNotFound,
	)
}

func WrapInvalidAccessCode() *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidAccessCode,
		"Access code is not valid",
		ErrInvalidAccessCode,
	)
}

func WrapInvalidCredentials() *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidCredentials,
		"Email or password is not valid",
		ErrInvalidCredentials,
	)
}

func WrapLoanNotActive(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotActive,
		fmt.Sprintf("Loan with ID %s is not active", id),
		ErrLoanNotActive,
	)
}

func WrapInstallmentSettled(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentSettled,
		fmt.Sprintf("Installment with ID %s is already paid in full", id),
		ErrInstallmentSettled,
	)
}

func WrapPaymentExceedsDue(due, received string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentExceedsDue,
		fmt.Sprintf("Payment of %s exceeds the %s still due on the installment", received, due),
		ErrPaymentExceedsDue,
	)
}

func WrapConcurrentUpdate(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeConcurrentUpdate,
		fmt.Sprintf("Loan with ID %s was modified concurrently", loanID),
		ErrConcurrentUpdate,
	)
}

func WrapInvalidInterval(interval string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidInterval,
		fmt.Sprintf("Unknown payment interval %q", interval),
		ErrInvalidInterval,
	)
}

func WrapInvalidPaidDate(date string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaidDate,
		fmt.Sprintf("Paid date %s is in the future", date),
		ErrInvalidPaidDate,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
