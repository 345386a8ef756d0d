package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// Token or authorization header problems. Callers must render both the same way
	ErrAuthMissing  = errors.New("authorization header missing or malformed")
	ErrTokenInvalid = errors.New("token is invalid or expired")

	// Service can't start (or issue tokens) with this configuration
	ErrConfiguration = errors.New("configuration error")

	ErrBookNotFound = errors.New("book not found")
	ErrBookNotOwned = errors.New("book is owned by another user")
	ErrBookHasLoans = errors.New("book has loan history")
	ErrISBNInvalid  = errors.New("isbn is invalid")

	ErrLoanNotFound       = errors.New("loan not found")
	ErrSelfLoan           = errors.New("user can't borrow own book")
	ErrTransitionRejected = errors.New("loan transition rejected")
	ErrLoanDatesInvalid   = errors.New("loan due date is before start date")
)
