package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrUserNotFound is returned when no account matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrValidation wraps every input validation failure.
	ErrValidation = errors.New("validation failed")
	// ErrConflict is returned when a unique constraint would be violated.
	ErrConflict = errors.New("resource conflict")
	// ErrUsernameTaken and ErrEmailTaken are the two account conflicts callers care about.
	ErrUsernameTaken = errors.New("username is already taken")
	ErrEmailTaken    = errors.New("email is already registered")
	// ErrInvalidCredentials is deliberately generic for unknown users and bad passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("authorization token required")
	ErrForbidden          = errors.New("admin access required")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrRateLimited        = errors.New("too many attempts, please try again later")
)
