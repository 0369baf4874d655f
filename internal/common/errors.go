// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Purchase errors.
	ErrDecoyUnavailable           = errors.New("decoy unavailable")
	ErrMalformedCorrectionMessage = errors.New("malformed amount correction message")
	ErrInvalidCount               = errors.New("purchase count must be at least 1")
	ErrSettlementFailed           = errors.New("settlement failed")
	ErrInvalidWallet              = errors.New("invalid e-wallet")
	ErrNotRedeemable              = errors.New("package is not a redeemable voucher")

	// API errors.
	ErrUnauthorized = errors.New("session unauthorized")
	ErrEmptyPayload = errors.New("empty response payload")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a transport retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
