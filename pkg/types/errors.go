package types

import (
	"errors"
	"fmt"
	"time"
)

// Common bot errors
var (
	// Parameter validation errors
	ErrNilRPC           = errors.New("rpc client is nil")
	ErrNilSigner        = errors.New("signer is nil")
	ErrNilRelay         = errors.New("relay is nil")
	ErrZeroAmount       = errors.New("amount must be greater than 0")
	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrNoInstructions   = errors.New("requires at least one instruction")

	// Wallet errors
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// Trade errors
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrBondingCurveNotFound  = errors.New("bonding curve not found")
)

// ValidationError represents input validation failures.
// It is always returned before any network call is attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// RelayError wraps bundle relay transport and remote-rejection failures.
type RelayError struct {
	Op       string
	Attempts int
	Err      error
}

func (e RelayError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("relay %s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
	}
	return fmt.Sprintf("relay %s: %v", e.Op, e.Err)
}

func (e RelayError) Unwrap() error {
	return e.Err
}

// NewRelayError creates a relay error for a single attempt.
func NewRelayError(op string, err error) RelayError {
	return RelayError{Op: op, Attempts: 1, Err: err}
}

// TimeoutError signals that a confirmation wait exceeded its budget.
type TimeoutError struct {
	Op      string
	Elapsed time.Duration
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.Elapsed)
}

// IsRetryableError checks if an error is worth retrying.
// Validation failures are deterministic and never retried.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if IsValidationError(err) {
		return false
	}
	if errors.Is(err, ErrInsufficientLiquidity) || errors.Is(err, ErrInsufficientBalance) {
		return false
	}
	return true
}
