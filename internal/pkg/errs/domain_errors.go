package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers.
// Handlers map these to the public error codes of the redemption API.
var (
	// Credential errors (never retryable without a fresh credential)
	ErrMalformedCredential = errors.New("malformed credential")
	ErrExpiredCredential   = errors.New("credential expired")
	ErrReplayedCredential  = errors.New("credential already consumed")
	ErrCredentialNotFound  = errors.New("credential not found")

	// Eligibility errors
	ErrVoucherNotFound       = errors.New("voucher not found")
	ErrVoucherNotRedeemable  = errors.New("voucher is not redeemable")
	ErrVoucherExpired        = errors.New("voucher expired")
	ErrDuplicateRedemption   = errors.New("duplicate redemption")
	ErrRedemptionCapExceeded = errors.New("voucher redemption cap exceeded")
	ErrPerUserCapExceeded    = errors.New("per-user redemption cap exceeded")

	// Fraud case errors
	ErrFraudCaseNotFound      = errors.New("fraud case not found")
	ErrInvalidStateTransition = errors.New("invalid fraud case state transition")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
	ErrReplayStoreUnavailable  = errors.New("replay store unavailable")
)
