package commands

import (
	"context"
	"time"

	"redemption-engine/internal/domain/fraud"
	"redemption-engine/internal/domain/redemption"
	"redemption-engine/internal/pkg/geo"

	"github.com/google/uuid"
)

// Voucher lifecycle states as published by the voucher service.
const (
	VoucherStateNew       = "NEW"
	VoucherStatePublished = "PUBLISHED"
	VoucherStateExpired   = "EXPIRED"
)

// Write-side snapshots keep commands independent of read-side query
// types. VoucherSnapshot mirrors what the voucher service exposes for
// redemption; this engine never mutates voucher data.
type VoucherSnapshot struct {
	ID                    uuid.UUID
	ProviderID            uuid.UUID
	ProviderName          string
	State                 string
	DiscountType          string
	DiscountValue         float64
	Currency              string
	ExpiresAt             time.Time
	MaxRedemptions        *int32
	MaxRedemptionsPerUser int32
	CurrentRedemptions    int32
	ProviderLocation      *geo.Point
	GeofenceRadiusKm      *float64
}

type RedemptionSnapshot struct {
	ID         uuid.UUID
	VoucherID  uuid.UUID
	CustomerID uuid.UUID
	ProviderID uuid.UUID
	Code       string
	RedeemedAt time.Time
	Location   *geo.Point
	Offline    bool
	SyncedAt   *time.Time
}

type ShortCodeSnapshot struct {
	VoucherID uuid.UUID
	Code      string
	Type      redemption.CodeType
	ExpiresAt *time.Time
	Metadata  map[string]string
}

// VoucherReader is the port onto the external voucher service's data.
// Lookups return nil (not an error) when the voucher does not exist.
type VoucherReader interface {
	VoucherForRedemption(ctx context.Context, voucherID uuid.UUID) (*VoucherSnapshot, error)
}

type RedemptionReader interface {
	// FindByCredential returns nil when no redemption exists for the
	// exact voucher/customer/code triple.
	FindByCredential(ctx context.Context, voucherID, customerID uuid.UUID, code string) (*RedemptionSnapshot, error)
	CountForVoucher(ctx context.Context, voucherID uuid.UUID) (int64, error)
	CountForCustomer(ctx context.Context, voucherID, customerID uuid.UUID) (int64, error)
	CountCustomerSince(ctx context.Context, customerID uuid.UUID, since time.Time) (int64, error)
	CountProviderSince(ctx context.Context, providerID uuid.UUID, since time.Time) (int64, error)
	// LastLocatedForCustomer returns the customer's most recent
	// redemption that carried a location, or nil.
	LastLocatedForCustomer(ctx context.Context, customerID uuid.UUID) (*RedemptionSnapshot, error)
}

// RedemptionWriter persists redemptions. Create must surface the
// store's uniqueness conflict as errs.ErrDuplicateRedemption; that
// constraint, not the validator's advisory reads, arbitrates races.
type RedemptionWriter interface {
	Create(ctx context.Context, r *redemption.Redemption) error
	MarkSynced(ctx context.Context, id uuid.UUID, syncedAt time.Time) error
}

type ShortCodeReader interface {
	ByCode(ctx context.Context, code string) (*ShortCodeSnapshot, error)
	StaticForVoucher(ctx context.Context, voucherID uuid.UUID) (*ShortCodeSnapshot, error)
}

type ShortCodeWriter interface {
	Create(ctx context.Context, sc ShortCodeSnapshot, now time.Time) error
}

type FraudCaseReader interface {
	ByID(ctx context.Context, id uuid.UUID) (*fraud.Case, error)
}

type FraudCaseWriter interface {
	// NextCaseNumber allocates the next sequence value for the year via
	// an atomic store-level increment.
	NextCaseNumber(ctx context.Context, year int) (int64, error)
	Create(ctx context.Context, c *fraud.Case) error
	Update(ctx context.Context, c *fraud.Case) error
}

type KnownBadReader interface {
	IsKnownBad(ctx context.Context, customerID uuid.UUID) (bool, error)
}

// KnownBadWriter applies review remediation to the blocklist the
// scoring engine reads. Block is idempotent; re-blocking keeps the
// original entry.
type KnownBadWriter interface {
	Block(ctx context.Context, customerID uuid.UUID, reason string) error
	Unblock(ctx context.Context, customerID uuid.UUID) error
}

// ReplayStore is the atomic conditional-write primitive guarding
// single-use credentials.
type ReplayStore interface {
	ConsumeIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)
	NoteRejection(ctx context.Context, customerID uuid.UUID) error
	Rejections(ctx context.Context, customerID uuid.UUID) (int, error)
}
