package redemption

import (
	"time"

	"redemption-engine/internal/pkg/geo"

	"github.com/google/uuid"
)

// Redemption is one use of a voucher. It is immutable after creation
// except for the offline→synced transition.
type Redemption struct {
	id         uuid.UUID
	voucherID  uuid.UUID
	customerID uuid.UUID
	providerID uuid.UUID
	code       string
	redeemedAt time.Time
	location   *geo.Point
	offline    bool
	syncedAt   *time.Time
	metadata   map[string]string
	createdAt  time.Time
	updatedAt  time.Time
}

// New constructs an online redemption at the moment a validated attempt
// is accepted.
func New(voucherID, customerID, providerID uuid.UUID, code string, location *geo.Point, metadata map[string]string, now time.Time) (*Redemption, error) {
	return build(voucherID, customerID, providerID, code, location, metadata, now, false, now)
}

// NewOffline constructs a client-recorded redemption awaiting
// reconciliation. redeemedAt is the client-side attempt time.
func NewOffline(voucherID, customerID, providerID uuid.UUID, code string, location *geo.Point, metadata map[string]string, redeemedAt, now time.Time) (*Redemption, error) {
	return build(voucherID, customerID, providerID, code, location, metadata, redeemedAt, true, now)
}

func build(voucherID, customerID, providerID uuid.UUID, code string, location *geo.Point, metadata map[string]string, redeemedAt time.Time, offline bool, now time.Time) (*Redemption, error) {
	if code == "" {
		return nil, ErrEmptyCode
	}
	if location != nil && !location.Valid() {
		return nil, ErrInvalidLocation
	}
	return &Redemption{
		id:         uuid.New(),
		voucherID:  voucherID,
		customerID: customerID,
		providerID: providerID,
		code:       code,
		redeemedAt: redeemedAt,
		location:   location,
		offline:    offline,
		metadata:   metadata,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct rehydrates a redemption from storage without re-running
// creation-time validation.
func Reconstruct(id, voucherID, customerID, providerID uuid.UUID, code string, redeemedAt time.Time, location *geo.Point, offline bool, syncedAt *time.Time, metadata map[string]string, createdAt, updatedAt time.Time) *Redemption {
	return &Redemption{
		id:         id,
		voucherID:  voucherID,
		customerID: customerID,
		providerID: providerID,
		code:       code,
		redeemedAt: redeemedAt,
		location:   location,
		offline:    offline,
		syncedAt:   syncedAt,
		metadata:   metadata,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// MarkSynced records the completion of offline reconciliation. It is
// idempotent: re-syncing an already-synced redemption keeps the first
// sync timestamp.
func (r *Redemption) MarkSynced(now time.Time) error {
	if !r.offline {
		return ErrNotOfflineRedemption
	}
	if r.syncedAt != nil {
		return nil
	}
	r.syncedAt = &now
	r.updatedAt = now
	return nil
}

func (r *Redemption) ID() uuid.UUID               { return r.id }
func (r *Redemption) VoucherID() uuid.UUID        { return r.voucherID }
func (r *Redemption) CustomerID() uuid.UUID       { return r.customerID }
func (r *Redemption) ProviderID() uuid.UUID       { return r.providerID }
func (r *Redemption) Code() string                { return r.code }
func (r *Redemption) RedeemedAt() time.Time       { return r.redeemedAt }
func (r *Redemption) Location() *geo.Point        { return r.location }
func (r *Redemption) Offline() bool               { return r.offline }
func (r *Redemption) SyncedAt() *time.Time        { return r.syncedAt }
func (r *Redemption) Metadata() map[string]string { return r.metadata }
func (r *Redemption) CreatedAt() time.Time        { return r.createdAt }
func (r *Redemption) UpdatedAt() time.Time        { return r.updatedAt }
