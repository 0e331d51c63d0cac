package readstore

import (
	"context"

	"redemption-engine/internal/infra"
	"redemption-engine/internal/infra/db"
	"redemption-engine/internal/pkg/geo"
	"redemption-engine/internal/pkg/pgconv"
	"redemption-engine/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// VoucherReadStore reads voucher eligibility data. The vouchers and
// providers tables are owned by the voucher service; this engine never
// writes to them.
type VoucherReadStore struct {
	db db.DBTX
}

func NewVoucherReadStore(db db.DBTX) *VoucherReadStore {
	return &VoucherReadStore{db: db}
}

const voucherForRedemptionQuery = `
SELECT v.id, v.provider_id, p.name, v.state, v.discount_type, v.discount_value,
       v.currency, v.expires_at, v.max_redemptions, v.max_redemptions_per_user,
       v.current_redemptions, p.lat, p.lng, p.geofence_radius_km
FROM vouchers v
JOIN providers p ON p.id = v.provider_id
WHERE v.id = $1`

func (r *VoucherReadStore) VoucherForRedemption(ctx context.Context, voucherID uuid.UUID) (*commands.VoucherSnapshot, error) {
	var (
		snap             commands.VoucherSnapshot
		maxRedemptions   pgtype.Int4
		expiresAt        pgtype.Timestamptz
		lat, lng, geofKm pgtype.Float8
	)
	err := r.db.QueryRow(ctx, voucherForRedemptionQuery, voucherID).Scan(
		&snap.ID, &snap.ProviderID, &snap.ProviderName, &snap.State,
		&snap.DiscountType, &snap.DiscountValue, &snap.Currency, &expiresAt,
		&maxRedemptions, &snap.MaxRedemptionsPerUser, &snap.CurrentRedemptions,
		&lat, &lng, &geofKm,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to fetch voucher for redemption", err)
	}

	snap.ExpiresAt = pgconv.TimeFromPgtype(expiresAt)
	snap.MaxRedemptions = pgconv.Int32PtrFromPgtype(maxRedemptions)
	if lat.Valid && lng.Valid {
		snap.ProviderLocation = &geo.Point{Lat: lat.Float64, Lng: lng.Float64}
	}
	snap.GeofenceRadiusKm = pgconv.Float64PtrFromPgtype(geofKm)
	return &snap, nil
}
