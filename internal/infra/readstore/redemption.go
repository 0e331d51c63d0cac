package readstore

import (
	"context"
	"time"

	"redemption-engine/internal/infra"
	"redemption-engine/internal/infra/db"
	"redemption-engine/internal/pkg/geo"
	"redemption-engine/internal/pkg/pgconv"
	"redemption-engine/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type RedemptionReadStore struct {
	db db.DBTX
}

func NewRedemptionReadStore(db db.DBTX) *RedemptionReadStore {
	return &RedemptionReadStore{db: db}
}

const redemptionColumns = `
id, voucher_id, customer_id, provider_id, code, redeemed_at,
lat, lng, offline_redemption, synced_at`

func (r *RedemptionReadStore) FindByCredential(ctx context.Context, voucherID, customerID uuid.UUID, code string) (*commands.RedemptionSnapshot, error) {
	row := r.db.QueryRow(ctx, `
SELECT `+redemptionColumns+`
FROM redemptions
WHERE voucher_id = $1 AND customer_id = $2 AND code = $3`,
		voucherID, customerID, code)
	snap, err := scanRedemption(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find redemption by credential", err)
	}
	return snap, nil
}

func (r *RedemptionReadStore) CountForVoucher(ctx context.Context, voucherID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM redemptions WHERE voucher_id = $1`, voucherID).Scan(&n)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count voucher redemptions", err)
	}
	return n, nil
}

func (r *RedemptionReadStore) CountForCustomer(ctx context.Context, voucherID, customerID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM redemptions WHERE voucher_id = $1 AND customer_id = $2`,
		voucherID, customerID).Scan(&n)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count customer voucher redemptions", err)
	}
	return n, nil
}

func (r *RedemptionReadStore) CountCustomerSince(ctx context.Context, customerID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM redemptions WHERE customer_id = $1 AND redeemed_at >= $2`,
		customerID, since).Scan(&n)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count customer redemptions since", err)
	}
	return n, nil
}

func (r *RedemptionReadStore) CountProviderSince(ctx context.Context, providerID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM redemptions WHERE provider_id = $1 AND redeemed_at >= $2`,
		providerID, since).Scan(&n)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count provider redemptions since", err)
	}
	return n, nil
}

func (r *RedemptionReadStore) LastLocatedForCustomer(ctx context.Context, customerID uuid.UUID) (*commands.RedemptionSnapshot, error) {
	row := r.db.QueryRow(ctx, `
SELECT `+redemptionColumns+`
FROM redemptions
WHERE customer_id = $1 AND lat IS NOT NULL AND lng IS NOT NULL
ORDER BY redeemed_at DESC
LIMIT 1`, customerID)
	snap, err := scanRedemption(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find last located redemption", err)
	}
	return snap, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRedemption(row rowScanner) (*commands.RedemptionSnapshot, error) {
	var (
		snap     commands.RedemptionSnapshot
		lat, lng pgtype.Float8
		syncedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&snap.ID, &snap.VoucherID, &snap.CustomerID, &snap.ProviderID,
		&snap.Code, &snap.RedeemedAt, &lat, &lng, &snap.Offline, &syncedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat.Valid && lng.Valid {
		snap.Location = &geo.Point{Lat: lat.Float64, Lng: lng.Float64}
	}
	snap.SyncedAt = pgconv.TimePtrFromPgtype(syncedAt)
	return &snap, nil
}
