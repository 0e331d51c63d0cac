package writerepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"redemption-engine/internal/domain/redemption"
	"redemption-engine/internal/infra"
	"redemption-engine/internal/infra/db"
	"redemption-engine/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgErrCodeUniqueViolation = "23505"

type RedemptionRepository struct {
	db db.DBTX
}

func NewRedemptionRepository(db db.DBTX) *RedemptionRepository {
	return &RedemptionRepository{db: db}
}

// Create persists a redemption. The unique constraint on
// (voucher_id, customer_id, code) is the authoritative race arbiter:
// of two concurrent validator passes for the same credential, exactly
// one insert wins and the loser surfaces ErrDuplicateRedemption.
func (r *RedemptionRepository) Create(ctx context.Context, rec *redemption.Redemption) error {
	metadata, err := marshalMetadata(rec.Metadata())
	if err != nil {
		return infra.WrapRepoErr("failed to marshal redemption metadata", err)
	}

	var lat, lng *float64
	if loc := rec.Location(); loc != nil {
		lat, lng = &loc.Lat, &loc.Lng
	}

	_, err = r.db.Exec(ctx, `
INSERT INTO redemptions (
	id, voucher_id, customer_id, provider_id, code, redeemed_at,
	lat, lng, offline_redemption, synced_at, metadata, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID(), rec.VoucherID(), rec.CustomerID(), rec.ProviderID(),
		rec.Code(), rec.RedeemedAt(), lat, lng, rec.Offline(), rec.SyncedAt(),
		metadata, rec.CreatedAt(), rec.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errs.Mark(
				infra.WrapRepoErr("redemption already recorded for credential", err, infra.KindConflict),
				errs.ErrDuplicateRedemption,
			)
		}
		return infra.WrapRepoErr("failed to insert redemption", err)
	}
	return nil
}

// MarkSynced completes offline reconciliation. COALESCE keeps the first
// sync timestamp, making repeated syncs a no-op rather than an error.
func (r *RedemptionRepository) MarkSynced(ctx context.Context, id uuid.UUID, syncedAt time.Time) error {
	_, err := r.db.Exec(ctx, `
UPDATE redemptions
SET synced_at = COALESCE(synced_at, $2), updated_at = $3
WHERE id = $1 AND offline_redemption`,
		id, syncedAt, syncedAt)
	if err != nil {
		return infra.WrapRepoErr("failed to mark redemption synced", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation
}

func marshalMetadata(m map[string]string) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}
