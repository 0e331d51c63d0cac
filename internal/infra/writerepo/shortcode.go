package writerepo

import (
	"context"
	"time"

	"redemption-engine/internal/infra"
	"redemption-engine/internal/infra/db"
	"redemption-engine/internal/usecase/commands"
)

type ShortCodeRepository struct {
	db db.DBTX
}

func NewShortCodeRepository(db db.DBTX) *ShortCodeRepository {
	return &ShortCodeRepository{db: db}
}

// Create stores a short code. The primary key on code rejects the
// (vanishingly unlikely) collision of two generated codes, and the
// partial unique index on (voucher_id) for STATIC codes guarantees one
// stable code per voucher even under concurrent issue requests.
func (r *ShortCodeRepository) Create(ctx context.Context, sc commands.ShortCodeSnapshot, now time.Time) error {
	metadata, err := marshalMetadata(sc.Metadata)
	if err != nil {
		return infra.WrapRepoErr("failed to marshal short code metadata", err)
	}

	_, err = r.db.Exec(ctx, `
INSERT INTO short_codes (code, voucher_id, code_type, expires_at, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		sc.Code, sc.VoucherID, string(sc.Type), sc.ExpiresAt, metadata, now)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("short code already exists", err, infra.KindConflict)
		}
		return infra.WrapRepoErr("failed to insert short code", err)
	}
	return nil
}
