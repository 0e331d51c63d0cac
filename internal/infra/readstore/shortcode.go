package readstore

import (
	"context"
	"encoding/json"

	"redemption-engine/internal/domain/redemption"
	"redemption-engine/internal/infra"
	"redemption-engine/internal/infra/db"
	"redemption-engine/internal/pkg/pgconv"
	"redemption-engine/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ShortCodeReadStore struct {
	db db.DBTX
}

func NewShortCodeReadStore(db db.DBTX) *ShortCodeReadStore {
	return &ShortCodeReadStore{db: db}
}

func (r *ShortCodeReadStore) ByCode(ctx context.Context, code string) (*commands.ShortCodeSnapshot, error) {
	row := r.db.QueryRow(ctx, `
SELECT voucher_id, code, code_type, expires_at, metadata
FROM short_codes
WHERE code = $1`, code)
	snap, err := scanShortCode(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find short code", err)
	}
	return snap, nil
}

func (r *ShortCodeReadStore) StaticForVoucher(ctx context.Context, voucherID uuid.UUID) (*commands.ShortCodeSnapshot, error) {
	row := r.db.QueryRow(ctx, `
SELECT voucher_id, code, code_type, expires_at, metadata
FROM short_codes
WHERE voucher_id = $1 AND code_type = $2`, voucherID, redemption.CodeTypeStatic)
	snap, err := scanShortCode(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find static short code", err)
	}
	return snap, nil
}

func scanShortCode(row rowScanner) (*commands.ShortCodeSnapshot, error) {
	var (
		snap      commands.ShortCodeSnapshot
		codeType  string
		expiresAt pgtype.Timestamptz
		metadata  []byte
	)
	if err := row.Scan(&snap.VoucherID, &snap.Code, &codeType, &expiresAt, &metadata); err != nil {
		return nil, err
	}
	snap.Type = redemption.CodeType(codeType)
	snap.ExpiresAt = pgconv.TimePtrFromPgtype(expiresAt)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &snap.Metadata); err != nil {
			return nil, err
		}
	}
	return &snap, nil
}
