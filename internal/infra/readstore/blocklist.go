package readstore

import (
	"context"

	"redemption-engine/internal/infra"
	"redemption-engine/internal/infra/db"

	"github.com/google/uuid"
)

// BlocklistReadStore answers known-bad identifier lookups for the
// scoring engine. Entries are managed by the fraud-review workflow's
// remediation actions.
type BlocklistReadStore struct {
	db db.DBTX
}

func NewBlocklistReadStore(db db.DBTX) *BlocklistReadStore {
	return &BlocklistReadStore{db: db}
}

func (r *BlocklistReadStore) IsKnownBad(ctx context.Context, customerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM blocked_customers WHERE customer_id = $1)`,
		customerID).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check blocklist", err)
	}
	return exists, nil
}
