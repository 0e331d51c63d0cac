package writerepo

import (
	"context"

	"redemption-engine/internal/infra"
	"redemption-engine/internal/infra/db"

	"github.com/google/uuid"
)

// BlocklistRepository records review remediation against the
// blocked_customers table the scoring engine reads.
type BlocklistRepository struct {
	db db.DBTX
}

func NewBlocklistRepository(db db.DBTX) *BlocklistRepository {
	return &BlocklistRepository{db: db}
}

// Block keeps the earliest entry on conflict so the original reason
// survives repeated verdicts against the same customer.
func (r *BlocklistRepository) Block(ctx context.Context, customerID uuid.UUID, reason string) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO blocked_customers (customer_id, reason)
VALUES ($1, $2)
ON CONFLICT (customer_id) DO NOTHING`, customerID, reason)
	if err != nil {
		return infra.WrapRepoErr("failed to block customer", err)
	}
	return nil
}

func (r *BlocklistRepository) Unblock(ctx context.Context, customerID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM blocked_customers WHERE customer_id = $1`, customerID)
	if err != nil {
		return infra.WrapRepoErr("failed to unblock customer", err)
	}
	return nil
}
