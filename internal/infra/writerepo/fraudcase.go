package writerepo

import (
	"context"
	"encoding/json"

	"redemption-engine/internal/domain/fraud"
	"redemption-engine/internal/infra"
	"redemption-engine/internal/infra/db"
	"redemption-engine/internal/pkg/errs"
	"redemption-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type FraudCaseRepository struct {
	db db.DBTX
}

func NewFraudCaseRepository(db db.DBTX) *FraudCaseRepository {
	return &FraudCaseRepository{db: db}
}

// NextCaseNumber allocates the next value of the per-year sequence with
// a single atomic upsert. Reading a max and adding one in application
// code would collide under concurrent case creation.
func (r *FraudCaseRepository) NextCaseNumber(ctx context.Context, year int) (int64, error) {
	var value int64
	err := r.db.QueryRow(ctx, `
INSERT INTO fraud_case_counters (year, value)
VALUES ($1, 1)
ON CONFLICT (year) DO UPDATE SET value = fraud_case_counters.value + 1
RETURNING value`, year).Scan(&value)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to allocate case number", err)
	}
	return value, nil
}

func (r *FraudCaseRepository) Create(ctx context.Context, c *fraud.Case) error {
	flags, err := json.Marshal(c.Flags())
	if err != nil {
		return infra.WrapRepoErr("failed to marshal fraud flags", err)
	}
	metadata, err := marshalMetadata(c.DetectionMetadata())
	if err != nil {
		return infra.WrapRepoErr("failed to marshal detection metadata", err)
	}

	_, err = r.db.Exec(ctx, `
INSERT INTO fraud_cases (
	id, case_number, redemption_id, customer_id, provider_id, voucher_id,
	detected_at, risk_score, flags, status, detection_metadata,
	created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID(), c.CaseNumber(), c.RedemptionID(), c.CustomerID(), c.ProviderID(),
		c.VoucherID(), c.DetectedAt(), c.RiskScore(), flags, string(c.Status()),
		metadata, c.CreatedAt(), c.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("fraud case number already exists", err, infra.KindConflict)
		}
		return infra.WrapRepoErr("failed to insert fraud case", err)
	}
	return nil
}

// Update persists a state transition; only the mutable lifecycle fields
// change, the detection record is immutable. The status predicate is the
// race arbiter between concurrent reviewers: once a row is terminal no
// later decision can overwrite it, whatever the in-memory entity saw.
func (r *FraudCaseRepository) Update(ctx context.Context, c *fraud.Case) error {
	var reviewNotes *string
	if c.ReviewNotes() != "" {
		notes := c.ReviewNotes()
		reviewNotes = &notes
	}
	tag, err := r.db.Exec(ctx, `
UPDATE fraud_cases
SET status = $2, reviewed_at = $3, reviewed_by = $4, review_notes = $5,
    actions_taken = $6, updated_at = $7
WHERE id = $1 AND status IN ('PENDING', 'REVIEWING')`,
		c.ID(), string(c.Status()), c.ReviewedAt(), c.ReviewedBy(),
		reviewNotes, c.ActionsTaken(), c.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update fraud case", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Mark(
			infra.WrapRepoErr("fraud case already closed", nil, infra.KindConflict),
			errs.ErrInvalidStateTransition,
		)
	}
	return nil
}

// ByID loads a case for a state transition. Returns nil when absent.
func (r *FraudCaseRepository) ByID(ctx context.Context, id uuid.UUID) (*fraud.Case, error) {
	var (
		caseID       uuid.UUID
		caseNumber   string
		redemptionID uuid.UUID
		customerID   uuid.UUID
		providerID   uuid.UUID
		voucherID    uuid.UUID
		detectedAt   pgtype.Timestamptz
		riskScore    int
		flagsRaw     []byte
		status       string
		metadataRaw  []byte
		reviewedAt   pgtype.Timestamptz
		reviewedBy   pgtype.UUID
		notes        pgtype.Text
		actions      []string
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, `
SELECT id, case_number, redemption_id, customer_id, provider_id, voucher_id,
       detected_at, risk_score, flags, status, detection_metadata,
       reviewed_at, reviewed_by, review_notes, actions_taken, created_at, updated_at
FROM fraud_cases
WHERE id = $1`, id).Scan(
		&caseID, &caseNumber, &redemptionID, &customerID, &providerID, &voucherID,
		&detectedAt, &riskScore, &flagsRaw, &status, &metadataRaw,
		&reviewedAt, &reviewedBy, &notes, &actions, &createdAt, &updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to load fraud case", err)
	}

	var flags []fraud.Flag
	if len(flagsRaw) > 0 {
		if err := json.Unmarshal(flagsRaw, &flags); err != nil {
			return nil, infra.WrapRepoErr("failed to unmarshal fraud flags", err)
		}
	}
	var metadata map[string]string
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &metadata); err != nil {
			return nil, infra.WrapRepoErr("failed to unmarshal detection metadata", err)
		}
	}

	var reviewNotes string
	if s := pgconv.StringPtrFromPgtype(notes); s != nil {
		reviewNotes = *s
	}

	return fraud.ReconstructCase(
		caseID, caseNumber, redemptionID, customerID, providerID, voucherID,
		pgconv.TimeFromPgtype(detectedAt), riskScore, flags, fraud.Status(status),
		metadata, pgconv.TimePtrFromPgtype(reviewedAt), pgconv.UUIDPtrFromPgtype(reviewedBy),
		reviewNotes, actions, pgconv.TimeFromPgtype(createdAt), pgconv.TimeFromPgtype(updatedAt),
	), nil
}
