package fraud

import (
	"fmt"
	"time"

	"redemption-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

// Case is a unit of human review triggered by a suspicious redemption.
// Cases are never deleted; terminal review decisions are immutable.
type Case struct {
	id                uuid.UUID
	caseNumber        string
	redemptionID      uuid.UUID
	customerID        uuid.UUID
	providerID        uuid.UUID
	voucherID         uuid.UUID
	detectedAt        time.Time
	riskScore         int
	flags             []Flag
	status            Status
	detectionMetadata map[string]string
	reviewedAt        *time.Time
	reviewedBy        *uuid.UUID
	reviewNotes       string
	actionsTaken      []string
	createdAt         time.Time
	updatedAt         time.Time
}

// FormatCaseNumber renders the year-scoped sequential case number,
// e.g. FRAUD-2026-0001. Sequences are allocated atomically per year by
// the persistence layer.
func FormatCaseNumber(year int, sequence int64) string {
	return fmt.Sprintf("FRAUD-%d-%04d", year, sequence)
}

func NewCase(caseNumber string, redemptionID, customerID, providerID, voucherID uuid.UUID, score Score, metadata map[string]string, now time.Time) (*Case, error) {
	if score.RiskScore < 0 || score.RiskScore > 100 {
		return nil, ErrInvalidRiskScore
	}
	return &Case{
		id:                uuid.New(),
		caseNumber:        caseNumber,
		redemptionID:      redemptionID,
		customerID:        customerID,
		providerID:        providerID,
		voucherID:         voucherID,
		detectedAt:        now,
		riskScore:         score.RiskScore,
		flags:             score.Flags,
		status:            StatusPending,
		detectionMetadata: metadata,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

func ReconstructCase(id uuid.UUID, caseNumber string, redemptionID, customerID, providerID, voucherID uuid.UUID, detectedAt time.Time, riskScore int, flags []Flag, status Status, metadata map[string]string, reviewedAt *time.Time, reviewedBy *uuid.UUID, reviewNotes string, actionsTaken []string, createdAt, updatedAt time.Time) *Case {
	return &Case{
		id:                id,
		caseNumber:        caseNumber,
		redemptionID:      redemptionID,
		customerID:        customerID,
		providerID:        providerID,
		voucherID:         voucherID,
		detectedAt:        detectedAt,
		riskScore:         riskScore,
		flags:             flags,
		status:            status,
		detectionMetadata: metadata,
		reviewedAt:        reviewedAt,
		reviewedBy:        reviewedBy,
		reviewNotes:       reviewNotes,
		actionsTaken:      actionsTaken,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// StartReview claims a pending case for a reviewer (PENDING → REVIEWING).
func (c *Case) StartReview(now time.Time) error {
	if c.status != StatusPending {
		return errs.ErrInvalidStateTransition
	}
	c.status = StatusReviewing
	c.updatedAt = now
	return nil
}

// Review closes the case with a terminal decision. The case must still
// be in a pending state (PENDING or REVIEWING); review fields are set
// exactly once.
func (c *Case) Review(status Status, reviewerID uuid.UUID, notes string, actions []string, now time.Time) error {
	if !status.Terminal() {
		return ErrNotTerminalStatus
	}
	if c.status.Terminal() {
		return errs.ErrInvalidStateTransition
	}
	c.status = status
	c.reviewedAt = &now
	c.reviewedBy = &reviewerID
	c.reviewNotes = notes
	c.actionsTaken = actions
	c.updatedAt = now
	return nil
}

// IsUrgent is a derived routing predicate, not part of the state machine.
func (c *Case) IsUrgent() bool {
	if c.riskScore > 80 {
		return true
	}
	for _, f := range c.flags {
		if f.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

func (c *Case) ID() uuid.UUID                        { return c.id }
func (c *Case) CaseNumber() string                   { return c.caseNumber }
func (c *Case) RedemptionID() uuid.UUID              { return c.redemptionID }
func (c *Case) CustomerID() uuid.UUID                { return c.customerID }
func (c *Case) ProviderID() uuid.UUID                { return c.providerID }
func (c *Case) VoucherID() uuid.UUID                 { return c.voucherID }
func (c *Case) DetectedAt() time.Time                { return c.detectedAt }
func (c *Case) RiskScore() int                       { return c.riskScore }
func (c *Case) Flags() []Flag                        { return c.flags }
func (c *Case) Status() Status                       { return c.status }
func (c *Case) DetectionMetadata() map[string]string { return c.detectionMetadata }
func (c *Case) ReviewedAt() *time.Time               { return c.reviewedAt }
func (c *Case) ReviewedBy() *uuid.UUID               { return c.reviewedBy }
func (c *Case) ReviewNotes() string                  { return c.reviewNotes }
func (c *Case) ActionsTaken() []string               { return c.actionsTaken }
func (c *Case) CreatedAt() time.Time                 { return c.createdAt }
func (c *Case) UpdatedAt() time.Time                 { return c.updatedAt }
