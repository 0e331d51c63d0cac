package commands

import (
	"context"
	"log/slog"

	"redemption-engine/internal/domain/fraud"
	"redemption-engine/internal/pkg/clock"
	"redemption-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

// Remediation actions a reviewer can attach to a verdict. Other action
// strings are recorded verbatim but carry no side effect.
const (
	ActionBlockedCustomer   = "BLOCKED_CUSTOMER"
	ActionUnblockedCustomer = "UNBLOCKED_CUSTOMER"
)

type ReviewCaseRequest struct {
	Status     fraud.Status
	ReviewerID uuid.UUID
	Notes      string
	Actions    []string
}

type FraudCaseCommands interface {
	// Claim moves a PENDING case to REVIEWING so a reviewer can lock it.
	Claim(ctx context.Context, caseID, reviewerID uuid.UUID) (*fraud.Case, error)
	// Review closes a pending case with a terminal decision.
	Review(ctx context.Context, caseID uuid.UUID, req ReviewCaseRequest) (*fraud.Case, error)
}

type fraudCaseUseCaseImpl struct {
	reads     FraudCaseReader
	writes    FraudCaseWriter
	blocklist KnownBadWriter
	clock     clock.Clock
	logger    *slog.Logger
}

func NewFraudCaseCommands(reads FraudCaseReader, writes FraudCaseWriter, blocklist KnownBadWriter, clk clock.Clock, logger *slog.Logger) FraudCaseCommands {
	return &fraudCaseUseCaseImpl{reads: reads, writes: writes, blocklist: blocklist, clock: clk, logger: logger}
}

func (uc *fraudCaseUseCaseImpl) Claim(ctx context.Context, caseID, reviewerID uuid.UUID) (*fraud.Case, error) {
	fraudCase, err := uc.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := fraudCase.StartReview(uc.clock.Now()); err != nil {
		return nil, err
	}
	if err := uc.writes.Update(ctx, fraudCase); err != nil {
		return nil, err
	}
	uc.logger.Info("fraud case claimed for review",
		"case_number", fraudCase.CaseNumber(), "reviewer_id", reviewerID)
	return fraudCase, nil
}

func (uc *fraudCaseUseCaseImpl) Review(ctx context.Context, caseID uuid.UUID, req ReviewCaseRequest) (*fraud.Case, error) {
	fraudCase, err := uc.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := fraudCase.Review(req.Status, req.ReviewerID, req.Notes, req.Actions, uc.clock.Now()); err != nil {
		return nil, err
	}
	if err := uc.writes.Update(ctx, fraudCase); err != nil {
		return nil, err
	}
	uc.applyRemediation(ctx, fraudCase, req.Actions)
	uc.logger.Info("fraud case reviewed",
		"case_number", fraudCase.CaseNumber(), "status", fraudCase.Status(),
		"reviewer_id", req.ReviewerID, "actions", req.Actions)
	return fraudCase, nil
}

// applyRemediation runs the blocklist side effects of a verdict. The
// verdict is already durable; a failed remediation write is logged and
// must not fail the review.
func (uc *fraudCaseUseCaseImpl) applyRemediation(ctx context.Context, fraudCase *fraud.Case, actions []string) {
	for _, action := range actions {
		var err error
		switch action {
		case ActionBlockedCustomer:
			err = uc.blocklist.Block(ctx, fraudCase.CustomerID(), fraudCase.CaseNumber())
		case ActionUnblockedCustomer:
			err = uc.blocklist.Unblock(ctx, fraudCase.CustomerID())
		default:
			continue
		}
		if err != nil {
			uc.logger.Error("failed to apply review remediation",
				"case_number", fraudCase.CaseNumber(), "action", action, "error", err)
		}
	}
}

func (uc *fraudCaseUseCaseImpl) load(ctx context.Context, caseID uuid.UUID) (*fraud.Case, error) {
	fraudCase, err := uc.reads.ByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if fraudCase == nil {
		return nil, errs.ErrFraudCaseNotFound
	}
	return fraudCase, nil
}
