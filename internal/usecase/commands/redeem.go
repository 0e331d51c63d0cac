package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"redemption-engine/internal/domain/fraud"
	"redemption-engine/internal/domain/redemption"
	"redemption-engine/internal/pkg/clock"
	"redemption-engine/internal/pkg/config"
	"redemption-engine/internal/pkg/credential"
	"redemption-engine/internal/pkg/errs"
	"redemption-engine/internal/pkg/geo"

	"github.com/google/uuid"
)

type RedeemRequest struct {
	Credential string
	CustomerID uuid.UUID
	Location   *geo.Point
	Metadata   map[string]string
}

type RedeemResult struct {
	Redemption *redemption.Redemption
	// FraudCase is non-nil when the attempt was escalated for review.
	// The redemption itself still stands; escalation is not a rejection.
	FraudCase *fraud.Case
}

type RedemptionCommands interface {
	Redeem(ctx context.Context, req RedeemRequest) (*RedeemResult, error)
	SyncOffline(ctx context.Context, records []OfflineRecord) (*SyncResult, error)
}

type redemptionUseCaseImpl struct {
	vouchers   VoucherReader
	reads      RedemptionReader
	writes     RedemptionWriter
	shortCodes ShortCodeReader
	replay     ReplayStore
	cases      FraudCaseWriter
	knownBad   KnownBadReader
	tokens     *credential.TokenService
	engine     *fraud.Engine
	clock      clock.Clock
	fraudCfg   config.FraudConfig
	replayTTL  time.Duration
	logger     *slog.Logger
}

func NewRedemptionCommands(
	vouchers VoucherReader,
	reads RedemptionReader,
	writes RedemptionWriter,
	shortCodes ShortCodeReader,
	replay ReplayStore,
	cases FraudCaseWriter,
	knownBad KnownBadReader,
	tokens *credential.TokenService,
	engine *fraud.Engine,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) RedemptionCommands {
	return &redemptionUseCaseImpl{
		vouchers:   vouchers,
		reads:      reads,
		writes:     writes,
		shortCodes: shortCodes,
		replay:     replay,
		cases:      cases,
		knownBad:   knownBad,
		tokens:     tokens,
		engine:     engine,
		clock:      clk,
		fraudCfg:   cfg.Fraud,
		replayTTL:  cfg.Credential.ReplayMaxTTL,
		logger:     logger,
	}
}

func (uc *redemptionUseCaseImpl) Redeem(ctx context.Context, req RedeemRequest) (*RedeemResult, error) {
	now := uc.clock.Now()
	if req.Location != nil && !req.Location.Valid() {
		return nil, redemption.ErrInvalidLocation
	}

	voucherID, code, err := uc.resolveCredential(ctx, req, now)
	if err != nil {
		return nil, err
	}

	voucher, err := uc.vouchers.VoucherForRedemption(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, errs.ErrVoucherNotFound
	}

	if err := uc.validateEligibility(ctx, voucher, req.CustomerID, code, now); err != nil {
		uc.logger.Info("redemption attempt rejected",
			"voucher_id", voucherID, "customer_id", req.CustomerID, "reason", err.Error())
		return nil, err
	}

	score, err := uc.scoreAttempt(ctx, voucher, req, code, now)
	if err != nil {
		return nil, err
	}

	rec, err := redemption.New(voucherID, req.CustomerID, voucher.ProviderID, code, req.Location, req.Metadata, now)
	if err != nil {
		return nil, err
	}
	if err := uc.writes.Create(ctx, rec); err != nil {
		return nil, err
	}

	result := &RedeemResult{Redemption: rec}
	if score.ShouldEscalate(uc.fraudCfg.EscalationThreshold) {
		fraudCase, caseErr := uc.openCase(ctx, rec, score, now)
		if caseErr != nil {
			// The redemption is already durable; a failed escalation is
			// an operational problem, not grounds to fail the caller.
			uc.logger.Error("failed to open fraud case for escalated redemption",
				"redemption_id", rec.ID(), "risk_score", score.RiskScore, "error", caseErr)
		} else {
			result.FraudCase = fraudCase
			uc.logger.Warn("fraud case opened",
				"case_number", fraudCase.CaseNumber(), "redemption_id", rec.ID(),
				"risk_score", score.RiskScore, "urgent", fraudCase.IsUrgent())
		}
	}

	return result, nil
}

// resolveCredential authenticates the presented credential and resolves
// the voucher it claims plus the code to record against. Single-use
// credentials (token jtis and DYNAMIC short codes) are consumed here,
// atomically, exactly once.
func (uc *redemptionUseCaseImpl) resolveCredential(ctx context.Context, req RedeemRequest, now time.Time) (uuid.UUID, string, error) {
	if strings.Count(req.Credential, ".") == 2 {
		claims, err := uc.tokens.Verify(req.Credential, now)
		if err != nil {
			return uuid.Nil, "", err
		}
		// A token presented by a customer it was not issued to is
		// structurally invalid for this request.
		if claims.CustomerID != req.CustomerID {
			return uuid.Nil, "", errs.ErrMalformedCredential
		}
		ttl := claims.ExpiresAt.Time.Sub(now)
		ok, err := uc.replay.ConsumeIfAbsent(ctx, "jti:"+claims.ID, ttl)
		if err != nil {
			return uuid.Nil, "", err
		}
		if !ok {
			uc.noteRejection(ctx, req.CustomerID)
			return uuid.Nil, "", errs.ErrReplayedCredential
		}
		return claims.VoucherID, claims.ID, nil
	}

	code := strings.ToUpper(strings.TrimSpace(req.Credential))
	if code == "" {
		return uuid.Nil, "", errs.ErrMalformedCredential
	}
	sc, err := uc.shortCodes.ByCode(ctx, code)
	if err != nil {
		return uuid.Nil, "", err
	}
	if sc == nil {
		return uuid.Nil, "", errs.ErrCredentialNotFound
	}
	if sc.ExpiresAt != nil && !sc.ExpiresAt.After(now) {
		return uuid.Nil, "", errs.ErrExpiredCredential
	}
	if sc.Type == redemption.CodeTypeDynamic {
		ttl := uc.replayTTL
		if sc.ExpiresAt != nil {
			ttl = sc.ExpiresAt.Sub(now)
		}
		ok, err := uc.replay.ConsumeIfAbsent(ctx, "code:"+sc.Code, ttl)
		if err != nil {
			return uuid.Nil, "", err
		}
		if !ok {
			uc.noteRejection(ctx, req.CustomerID)
			return uuid.Nil, "", errs.ErrReplayedCredential
		}
	}
	return sc.VoucherID, sc.Code, nil
}

// validateEligibility applies the ordered eligibility rules. All reads
// here are advisory; the unique constraint enforced at persistence time
// is the authoritative guard against races.
func (uc *redemptionUseCaseImpl) validateEligibility(ctx context.Context, v *VoucherSnapshot, customerID uuid.UUID, code string, at time.Time) error {
	if v.State != VoucherStatePublished {
		return errs.ErrVoucherNotRedeemable
	}
	if !v.ExpiresAt.After(at) {
		return errs.ErrVoucherExpired
	}
	existing, err := uc.reads.FindByCredential(ctx, v.ID, customerID, code)
	if err != nil {
		return err
	}
	if existing != nil {
		return errs.ErrDuplicateRedemption
	}
	if v.MaxRedemptions != nil {
		total, err := uc.reads.CountForVoucher(ctx, v.ID)
		if err != nil {
			return err
		}
		if total >= int64(*v.MaxRedemptions) {
			return errs.ErrRedemptionCapExceeded
		}
	}
	byCustomer, err := uc.reads.CountForCustomer(ctx, v.ID, customerID)
	if err != nil {
		return err
	}
	if byCustomer >= int64(v.MaxRedemptionsPerUser) {
		return errs.ErrPerUserCapExceeded
	}
	return nil
}

// scoreAttempt pre-fetches the contextual signals and runs the scoring
// engine. Detectors never touch the store directly.
func (uc *redemptionUseCaseImpl) scoreAttempt(ctx context.Context, v *VoucherSnapshot, req RedeemRequest, code string, now time.Time) (fraud.Score, error) {
	var zero fraud.Score

	custHour, err := uc.reads.CountCustomerSince(ctx, req.CustomerID, now.Add(-time.Hour))
	if err != nil {
		return zero, err
	}
	custDay, err := uc.reads.CountCustomerSince(ctx, req.CustomerID, now.Add(-24*time.Hour))
	if err != nil {
		return zero, err
	}
	provHour, err := uc.reads.CountProviderSince(ctx, v.ProviderID, now.Add(-time.Hour))
	if err != nil {
		return zero, err
	}
	rejections, err := uc.replay.Rejections(ctx, req.CustomerID)
	if err != nil {
		return zero, err
	}
	bad, err := uc.knownBad.IsKnownBad(ctx, req.CustomerID)
	if err != nil {
		return zero, err
	}

	fctx := fraud.Context{
		CustomerRedemptionsLastHour: int(custHour),
		CustomerRedemptionsLastDay:  int(custDay),
		ProviderRedemptionsLastHour: int(provHour),
		ReplayRejectionsLastDay:     rejections,
		ProviderLocation:            v.ProviderLocation,
		GeofenceRadiusKm:            v.GeofenceRadiusKm,
		KnownBadCustomer:            bad,
	}

	if req.Location != nil {
		last, err := uc.reads.LastLocatedForCustomer(ctx, req.CustomerID)
		if err != nil {
			return zero, err
		}
		if last != nil && last.Location != nil {
			dist := geo.DistanceKm(*req.Location, *last.Location)
			mins := now.Sub(last.RedeemedAt).Minutes()
			fctx.DistanceFromLastKm = &dist
			fctx.MinutesSinceLast = &mins
		}
	}

	attempt := fraud.Attempt{
		VoucherID:  v.ID,
		CustomerID: req.CustomerID,
		ProviderID: v.ProviderID,
		Code:       code,
		At:         now,
		Location:   req.Location,
	}
	return uc.engine.Evaluate(attempt, fctx), nil
}

func (uc *redemptionUseCaseImpl) openCase(ctx context.Context, rec *redemption.Redemption, score fraud.Score, now time.Time) (*fraud.Case, error) {
	seq, err := uc.cases.NextCaseNumber(ctx, now.Year())
	if err != nil {
		return nil, err
	}
	fraudCase, err := fraud.NewCase(
		fraud.FormatCaseNumber(now.Year(), seq),
		rec.ID(), rec.CustomerID(), rec.ProviderID(), rec.VoucherID(),
		score, nil, now,
	)
	if err != nil {
		return nil, err
	}
	if err := uc.cases.Create(ctx, fraudCase); err != nil {
		return nil, err
	}
	return fraudCase, nil
}

// Rejection bookkeeping feeds the scoring engine; losing a count must
// not mask the replay rejection itself.
func (uc *redemptionUseCaseImpl) noteRejection(ctx context.Context, customerID uuid.UUID) {
	if err := uc.replay.NoteRejection(ctx, customerID); err != nil {
		uc.logger.Error("failed to record replay rejection", "customer_id", customerID, "error", err)
	}
}
