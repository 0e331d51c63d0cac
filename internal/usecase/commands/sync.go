package commands

import (
	"context"
	"strings"
	"time"

	"redemption-engine/internal/domain/redemption"
	"redemption-engine/internal/pkg/errs"
	"redemption-engine/internal/pkg/geo"

	"github.com/google/uuid"
)

// OfflineRecord is a redemption captured on a disconnected client,
// awaiting reconciliation against current server state.
type OfflineRecord struct {
	VoucherID  uuid.UUID
	CustomerID uuid.UUID
	Code       string
	RedeemedAt time.Time
	Location   *geo.Point
	Metadata   map[string]string
}

type RejectedRecord struct {
	Record OfflineRecord
	Err    error
}

type SyncResult struct {
	Accepted []*redemption.Redemption
	Rejected []RejectedRecord
}

// SyncOffline reconciles a batch of client-recorded redemptions.
// Records are causally independent events from potentially different
// devices, so each one succeeds or fails on its own: the batch is
// never all-or-nothing and no outcome is silently dropped.
func (uc *redemptionUseCaseImpl) SyncOffline(ctx context.Context, records []OfflineRecord) (*SyncResult, error) {
	result := &SyncResult{}
	for _, record := range records {
		rec, err := uc.reconcileOne(ctx, record)
		if err != nil {
			uc.logger.Info("offline redemption rejected",
				"voucher_id", record.VoucherID, "customer_id", record.CustomerID, "reason", err.Error())
			result.Rejected = append(result.Rejected, RejectedRecord{Record: record, Err: err})
			continue
		}
		result.Accepted = append(result.Accepted, rec)
	}
	return result, nil
}

func (uc *redemptionUseCaseImpl) reconcileOne(ctx context.Context, record OfflineRecord) (*redemption.Redemption, error) {
	now := uc.clock.Now()

	voucher, err := uc.vouchers.VoucherForRedemption(ctx, record.VoucherID)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, errs.ErrVoucherNotFound
	}

	// Resolve the recorded code against the short-code store so the
	// same normalized code the online path records is used here too.
	// Codes that do not resolve (token jtis) are recorded as sent.
	code := record.Code
	sc, err := uc.shortCodes.ByCode(ctx, strings.ToUpper(strings.TrimSpace(record.Code)))
	if err != nil {
		return nil, err
	}
	if sc != nil {
		code = sc.Code
	}

	// Same checks as the online path; expiry is judged against the
	// client-side attempt time, caps against current server state.
	if err := uc.validateEligibility(ctx, voucher, record.CustomerID, code, record.RedeemedAt); err != nil {
		return nil, err
	}

	// A DYNAMIC code stays single-use across channels: reconciliation
	// consumes the same replay key the online path does, so of two
	// records claiming one code only the first lands.
	if sc != nil && sc.Type == redemption.CodeTypeDynamic {
		ttl := uc.replayTTL
		if sc.ExpiresAt != nil && sc.ExpiresAt.After(now) {
			ttl = sc.ExpiresAt.Sub(now)
		}
		ok, err := uc.replay.ConsumeIfAbsent(ctx, "code:"+sc.Code, ttl)
		if err != nil {
			return nil, err
		}
		if !ok {
			uc.noteRejection(ctx, record.CustomerID)
			return nil, errs.ErrReplayedCredential
		}
	}

	rec, err := redemption.NewOffline(
		record.VoucherID, record.CustomerID, voucher.ProviderID,
		code, record.Location, record.Metadata,
		record.RedeemedAt, now,
	)
	if err != nil {
		return nil, err
	}
	if err := uc.writes.Create(ctx, rec); err != nil {
		return nil, err
	}

	if err := rec.MarkSynced(now); err != nil {
		return nil, err
	}
	if err := uc.writes.MarkSynced(ctx, rec.ID(), now); err != nil {
		return nil, err
	}
	return rec, nil
}
