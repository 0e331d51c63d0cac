package commands

import (
	"context"
	"log/slog"
	"time"

	"redemption-engine/internal/domain/redemption"
	"redemption-engine/internal/pkg/clock"
	"redemption-engine/internal/pkg/config"
	"redemption-engine/internal/pkg/credential"
	"redemption-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

type IssuedToken struct {
	Token  string
	Claims *credential.TokenClaims
}

type CredentialCommands interface {
	IssueToken(ctx context.Context, voucherID, customerID uuid.UUID) (*IssuedToken, error)
	IssueShortCode(ctx context.Context, voucherID uuid.UUID, codeType redemption.CodeType, ttl *time.Duration) (*ShortCodeSnapshot, error)
}

type credentialUseCaseImpl struct {
	vouchers       VoucherReader
	shortCodeReads ShortCodeReader
	shortCodes     ShortCodeWriter
	tokens         *credential.TokenService
	clock          clock.Clock
	dynamicTTL     time.Duration
	logger         *slog.Logger
}

func NewCredentialCommands(
	vouchers VoucherReader,
	shortCodeReads ShortCodeReader,
	shortCodes ShortCodeWriter,
	tokens *credential.TokenService,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) CredentialCommands {
	return &credentialUseCaseImpl{
		vouchers:       vouchers,
		shortCodeReads: shortCodeReads,
		shortCodes:     shortCodes,
		tokens:         tokens,
		clock:          clk,
		dynamicTTL:     cfg.Credential.DynamicCodeTTL,
		logger:         logger,
	}
}

func (uc *credentialUseCaseImpl) IssueToken(ctx context.Context, voucherID, customerID uuid.UUID) (*IssuedToken, error) {
	voucher, err := uc.vouchers.VoucherForRedemption(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, errs.ErrVoucherNotFound
	}

	token, claims, err := uc.tokens.Issue(voucherID, customerID, uc.clock.Now())
	if err != nil {
		return nil, err
	}
	return &IssuedToken{Token: token, Claims: claims}, nil
}

// IssueShortCode mints a DYNAMIC (single-use, time-boxed) code, or
// returns the voucher's stable STATIC code, creating it on first
// request. STATIC codes carry no expiry; their lifetime is the
// voucher's own.
func (uc *credentialUseCaseImpl) IssueShortCode(ctx context.Context, voucherID uuid.UUID, codeType redemption.CodeType, ttl *time.Duration) (*ShortCodeSnapshot, error) {
	if !codeType.Valid() {
		return nil, errs.ErrMalformedCredential
	}
	voucher, err := uc.vouchers.VoucherForRedemption(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, errs.ErrVoucherNotFound
	}

	now := uc.clock.Now()

	if codeType == redemption.CodeTypeStatic {
		existing, err := uc.shortCodeReads.StaticForVoucher(ctx, voucherID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	code, err := credential.NewShortCode()
	if err != nil {
		return nil, err
	}

	sc := ShortCodeSnapshot{
		VoucherID: voucherID,
		Code:      code,
		Type:      codeType,
	}
	if codeType == redemption.CodeTypeDynamic {
		d := uc.dynamicTTL
		if ttl != nil && *ttl > 0 {
			d = *ttl
		}
		expiresAt := now.Add(d)
		sc.ExpiresAt = &expiresAt
	}

	if err := uc.shortCodes.Create(ctx, sc, now); err != nil {
		return nil, err
	}
	return &sc, nil
}
