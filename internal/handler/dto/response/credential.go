package response

import (
	"time"

	"redemption-engine/internal/usecase/commands"

	"github.com/google/uuid"
)

type IssuedTokenResponse struct {
	Token     string    `json:"token"`
	VoucherID uuid.UUID `json:"voucher_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func FromIssuedToken(t *commands.IssuedToken) IssuedTokenResponse {
	return IssuedTokenResponse{
		Token:     t.Token,
		VoucherID: t.Claims.VoucherID,
		ExpiresAt: t.Claims.ExpiresAt.Time,
	}
}

type ShortCodeResponse struct {
	VoucherID uuid.UUID  `json:"voucher_id"`
	Code      string     `json:"code"`
	Type      string     `json:"type"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func FromShortCode(sc *commands.ShortCodeSnapshot) ShortCodeResponse {
	return ShortCodeResponse{
		VoucherID: sc.VoucherID,
		Code:      sc.Code,
		Type:      string(sc.Type),
		ExpiresAt: sc.ExpiresAt,
	}
}
