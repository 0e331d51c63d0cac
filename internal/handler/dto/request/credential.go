package request

import (
	"github.com/google/uuid"
)

type IssueTokenRequest struct {
	VoucherID  uuid.UUID `json:"voucher_id" binding:"required"`
	CustomerID uuid.UUID `json:"customer_id" binding:"required"`
}

type IssueShortCodeRequest struct {
	VoucherID uuid.UUID `json:"voucher_id" binding:"required"`
	Type      string    `json:"type" binding:"required,oneof=STATIC DYNAMIC"`
	// TTLSeconds overrides the default lifetime for DYNAMIC codes.
	TTLSeconds *int64 `json:"ttl_seconds,omitempty" binding:"omitempty,gt=0"`
}
