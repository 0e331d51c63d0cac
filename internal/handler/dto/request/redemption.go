package request

import (
	"time"

	"github.com/google/uuid"
)

type LocationPayload struct {
	Lat float64 `json:"lat" binding:"required"`
	Lng float64 `json:"lng" binding:"required"`
}

type RedeemRequest struct {
	Credential string            `json:"credential" binding:"required"`
	CustomerID uuid.UUID         `json:"customer_id" binding:"required"`
	Location   *LocationPayload  `json:"location,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type OfflineRecordPayload struct {
	VoucherID  uuid.UUID         `json:"voucher_id" binding:"required"`
	CustomerID uuid.UUID         `json:"customer_id" binding:"required"`
	Code       string            `json:"code" binding:"required"`
	RedeemedAt time.Time         `json:"redeemed_at" binding:"required"`
	Location   *LocationPayload  `json:"location,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type SyncOfflineRequest struct {
	Records []OfflineRecordPayload `json:"records" binding:"required,min=1,dive"`
}
