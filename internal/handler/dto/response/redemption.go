package response

import (
	"time"

	"redemption-engine/internal/domain/redemption"
	"redemption-engine/internal/usecase/commands"

	"github.com/google/uuid"
)

type LocationResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type RedemptionResponse struct {
	ID                uuid.UUID         `json:"id"`
	VoucherID         uuid.UUID         `json:"voucher_id"`
	CustomerID        uuid.UUID         `json:"customer_id"`
	ProviderID        uuid.UUID         `json:"provider_id"`
	Code              string            `json:"code"`
	RedeemedAt        time.Time         `json:"redeemed_at"`
	Location          *LocationResponse `json:"location,omitempty"`
	OfflineRedemption bool              `json:"offline_redemption"`
	SyncedAt          *time.Time        `json:"synced_at,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

func FromRedemption(r *redemption.Redemption) RedemptionResponse {
	resp := RedemptionResponse{
		ID:                r.ID(),
		VoucherID:         r.VoucherID(),
		CustomerID:        r.CustomerID(),
		ProviderID:        r.ProviderID(),
		Code:              r.Code(),
		RedeemedAt:        r.RedeemedAt(),
		OfflineRedemption: r.Offline(),
		SyncedAt:          r.SyncedAt(),
		Metadata:          r.Metadata(),
		CreatedAt:         r.CreatedAt(),
	}
	if loc := r.Location(); loc != nil {
		resp.Location = &LocationResponse{Lat: loc.Lat, Lng: loc.Lng}
	}
	return resp
}

type RejectedRecordResponse struct {
	VoucherID  uuid.UUID `json:"voucher_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Code       string    `json:"code"`
	ErrorCode  string    `json:"error_code"`
	Message    string    `json:"message"`
}

type SyncOfflineResponse struct {
	Accepted []RedemptionResponse     `json:"accepted"`
	Rejected []RejectedRecordResponse `json:"rejected"`
}

func FromSyncResult(result *commands.SyncResult, codeFor func(error) string) SyncOfflineResponse {
	resp := SyncOfflineResponse{
		Accepted: make([]RedemptionResponse, 0, len(result.Accepted)),
		Rejected: make([]RejectedRecordResponse, 0, len(result.Rejected)),
	}
	for _, r := range result.Accepted {
		resp.Accepted = append(resp.Accepted, FromRedemption(r))
	}
	for _, rej := range result.Rejected {
		resp.Rejected = append(resp.Rejected, RejectedRecordResponse{
			VoucherID:  rej.Record.VoucherID,
			CustomerID: rej.Record.CustomerID,
			Code:       rej.Record.Code,
			ErrorCode:  codeFor(rej.Err),
			Message:    rej.Err.Error(),
		})
	}
	return resp
}
