package api

import (
	"net/http"

	reqdto "redemption-engine/internal/handler/dto/request"
	resdto "redemption-engine/internal/handler/dto/response"
	"redemption-engine/internal/pkg/geo"
	"redemption-engine/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type RedemptionHandler struct {
	redemptionUseCase commands.RedemptionCommands
}

func NewRedemptionHandler(redemptionUseCase commands.RedemptionCommands) *RedemptionHandler {
	return &RedemptionHandler{
		redemptionUseCase: redemptionUseCase,
	}
}

// @Summary Redeem voucher
// @Description Redeem a voucher by presenting a signed token or short code
// @Tags redemptions
// @Accept json
// @Produce json
// @Param request body reqdto.RedeemRequest true "Redemption request"
// @Success 201 {object} resdto.RedemptionResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 410 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /redemptions [post]
func (h *RedemptionHandler) Redeem(c *gin.Context) {
	var req reqdto.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.redemptionUseCase.Redeem(c.Request.Context(), commands.RedeemRequest{
		Credential: req.Credential,
		CustomerID: req.CustomerID,
		Location:   toGeoPoint(req.Location),
		Metadata:   req.Metadata,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromRedemption(result.Redemption))
}

// @Summary Sync offline redemptions
// @Description Reconcile a batch of redemptions recorded while disconnected
// @Tags redemptions
// @Accept json
// @Produce json
// @Param request body reqdto.SyncOfflineRequest true "Offline records"
// @Success 200 {object} resdto.SyncOfflineResponse
// @Failure 400 {object} httperr.Response
// @Router /redemptions/sync [post]
func (h *RedemptionHandler) SyncOffline(c *gin.Context) {
	var req reqdto.SyncOfflineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	records := make([]commands.OfflineRecord, len(req.Records))
	for i, r := range req.Records {
		records[i] = commands.OfflineRecord{
			VoucherID:  r.VoucherID,
			CustomerID: r.CustomerID,
			Code:       r.Code,
			RedeemedAt: r.RedeemedAt,
			Location:   toGeoPoint(r.Location),
			Metadata:   r.Metadata,
		}
	}

	result, err := h.redemptionUseCase.SyncOffline(c.Request.Context(), records)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromSyncResult(result, ErrCodeFor))
}

func toGeoPoint(p *reqdto.LocationPayload) *geo.Point {
	if p == nil {
		return nil
	}
	return &geo.Point{Lat: p.Lat, Lng: p.Lng}
}
