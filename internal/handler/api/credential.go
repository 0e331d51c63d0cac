package api

import (
	"net/http"
	"time"

	"redemption-engine/internal/domain/redemption"
	reqdto "redemption-engine/internal/handler/dto/request"
	resdto "redemption-engine/internal/handler/dto/response"
	"redemption-engine/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type CredentialHandler struct {
	credentialUseCase commands.CredentialCommands
}

func NewCredentialHandler(credentialUseCase commands.CredentialCommands) *CredentialHandler {
	return &CredentialHandler{
		credentialUseCase: credentialUseCase,
	}
}

// @Summary Issue redemption token
// @Description Issue a single-use signed token bound to a voucher and customer
// @Tags credentials
// @Accept json
// @Produce json
// @Param request body reqdto.IssueTokenRequest true "Token request"
// @Success 201 {object} resdto.IssuedTokenResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /credentials/token [post]
func (h *CredentialHandler) IssueToken(c *gin.Context) {
	var req reqdto.IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	issued, err := h.credentialUseCase.IssueToken(c.Request.Context(), req.VoucherID, req.CustomerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromIssuedToken(issued))
}

// @Summary Issue short code
// @Description Issue a STATIC or DYNAMIC short code for a voucher
// @Tags credentials
// @Accept json
// @Produce json
// @Param request body reqdto.IssueShortCodeRequest true "Short code request"
// @Success 201 {object} resdto.ShortCodeResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /credentials/short-code [post]
func (h *CredentialHandler) IssueShortCode(c *gin.Context) {
	var req reqdto.IssueShortCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	var ttl *time.Duration
	if req.TTLSeconds != nil {
		d := time.Duration(*req.TTLSeconds) * time.Second
		ttl = &d
	}

	sc, err := h.credentialUseCase.IssueShortCode(c.Request.Context(), req.VoucherID, redemption.CodeType(req.Type), ttl)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromShortCode(sc))
}
