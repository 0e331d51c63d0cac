package api

import (
	"net/http"
	"strconv"
	"time"

	"redemption-engine/internal/domain/fraud"
	reqdto "redemption-engine/internal/handler/dto/request"
	resdto "redemption-engine/internal/handler/dto/response"
	"redemption-engine/internal/handler/httperr"
	"redemption-engine/internal/usecase/commands"
	"redemption-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FraudCaseHandler struct {
	fraudCaseUseCase commands.FraudCaseCommands
	fraudCaseQueries queries.FraudCaseQueries
}

func NewFraudCaseHandler(fraudCaseUseCase commands.FraudCaseCommands, fraudCaseQueries queries.FraudCaseQueries) *FraudCaseHandler {
	return &FraudCaseHandler{
		fraudCaseUseCase: fraudCaseUseCase,
		fraudCaseQueries: fraudCaseQueries,
	}
}

// @Summary Search fraud cases
// @Description Search fraud cases with filters and pagination
// @Tags fraud-cases
// @Produce json
// @Param status query string false "Case status"
// @Param provider_id query string false "Provider ID"
// @Param customer_id query string false "Customer ID"
// @Param voucher_id query string false "Voucher ID"
// @Param min_risk_score query int false "Minimum risk score"
// @Param urgent query bool false "Urgent cases only"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} resdto.CaseSearchResponse
// @Failure 400 {object} httperr.Response
// @Router /fraud-cases [get]
func (h *FraudCaseHandler) Search(c *gin.Context) {
	filters, err := parseCaseFilters(c)
	if err != nil {
		respondBindError(c, err)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	result, err := h.fraudCaseQueries.Search(c.Request.Context(), filters, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCaseSearchResult(result))
}

// @Summary Fraud case statistics
// @Description Aggregate statistics over fraud cases for a period
// @Tags fraud-cases
// @Produce json
// @Param provider_id query string false "Provider ID"
// @Param from query string false "Period start (RFC3339)"
// @Param to query string false "Period end (RFC3339)"
// @Success 200 {object} resdto.StatisticsResponse
// @Failure 400 {object} httperr.Response
// @Router /fraud-cases/statistics [get]
func (h *FraudCaseHandler) Statistics(c *gin.Context) {
	var providerID *uuid.UUID
	if s := c.Query("provider_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			respondBindError(c, err)
			return
		}
		providerID = &id
	}

	period, err := parsePeriod(c)
	if err != nil {
		respondBindError(c, err)
		return
	}

	stats, err := h.fraudCaseQueries.Statistics(c.Request.Context(), providerID, period)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromStatistics(stats))
}

// @Summary Get fraud case
// @Description Get fraud case by ID
// @Tags fraud-cases
// @Produce json
// @Param id path string true "Case ID"
// @Success 200 {object} resdto.FraudCaseResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /fraud-cases/{id} [get]
func (h *FraudCaseHandler) GetByID(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}

	view, err := h.fraudCaseQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCaseView(view))
}

// @Summary Claim fraud case
// @Description Move a pending case into review
// @Tags fraud-cases
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Param request body reqdto.ClaimCaseRequest true "Claim request"
// @Success 200 {object} resdto.FraudCaseResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /fraud-cases/{id}/claim [post]
func (h *FraudCaseHandler) Claim(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}

	var req reqdto.ClaimCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	fraudCase, err := h.fraudCaseUseCase.Claim(c.Request.Context(), id, req.ReviewerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCase(fraudCase))
}

// @Summary Review fraud case
// @Description Close a case with a terminal decision
// @Tags fraud-cases
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Param request body reqdto.ReviewCaseRequest true "Review decision"
// @Success 200 {object} resdto.FraudCaseResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /fraud-cases/{id}/review [post]
func (h *FraudCaseHandler) Review(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}

	var req reqdto.ReviewCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	fraudCase, err := h.fraudCaseUseCase.Review(c.Request.Context(), id, commands.ReviewCaseRequest{
		Status:     fraud.Status(req.Status),
		ReviewerID: req.ReviewerID,
		Notes:      req.Notes,
		Actions:    req.Actions,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCase(fraudCase))
}

func (h *FraudCaseHandler) caseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "Invalid case ID format", nil)
		return uuid.Nil, false
	}
	return id, true
}

func parseCaseFilters(c *gin.Context) (queries.CaseFilters, error) {
	var filters queries.CaseFilters

	if s := c.Query("status"); s != "" {
		status := fraud.Status(s)
		if !status.Valid() {
			return filters, errInvalidQuery("status")
		}
		filters.Status = &status
	}
	for param, target := range map[string]**uuid.UUID{
		"provider_id": &filters.ProviderID,
		"customer_id": &filters.CustomerID,
		"voucher_id":  &filters.VoucherID,
	} {
		if s := c.Query(param); s != "" {
			id, err := uuid.Parse(s)
			if err != nil {
				return filters, errInvalidQuery(param)
			}
			*target = &id
		}
	}
	if s := c.Query("min_risk_score"); s != "" {
		score, err := strconv.Atoi(s)
		if err != nil || score < 0 || score > 100 {
			return filters, errInvalidQuery("min_risk_score")
		}
		filters.MinRiskScore = &score
	}
	if s := c.Query("urgent"); s != "" {
		urgent, err := strconv.ParseBool(s)
		if err != nil {
			return filters, errInvalidQuery("urgent")
		}
		filters.UrgentOnly = urgent
	}
	return filters, nil
}

func parsePeriod(c *gin.Context) (queries.StatisticsPeriod, error) {
	var period queries.StatisticsPeriod
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return period, errInvalidQuery("from")
		}
		period.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return period, errInvalidQuery("to")
		}
		period.To = &t
	}
	return period, nil
}

type invalidQueryError struct {
	param string
}

func (e invalidQueryError) Error() string {
	return "invalid query parameter: " + e.param
}

func errInvalidQuery(param string) error {
	return invalidQueryError{param: param}
}
