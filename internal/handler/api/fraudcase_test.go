//go:build unit

package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"redemption-engine/internal/domain/fraud"
	"redemption-engine/internal/handler/api"
	"redemption-engine/internal/pkg/errs"
	"redemption-engine/internal/usecase/commands"
	"redemption-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFraudCaseCommands struct {
	claimResult  *fraud.Case
	claimErr     error
	reviewResult *fraud.Case
	reviewErr    error
}

func (f *fakeFraudCaseCommands) Claim(_ context.Context, _, _ uuid.UUID) (*fraud.Case, error) {
	return f.claimResult, f.claimErr
}

func (f *fakeFraudCaseCommands) Review(_ context.Context, _ uuid.UUID, _ commands.ReviewCaseRequest) (*fraud.Case, error) {
	return f.reviewResult, f.reviewErr
}

type fakeFraudCaseQueries struct {
	searchResult *queries.CaseSearchResult
	view         *queries.CaseView
	viewErr      error
	stats        *queries.Statistics

	gotFilters queries.CaseFilters
}

func (f *fakeFraudCaseQueries) Search(_ context.Context, filters queries.CaseFilters, page, limit int) (*queries.CaseSearchResult, error) {
	f.gotFilters = filters
	if f.searchResult != nil {
		return f.searchResult, nil
	}
	return &queries.CaseSearchResult{Data: []queries.CaseView{}, Page: page, Limit: limit}, nil
}

func (f *fakeFraudCaseQueries) GetByID(_ context.Context, _ uuid.UUID) (*queries.CaseView, error) {
	return f.view, f.viewErr
}

func (f *fakeFraudCaseQueries) Statistics(_ context.Context, _ *uuid.UUID, _ queries.StatisticsPeriod) (*queries.Statistics, error) {
	return f.stats, nil
}

func newFraudCaseRouter(cmds commands.FraudCaseCommands, qs queries.FraudCaseQueries) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := api.NewFraudCaseHandler(cmds, qs)
	router.GET("/fraud-cases", h.Search)
	router.GET("/fraud-cases/statistics", h.Statistics)
	router.GET("/fraud-cases/:id", h.GetByID)
	router.POST("/fraud-cases/:id/claim", h.Claim)
	router.POST("/fraud-cases/:id/review", h.Review)
	return router
}

func get(t *testing.T, router *gin.Engine, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sampleCase(t *testing.T) *fraud.Case {
	t.Helper()
	c, err := fraud.NewCase(
		"FRAUD-2026-0001",
		uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		fraud.Score{RiskScore: 85, Flags: []fraud.Flag{{Type: fraud.FlagImpossibleTravel, Severity: fraud.SeverityHigh, Message: "x"}}},
		nil, time.Now(),
	)
	require.NoError(t, err)
	return c
}

func TestSearchEndpoint(t *testing.T) {
	t.Run("filters are parsed", func(t *testing.T) {
		qs := &fakeFraudCaseQueries{}
		router := newFraudCaseRouter(&fakeFraudCaseCommands{}, qs)

		providerID := uuid.New()
		w := get(t, router, "/fraud-cases?status=PENDING&provider_id="+providerID.String()+"&min_risk_score=70&urgent=true")
		require.Equal(t, http.StatusOK, w.Code)

		require.NotNil(t, qs.gotFilters.Status)
		assert.Equal(t, fraud.StatusPending, *qs.gotFilters.Status)
		require.NotNil(t, qs.gotFilters.ProviderID)
		assert.Equal(t, providerID, *qs.gotFilters.ProviderID)
		require.NotNil(t, qs.gotFilters.MinRiskScore)
		assert.Equal(t, 70, *qs.gotFilters.MinRiskScore)
		assert.True(t, qs.gotFilters.UrgentOnly)
	})

	t.Run("invalid status", func(t *testing.T) {
		router := newFraudCaseRouter(&fakeFraudCaseCommands{}, &fakeFraudCaseQueries{})
		w := get(t, router, "/fraud-cases?status=CLOSED")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid min_risk_score", func(t *testing.T) {
		router := newFraudCaseRouter(&fakeFraudCaseCommands{}, &fakeFraudCaseQueries{})
		w := get(t, router, "/fraud-cases?min_risk_score=101")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("pagination envelope", func(t *testing.T) {
		qs := &fakeFraudCaseQueries{searchResult: &queries.CaseSearchResult{
			Data:  []queries.CaseView{{ID: uuid.New(), CaseNumber: "FRAUD-2026-0001"}},
			Total: 1, Page: 1, Limit: 20,
		}}
		router := newFraudCaseRouter(&fakeFraudCaseCommands{}, qs)

		w := get(t, router, "/fraud-cases")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data  []json.RawMessage `json:"data"`
			Total int64             `json:"total"`
			Page  int               `json:"page"`
			Limit int               `json:"limit"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Data, 1)
		assert.Equal(t, int64(1), resp.Total)
		assert.Equal(t, 20, resp.Limit)
	})
}

func TestGetByIDEndpoint(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		id := uuid.New()
		qs := &fakeFraudCaseQueries{view: &queries.CaseView{ID: id, CaseNumber: "FRAUD-2026-0001", IsUrgent: true}}
		router := newFraudCaseRouter(&fakeFraudCaseCommands{}, qs)

		w := get(t, router, "/fraud-cases/"+id.String())
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "FRAUD-2026-0001", resp["case_number"])
		assert.Equal(t, true, resp["is_urgent"])
	})

	t.Run("missing", func(t *testing.T) {
		qs := &fakeFraudCaseQueries{viewErr: errs.ErrFraudCaseNotFound}
		router := newFraudCaseRouter(&fakeFraudCaseCommands{}, qs)

		w := get(t, router, "/fraud-cases/"+uuid.NewString())
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		router := newFraudCaseRouter(&fakeFraudCaseCommands{}, &fakeFraudCaseQueries{})
		w := get(t, router, "/fraud-cases/not-a-uuid")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestClaimEndpoint(t *testing.T) {
	t.Run("claimed", func(t *testing.T) {
		c := sampleCase(t)
		require.NoError(t, c.StartReview(time.Now()))
		router := newFraudCaseRouter(&fakeFraudCaseCommands{claimResult: c}, &fakeFraudCaseQueries{})

		w := postJSON(t, router, "/fraud-cases/"+c.ID().String()+"/claim", map[string]any{
			"reviewer_id": uuid.NewString(),
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, string(fraud.StatusReviewing), resp["status"])
	})

	t.Run("already claimed", func(t *testing.T) {
		router := newFraudCaseRouter(&fakeFraudCaseCommands{claimErr: errs.ErrInvalidStateTransition}, &fakeFraudCaseQueries{})
		w := postJSON(t, router, "/fraud-cases/"+uuid.NewString()+"/claim", map[string]any{
			"reviewer_id": uuid.NewString(),
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "INVALID_STATE_TRANSITION", errorCode(t, w))
	})

	t.Run("missing reviewer", func(t *testing.T) {
		router := newFraudCaseRouter(&fakeFraudCaseCommands{}, &fakeFraudCaseQueries{})
		w := postJSON(t, router, "/fraud-cases/"+uuid.NewString()+"/claim", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReviewEndpoint(t *testing.T) {
	reviewBody := func() map[string]any {
		return map[string]any{
			"status":      "REJECTED",
			"reviewer_id": uuid.NewString(),
			"notes":       "confirmed stolen code",
			"actions":     []string{"BLOCKED_CUSTOMER"},
		}
	}

	t.Run("reviewed", func(t *testing.T) {
		c := sampleCase(t)
		require.NoError(t, c.Review(fraud.StatusRejected, uuid.New(), "confirmed stolen code", []string{"BLOCKED_CUSTOMER"}, time.Now()))
		router := newFraudCaseRouter(&fakeFraudCaseCommands{reviewResult: c}, &fakeFraudCaseQueries{})

		w := postJSON(t, router, "/fraud-cases/"+c.ID().String()+"/review", reviewBody())
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, string(fraud.StatusRejected), resp["status"])
		assert.NotNil(t, resp["reviewed_at"])
	})

	t.Run("non-terminal status rejected at binding", func(t *testing.T) {
		body := reviewBody()
		body["status"] = "REVIEWING"
		router := newFraudCaseRouter(&fakeFraudCaseCommands{}, &fakeFraudCaseQueries{})
		w := postJSON(t, router, "/fraud-cases/"+uuid.NewString()+"/review", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("closed case conflict", func(t *testing.T) {
		router := newFraudCaseRouter(&fakeFraudCaseCommands{reviewErr: errs.ErrInvalidStateTransition}, &fakeFraudCaseQueries{})
		w := postJSON(t, router, "/fraud-cases/"+uuid.NewString()+"/review", reviewBody())
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestStatisticsEndpoint(t *testing.T) {
	qs := &fakeFraudCaseQueries{stats: &queries.Statistics{
		TotalCases:        10,
		PendingCases:      4,
		FalsePositiveRate: 0.25,
	}}
	router := newFraudCaseRouter(&fakeFraudCaseCommands{}, qs)

	t.Run("ok", func(t *testing.T) {
		w := get(t, router, "/fraud-cases/statistics?from=2026-01-01T00:00:00Z")
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, float64(10), resp["total_cases"])
		assert.Equal(t, 0.25, resp["false_positive_rate"])
	})

	t.Run("bad period", func(t *testing.T) {
		w := get(t, router, "/fraud-cases/statistics?from=yesterday")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad provider id", func(t *testing.T) {
		w := get(t, router, "/fraud-cases/statistics?provider_id=xyz")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
