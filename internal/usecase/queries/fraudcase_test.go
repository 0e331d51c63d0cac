//go:build unit

package queries_test

import (
	"context"
	"testing"

	"redemption-engine/internal/domain/fraud"
	"redemption-engine/internal/pkg/errs"
	"redemption-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaseStore struct {
	views      []queries.CaseView
	total      int64
	byID       map[uuid.UUID]*queries.CaseView
	aggregates *queries.CaseAggregates

	gotOffset int
	gotLimit  int
}

func (f *fakeCaseStore) Search(_ context.Context, _ queries.CaseFilters, offset, limit int) ([]queries.CaseView, int64, error) {
	f.gotOffset = offset
	f.gotLimit = limit
	return f.views, f.total, nil
}

func (f *fakeCaseStore) ByID(_ context.Context, id uuid.UUID) (*queries.CaseView, error) {
	return f.byID[id], nil
}

func (f *fakeCaseStore) Aggregates(_ context.Context, _ *uuid.UUID, _ queries.StatisticsPeriod) (*queries.CaseAggregates, error) {
	return f.aggregates, nil
}

func TestSearch(t *testing.T) {
	t.Run("pagination defaults", func(t *testing.T) {
		store := &fakeCaseStore{total: 42}
		q := queries.NewFraudCaseQueries(store)

		result, err := q.Search(context.Background(), queries.CaseFilters{}, 0, 0)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Page)
		assert.Equal(t, queries.DefaultLimit, result.Limit)
		assert.Equal(t, 0, store.gotOffset)
		assert.Equal(t, int64(42), result.Total)
	})

	t.Run("offset follows page", func(t *testing.T) {
		store := &fakeCaseStore{}
		q := queries.NewFraudCaseQueries(store)

		_, err := q.Search(context.Background(), queries.CaseFilters{}, 3, 10)
		require.NoError(t, err)
		assert.Equal(t, 20, store.gotOffset)
		assert.Equal(t, 10, store.gotLimit)
	})

	t.Run("limit is clamped", func(t *testing.T) {
		store := &fakeCaseStore{}
		q := queries.NewFraudCaseQueries(store)

		result, err := q.Search(context.Background(), queries.CaseFilters{}, 1, 500)
		require.NoError(t, err)
		assert.Equal(t, queries.MaxLimit, result.Limit)
	})
}

func TestGetByID(t *testing.T) {
	id := uuid.New()
	store := &fakeCaseStore{byID: map[uuid.UUID]*queries.CaseView{
		id: {ID: id, CaseNumber: "FRAUD-2026-0001"},
	}}
	q := queries.NewFraudCaseQueries(store)

	t.Run("found", func(t *testing.T) {
		view, err := q.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "FRAUD-2026-0001", view.CaseNumber)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := q.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, errs.ErrFraudCaseNotFound)
	})
}

func TestStatistics(t *testing.T) {
	store := &fakeCaseStore{aggregates: &queries.CaseAggregates{
		TotalCases: 100,
		CasesByStatus: map[fraud.Status]int64{
			fraud.StatusPending:       30,
			fraud.StatusReviewing:     10,
			fraud.StatusApproved:      25,
			fraud.StatusRejected:      25,
			fraud.StatusFalsePositive: 10,
		},
		AverageRiskScore: 55.5,
		CasesByType: map[fraud.FlagType]int64{
			fraud.FlagCustomerVelocity: 40,
			fraud.FlagOutsideGeofence:  25,
			fraud.FlagReplayAttempts:   20,
			fraud.FlagImpossibleTravel: 10,
			fraud.FlagOddHours:         4,
			fraud.FlagKnownBadActor:    1,
		},
		RiskLowCount:         20,
		RiskMediumCount:      50,
		RiskHighCount:        30,
		AverageReviewSeconds: 1800,
		CasesLast24h:         5,
		CasesLast7d:          20,
	}}
	q := queries.NewFraudCaseQueries(store)

	stats, err := q.Statistics(context.Background(), nil, queries.StatisticsPeriod{})
	require.NoError(t, err)

	assert.Equal(t, int64(100), stats.TotalCases)
	assert.Equal(t, int64(40), stats.PendingCases, "pending includes REVIEWING")

	// 10 false positives out of 60 reviewed cases
	assert.InDelta(t, 10.0/60.0, stats.FalsePositiveRate, 1e-9)

	assert.Equal(t, queries.RiskScoreDistribution{Low: 20, Medium: 50, High: 30}, stats.RiskScoreDistribution)

	require.Len(t, stats.TopFraudTypes, 5, "top types are capped at five")
	assert.Equal(t, fraud.FlagCustomerVelocity, stats.TopFraudTypes[0].Type)
	assert.InDelta(t, 40.0, stats.TopFraudTypes[0].Percentage, 1e-9)
	assert.Equal(t, fraud.FlagOddHours, stats.TopFraudTypes[4].Type)
}

func TestStatistics_NoReviewedCases(t *testing.T) {
	store := &fakeCaseStore{aggregates: &queries.CaseAggregates{
		TotalCases: 3,
		CasesByStatus: map[fraud.Status]int64{
			fraud.StatusPending: 3,
		},
	}}
	q := queries.NewFraudCaseQueries(store)

	stats, err := q.Statistics(context.Background(), nil, queries.StatisticsPeriod{})
	require.NoError(t, err)
	assert.Zero(t, stats.FalsePositiveRate, "no verdicts means no false-positive rate")
}
