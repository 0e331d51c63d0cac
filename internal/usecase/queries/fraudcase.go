package queries

import (
	"context"
	"sort"

	"redemption-engine/internal/domain/fraud"
	"redemption-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

type FraudCaseQueries interface {
	Search(ctx context.Context, filters CaseFilters, page, limit int) (*CaseSearchResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*CaseView, error)
	Statistics(ctx context.Context, providerID *uuid.UUID, period StatisticsPeriod) (*Statistics, error)
}

type fraudCaseQueriesImpl struct {
	store CaseReadStore
}

func NewFraudCaseQueries(store CaseReadStore) FraudCaseQueries {
	return &fraudCaseQueriesImpl{store: store}
}

func (q *fraudCaseQueriesImpl) Search(ctx context.Context, filters CaseFilters, page, limit int) (*CaseSearchResult, error) {
	if page <= 0 {
		page = 1
	}
	limit = ValidateLimit(limit)

	data, total, err := q.store.Search(ctx, filters, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &CaseSearchResult{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (q *fraudCaseQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*CaseView, error) {
	view, err := q.store.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, errs.ErrFraudCaseNotFound
	}
	return view, nil
}

// Statistics assembles the statistics DTO from raw aggregates. The
// false-positive rate counts only reviewed cases in its denominator
// (APPROVED + REJECTED + FALSE_POSITIVE); pending and in-review cases
// have no verdict to be wrong about yet.
func (q *fraudCaseQueriesImpl) Statistics(ctx context.Context, providerID *uuid.UUID, period StatisticsPeriod) (*Statistics, error) {
	agg, err := q.store.Aggregates(ctx, providerID, period)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		TotalCases:       agg.TotalCases,
		PendingCases:     agg.CasesByStatus[fraud.StatusPending] + agg.CasesByStatus[fraud.StatusReviewing],
		CasesByStatus:    agg.CasesByStatus,
		AverageRiskScore: agg.AverageRiskScore,
		CasesByType:      agg.CasesByType,
		RiskScoreDistribution: RiskScoreDistribution{
			Low:    agg.RiskLowCount,
			Medium: agg.RiskMediumCount,
			High:   agg.RiskHighCount,
		},
		AverageReviewSeconds: agg.AverageReviewSeconds,
		CasesLast24h:         agg.CasesLast24h,
		CasesLast7d:          agg.CasesLast7d,
	}

	reviewed := agg.CasesByStatus[fraud.StatusApproved] +
		agg.CasesByStatus[fraud.StatusRejected] +
		agg.CasesByStatus[fraud.StatusFalsePositive]
	if reviewed > 0 {
		stats.FalsePositiveRate = float64(agg.CasesByStatus[fraud.StatusFalsePositive]) / float64(reviewed)
	}

	stats.TopFraudTypes = topFraudTypes(agg.CasesByType, agg.TotalCases, 5)
	return stats, nil
}

func topFraudTypes(byType map[fraud.FlagType]int64, total int64, n int) []FraudTypeCount {
	counts := make([]FraudTypeCount, 0, len(byType))
	for t, c := range byType {
		entry := FraudTypeCount{Type: t, Count: c}
		if total > 0 {
			entry.Percentage = float64(c) / float64(total) * 100
		}
		counts = append(counts, entry)
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Type < counts[j].Type
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
