package queries

import (
	"context"
	"time"

	"redemption-engine/internal/domain/fraud"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

func ValidateLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// CaseView is the flat read model of a fraud case.
type CaseView struct {
	ID           uuid.UUID
	CaseNumber   string
	RedemptionID uuid.UUID
	CustomerID   uuid.UUID
	ProviderID   uuid.UUID
	VoucherID    uuid.UUID
	DetectedAt   time.Time
	RiskScore    int
	Flags        []fraud.Flag
	Status       fraud.Status
	IsUrgent     bool
	ReviewedAt   *time.Time
	ReviewedBy   *uuid.UUID
	ReviewNotes  *string
	ActionsTaken []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CaseFilters struct {
	Status       *fraud.Status
	ProviderID   *uuid.UUID
	CustomerID   *uuid.UUID
	VoucherID    *uuid.UUID
	MinRiskScore *int
	UrgentOnly   bool
}

type CaseSearchResult struct {
	Data  []CaseView
	Total int64
	Page  int
	Limit int
}

// StatisticsPeriod bounds the statistics window; nil ends are open.
type StatisticsPeriod struct {
	From *time.Time
	To   *time.Time
}

// CaseAggregates are the raw store-side aggregates; derived metrics
// (false-positive rate, top fraud types) are computed at presentation
// time, not stored.
type CaseAggregates struct {
	TotalCases           int64
	CasesByStatus        map[fraud.Status]int64
	AverageRiskScore     float64
	CasesByType          map[fraud.FlagType]int64
	RiskLowCount         int64 // score < 40
	RiskMediumCount      int64 // 40 <= score < 80
	RiskHighCount        int64 // score >= 80
	AverageReviewSeconds float64
	CasesLast24h         int64
	CasesLast7d          int64
}

type FraudTypeCount struct {
	Type       fraud.FlagType
	Count      int64
	Percentage float64
}

type RiskScoreDistribution struct {
	Low    int64
	Medium int64
	High   int64
}

type Statistics struct {
	TotalCases            int64
	PendingCases          int64
	CasesByStatus         map[fraud.Status]int64
	AverageRiskScore      float64
	CasesByType           map[fraud.FlagType]int64
	RiskScoreDistribution RiskScoreDistribution
	AverageReviewSeconds  float64
	CasesLast24h          int64
	CasesLast7d           int64
	FalsePositiveRate     float64
	TopFraudTypes         []FraudTypeCount
}

// CaseReadStore is the persistence port for the read side.
type CaseReadStore interface {
	Search(ctx context.Context, filters CaseFilters, offset, limit int) ([]CaseView, int64, error)
	// ByID returns nil when the case does not exist.
	ByID(ctx context.Context, id uuid.UUID) (*CaseView, error)
	Aggregates(ctx context.Context, providerID *uuid.UUID, period StatisticsPeriod) (*CaseAggregates, error)
}
