package response

import (
	"time"

	"redemption-engine/internal/domain/fraud"
	"redemption-engine/internal/usecase/queries"

	"github.com/google/uuid"
)

type FraudCaseResponse struct {
	ID           uuid.UUID    `json:"id"`
	CaseNumber   string       `json:"case_number"`
	RedemptionID uuid.UUID    `json:"redemption_id"`
	CustomerID   uuid.UUID    `json:"customer_id"`
	ProviderID   uuid.UUID    `json:"provider_id"`
	VoucherID    uuid.UUID    `json:"voucher_id"`
	DetectedAt   time.Time    `json:"detected_at"`
	RiskScore    int          `json:"risk_score"`
	Flags        []fraud.Flag `json:"flags"`
	Status       fraud.Status `json:"status"`
	IsUrgent     bool         `json:"is_urgent"`
	ReviewedAt   *time.Time   `json:"reviewed_at,omitempty"`
	ReviewedBy   *uuid.UUID   `json:"reviewed_by,omitempty"`
	ReviewNotes  *string      `json:"review_notes,omitempty"`
	ActionsTaken []string     `json:"actions_taken,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func FromCaseView(v *queries.CaseView) FraudCaseResponse {
	return FraudCaseResponse{
		ID:           v.ID,
		CaseNumber:   v.CaseNumber,
		RedemptionID: v.RedemptionID,
		CustomerID:   v.CustomerID,
		ProviderID:   v.ProviderID,
		VoucherID:    v.VoucherID,
		DetectedAt:   v.DetectedAt,
		RiskScore:    v.RiskScore,
		Flags:        v.Flags,
		Status:       v.Status,
		IsUrgent:     v.IsUrgent,
		ReviewedAt:   v.ReviewedAt,
		ReviewedBy:   v.ReviewedBy,
		ReviewNotes:  v.ReviewNotes,
		ActionsTaken: v.ActionsTaken,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

func FromCase(c *fraud.Case) FraudCaseResponse {
	resp := FraudCaseResponse{
		ID:           c.ID(),
		CaseNumber:   c.CaseNumber(),
		RedemptionID: c.RedemptionID(),
		CustomerID:   c.CustomerID(),
		ProviderID:   c.ProviderID(),
		VoucherID:    c.VoucherID(),
		DetectedAt:   c.DetectedAt(),
		RiskScore:    c.RiskScore(),
		Flags:        c.Flags(),
		Status:       c.Status(),
		IsUrgent:     c.IsUrgent(),
		ReviewedAt:   c.ReviewedAt(),
		ReviewedBy:   c.ReviewedBy(),
		ActionsTaken: c.ActionsTaken(),
		CreatedAt:    c.CreatedAt(),
		UpdatedAt:    c.UpdatedAt(),
	}
	if notes := c.ReviewNotes(); notes != "" {
		resp.ReviewNotes = &notes
	}
	return resp
}

type CaseSearchResponse struct {
	Data  []FraudCaseResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

func FromCaseSearchResult(result *queries.CaseSearchResult) CaseSearchResponse {
	data := make([]FraudCaseResponse, len(result.Data))
	for i := range result.Data {
		data[i] = FromCaseView(&result.Data[i])
	}
	return CaseSearchResponse{Data: data, Total: result.Total, Page: result.Page, Limit: result.Limit}
}

type FraudTypeCountResponse struct {
	Type       fraud.FlagType `json:"type"`
	Count      int64          `json:"count"`
	Percentage float64        `json:"percentage"`
}

type RiskDistributionResponse struct {
	Low    int64 `json:"low"`
	Medium int64 `json:"medium"`
	High   int64 `json:"high"`
}

type StatisticsResponse struct {
	TotalCases            int64                    `json:"total_cases"`
	PendingCases          int64                    `json:"pending_cases"`
	CasesByStatus         map[fraud.Status]int64   `json:"cases_by_status"`
	AverageRiskScore      float64                  `json:"average_risk_score"`
	CasesByType           map[fraud.FlagType]int64 `json:"cases_by_type"`
	RiskScoreDistribution RiskDistributionResponse `json:"risk_score_distribution"`
	AverageReviewSeconds  float64                  `json:"average_review_seconds"`
	CasesLast24h          int64                    `json:"cases_last_24h"`
	CasesLast7d           int64                    `json:"cases_last_7d"`
	FalsePositiveRate     float64                  `json:"false_positive_rate"`
	TopFraudTypes         []FraudTypeCountResponse `json:"top_fraud_types"`
}

func FromStatistics(s *queries.Statistics) StatisticsResponse {
	top := make([]FraudTypeCountResponse, len(s.TopFraudTypes))
	for i, t := range s.TopFraudTypes {
		top[i] = FraudTypeCountResponse{Type: t.Type, Count: t.Count, Percentage: t.Percentage}
	}
	return StatisticsResponse{
		TotalCases:       s.TotalCases,
		PendingCases:     s.PendingCases,
		CasesByStatus:    s.CasesByStatus,
		AverageRiskScore: s.AverageRiskScore,
		CasesByType:      s.CasesByType,
		RiskScoreDistribution: RiskDistributionResponse{
			Low:    s.RiskScoreDistribution.Low,
			Medium: s.RiskScoreDistribution.Medium,
			High:   s.RiskScoreDistribution.High,
		},
		AverageReviewSeconds: s.AverageReviewSeconds,
		CasesLast24h:         s.CasesLast24h,
		CasesLast7d:          s.CasesLast7d,
		FalsePositiveRate:    s.FalsePositiveRate,
		TopFraudTypes:        top,
	}
}
