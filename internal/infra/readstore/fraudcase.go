package readstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"redemption-engine/internal/domain/fraud"
	"redemption-engine/internal/infra"
	"redemption-engine/internal/infra/db"
	"redemption-engine/internal/pkg/pgconv"
	"redemption-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type FraudCaseReadStore struct {
	db db.DBTX
}

func NewFraudCaseReadStore(db db.DBTX) *FraudCaseReadStore {
	return &FraudCaseReadStore{db: db}
}

const caseViewColumns = `
id, case_number, redemption_id, customer_id, provider_id, voucher_id,
detected_at, risk_score, flags, status, reviewed_at, reviewed_by,
review_notes, actions_taken, created_at, updated_at`

func (r *FraudCaseReadStore) Search(ctx context.Context, filters queries.CaseFilters, offset, limit int) ([]queries.CaseView, int64, error) {
	where, args := buildCaseFilter(filters)

	var total int64
	countQuery := `SELECT count(*) FROM fraud_cases` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, infra.WrapRepoErr("failed to count fraud cases", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM fraud_cases%s ORDER BY detected_at DESC LIMIT $%d OFFSET $%d`,
		caseViewColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, infra.WrapRepoErr("failed to search fraud cases", err)
	}
	defer rows.Close()

	var views []queries.CaseView
	for rows.Next() {
		view, err := scanCaseView(rows)
		if err != nil {
			return nil, 0, infra.WrapRepoErr("failed to scan fraud case row", err)
		}
		views = append(views, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, infra.WrapRepoErr("failed to iterate fraud case rows", err)
	}
	return views, total, nil
}

func (r *FraudCaseReadStore) ByID(ctx context.Context, id uuid.UUID) (*queries.CaseView, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+caseViewColumns+` FROM fraud_cases WHERE id = $1`, id)
	view, err := scanCaseView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to get fraud case", err)
	}
	return view, nil
}

func (r *FraudCaseReadStore) Aggregates(ctx context.Context, providerID *uuid.UUID, period queries.StatisticsPeriod) (*queries.CaseAggregates, error) {
	where, args := buildAggregateFilter(providerID, period)
	agg := &queries.CaseAggregates{
		CasesByStatus: make(map[fraud.Status]int64),
		CasesByType:   make(map[fraud.FlagType]int64),
	}

	err := r.db.QueryRow(ctx, `
SELECT count(*),
       COALESCE(avg(risk_score), 0)::float8,
       count(*) FILTER (WHERE risk_score < 40),
       count(*) FILTER (WHERE risk_score >= 40 AND risk_score < 80),
       count(*) FILTER (WHERE risk_score >= 80),
       COALESCE(avg(EXTRACT(EPOCH FROM (reviewed_at - created_at))) FILTER (WHERE reviewed_at IS NOT NULL), 0)::float8,
       count(*) FILTER (WHERE created_at >= now() - interval '24 hours'),
       count(*) FILTER (WHERE created_at >= now() - interval '7 days')
FROM fraud_cases`+where, args...).Scan(
		&agg.TotalCases, &agg.AverageRiskScore,
		&agg.RiskLowCount, &agg.RiskMediumCount, &agg.RiskHighCount,
		&agg.AverageReviewSeconds, &agg.CasesLast24h, &agg.CasesLast7d,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to aggregate fraud cases", err)
	}

	statusRows, err := r.db.Query(ctx,
		`SELECT status, count(*) FROM fraud_cases`+where+` GROUP BY status`, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to aggregate cases by status", err)
	}
	defer statusRows.Close()
	for statusRows.Next() {
		var status string
		var n int64
		if err := statusRows.Scan(&status, &n); err != nil {
			return nil, infra.WrapRepoErr("failed to scan status aggregate", err)
		}
		agg.CasesByStatus[fraud.Status(status)] = n
	}
	if err := statusRows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate status aggregates", err)
	}

	// Flag-type histogram: one count per flag occurrence across cases.
	typeRows, err := r.db.Query(ctx, `
SELECT f->>'type', count(*)
FROM fraud_cases, jsonb_array_elements(flags) AS f`+where+`
GROUP BY 1`, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to aggregate cases by flag type", err)
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var flagType string
		var n int64
		if err := typeRows.Scan(&flagType, &n); err != nil {
			return nil, infra.WrapRepoErr("failed to scan flag type aggregate", err)
		}
		agg.CasesByType[fraud.FlagType(flagType)] = n
	}
	if err := typeRows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate flag type aggregates", err)
	}

	return agg, nil
}

func buildCaseFilter(filters queries.CaseFilters) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filters.Status != nil {
		add("status = $%d", string(*filters.Status))
	}
	if filters.ProviderID != nil {
		add("provider_id = $%d", *filters.ProviderID)
	}
	if filters.CustomerID != nil {
		add("customer_id = $%d", *filters.CustomerID)
	}
	if filters.VoucherID != nil {
		add("voucher_id = $%d", *filters.VoucherID)
	}
	if filters.MinRiskScore != nil {
		add("risk_score >= $%d", *filters.MinRiskScore)
	}
	if filters.UrgentOnly {
		conds = append(conds, `(risk_score > 80 OR flags @> '[{"severity":"HIGH"}]')`)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func buildAggregateFilter(providerID *uuid.UUID, period queries.StatisticsPeriod) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if providerID != nil {
		add("provider_id = $%d", *providerID)
	}
	if period.From != nil {
		add("detected_at >= $%d", *period.From)
	}
	if period.To != nil {
		add("detected_at < $%d", *period.To)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanCaseView(row rowScanner) (*queries.CaseView, error) {
	var (
		view       queries.CaseView
		flagsRaw   []byte
		status     string
		reviewedAt pgtype.Timestamptz
		reviewedBy pgtype.UUID
		notes      pgtype.Text
	)
	err := row.Scan(
		&view.ID, &view.CaseNumber, &view.RedemptionID, &view.CustomerID,
		&view.ProviderID, &view.VoucherID, &view.DetectedAt, &view.RiskScore,
		&flagsRaw, &status, &reviewedAt, &reviewedBy, &notes,
		&view.ActionsTaken, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(flagsRaw) > 0 {
		if err := json.Unmarshal(flagsRaw, &view.Flags); err != nil {
			return nil, err
		}
	}
	view.Status = fraud.Status(status)
	view.ReviewedAt = pgconv.TimePtrFromPgtype(reviewedAt)
	view.ReviewedBy = pgconv.UUIDPtrFromPgtype(reviewedBy)
	view.ReviewNotes = pgconv.StringPtrFromPgtype(notes)
	view.IsUrgent = view.RiskScore > 80 || hasHighFlag(view.Flags)
	return &view, nil
}

func hasHighFlag(flags []fraud.Flag) bool {
	for _, f := range flags {
		if f.Severity == fraud.SeverityHigh {
			return true
		}
	}
	return false
}
