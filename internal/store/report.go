package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fcaengine/internal/utils"
	"fcaengine/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reportTableName = "reports"

var reportColumns = utils.StructTagValues(types.Report{})

type ReportRepository struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

func (r *ReportRepository) Report(ctx context.Context, assessmentID string) (*types.Report, error) {
	query, args, err := psql().
		Select(reportColumns...).
		From(reportTableName).
		Where(sq.Eq{"assessment_id": assessmentID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate report query: %w", err)
	}

	var report types.Report
	err = pgxscan.Get(ctx, r.pool, &report, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to fetch report: %w", err)
	}

	return &report, nil
}

// SaveReport stores report as the single report of its assessment. A
// regenerated report keeps the id and created_at of the row it replaces.
func (r *ReportRepository) SaveReport(ctx context.Context, report *types.Report) (*types.Report, error) {
	now := time.Now()
	if report.ID == "" {
		report.ID = utils.NanoID()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = now

	fields := utils.StructToMap(report)
	updates := withoutKeys(fields, "id", "assessment_id", "created_at")

	query, args, err := psql().
		Insert(reportTableName).
		SetMap(fields).
		Suffix("ON CONFLICT (assessment_id) DO UPDATE SET " + buildUpdateClause(updates)).
		Suffix("RETURNING " + strings.Join(reportColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate save report query: %w", err)
	}

	var saved types.Report
	err = pgxscan.Get(ctx, r.pool, &saved, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	return &saved, nil
}
