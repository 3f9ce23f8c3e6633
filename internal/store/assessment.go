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
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const assessmentTableName = "assessments"

var assessmentColumns = utils.StructTagValues(types.Assessment{})

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type AssessmentRepository struct {
	pool *pgxpool.Pool
}

func NewAssessmentRepository(pool *pgxpool.Pool) *AssessmentRepository {
	return &AssessmentRepository{pool: pool}
}

func (r *AssessmentRepository) Assessment(ctx context.Context, id string) (*types.Assessment, error) {
	return r.assessment(ctx, r.pool, id, "")
}

func (r *AssessmentRepository) assessment(ctx context.Context, q pgxscan.Querier, id, lock string) (*types.Assessment, error) {
	builder := psql().
		Select(assessmentColumns...).
		From(assessmentTableName).
		Where(sq.Eq{"id": id}).
		Limit(1)
	if lock != "" {
		builder = builder.Suffix(lock)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate assessment query: %w", err)
	}

	var assessment types.Assessment
	err = pgxscan.Get(ctx, q, &assessment, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to fetch assessment: %w", err)
	}

	return &assessment, nil
}

func (r *AssessmentRepository) Assessments(ctx context.Context, filter types.AssessmentFilter) ([]*types.Assessment, error) {
	where := sq.Eq{}
	if filter.BuildingID != "" {
		where["building_id"] = filter.BuildingID
	}
	if filter.Status != "" {
		where["status"] = string(filter.Status)
	}
	if filter.Kind != "" {
		where["kind"] = string(filter.Kind)
	}
	if filter.AssignedTo != "" {
		where["assigned_to"] = filter.AssignedTo
	}

	limit := filter.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query, args, err := psql().
		Select(assessmentColumns...).
		From(assessmentTableName).
		Where(where).
		OrderBy("created_at DESC", "id ASC").
		Limit(limit).
		Offset(filter.Offset).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate assessments query: %w", err)
	}

	assessments := make([]*types.Assessment, 0)
	err = pgxscan.Select(ctx, r.pool, &assessments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assessments: %w", err)
	}

	return assessments, nil
}

func (r *AssessmentRepository) CreateAssessment(ctx context.Context, assessment *types.Assessment) error {

	now := time.Now()
	assessment.ID = utils.NanoID()
	assessment.CreatedAt = now
	assessment.UpdatedAt = now

	query, args, err := psql().
		Insert(assessmentTableName).
		SetMap(utils.StructToMap(assessment)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert assessment query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create assessment")
}

// TransitionAssessment writes change while holding the row lock. The write
// only happens if the row still has change.From, so of two racing callers
// exactly one wins and the other gets ErrStatusConflict.
func (r *AssessmentRepository) TransitionAssessment(ctx context.Context, id string, change types.StatusChange) (*types.Assessment, error) {
	var updated *types.Assessment

	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := r.assessment(ctx, tx, id, "FOR UPDATE")
		if err != nil {
			return err
		}

		if current.Status != change.From {
			return types.ErrStatusConflict
		}

		if change.RequireEntries {
			var hasEntries bool
			err = tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM element_condition_entries WHERE assessment_id = $1)`,
				id,
			).Scan(&hasEntries)
			if err != nil {
				return fmt.Errorf("failed to count element condition entries: %w", err)
			}
			if !hasEntries {
				return types.ErrNoEntries
			}
		}

		set := map[string]any{
			"status":     string(change.To),
			"updated_at": change.At,
		}
		if change.StartedAt != nil {
			set["started_at"] = *change.StartedAt
		}
		if change.CompletedAt != nil {
			set["completed_at"] = *change.CompletedAt
		}
		if change.CancelledAt != nil {
			set["cancelled_at"] = *change.CancelledAt
		}
		if change.CancelReason != nil {
			set["cancel_reason"] = *change.CancelReason
		}

		query, args, err := psql().
			Update(assessmentTableName).
			SetMap(set).
			Where(sq.Eq{"id": id, "status": string(change.From)}).
			Suffix("RETURNING " + strings.Join(assessmentColumns, ", ")).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate transition query: %w", err)
		}

		var assessment types.Assessment
		err = pgxscan.Get(ctx, tx, &assessment, query, args...)
		if err != nil {
			if pgxscan.NotFound(err) {
				return types.ErrStatusConflict
			}
			return fmt.Errorf("failed to transition assessment %s: %w", id, err)
		}

		updated = &assessment
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// ReassignAssessment changes the assessor while the assessment is still open.
func (r *AssessmentRepository) ReassignAssessment(ctx context.Context, id, assessorID string, at time.Time) (*types.Assessment, error) {
	query, args, err := psql().
		Update(assessmentTableName).
		Set("assigned_to", assessorID).
		Set("updated_at", at).
		Where(sq.Eq{"id": id, "status": openStatuses}).
		Suffix("RETURNING " + strings.Join(assessmentColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reassign query: %w", err)
	}

	var assessment types.Assessment
	err = pgxscan.Get(ctx, r.pool, &assessment, query, args...)
	if err == nil {
		return &assessment, nil
	}
	if !pgxscan.NotFound(err) {
		return nil, fmt.Errorf("failed to reassign assessment %s: %w", id, err)
	}

	if _, err := r.Assessment(ctx, id); err != nil {
		return nil, err
	}

	return nil, types.ErrStatusConflict
}

// PurgeAssessment deletes an assessment along with its entries and report.
func (r *AssessmentRepository) PurgeAssessment(ctx context.Context, id string) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := r.assessment(ctx, tx, id, "FOR UPDATE"); err != nil {
			return err
		}

		for _, table := range []string{reportTableName, entryTableName} {
			query, args, err := psql().Delete(table).Where(sq.Eq{"assessment_id": id}).ToSql()
			if err != nil {
				return fmt.Errorf("failed to generate delete query for %s: %w", table, err)
			}
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return fmt.Errorf("failed to delete from %s: %w", table, err)
			}
		}

		query, args, err := psql().Delete(assessmentTableName).Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate delete assessment query: %w", err)
		}

		_, err = tx.Exec(ctx, query, args...)
		return utils.ErrorWrapOrNil(err, "failed to delete assessment")
	})
}

var openStatuses = []string{
	string(types.AssessmentStatusPending),
	string(types.AssessmentStatusInProgress),
}
