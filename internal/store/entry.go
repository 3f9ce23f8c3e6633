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

const entryTableName = "element_condition_entries"

var entryColumns = utils.StructTagValues(types.ElementConditionEntry{})

type EntryRepository struct {
	pool *pgxpool.Pool
}

func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

func (r *EntryRepository) Entries(ctx context.Context, assessmentID string) ([]*types.ElementConditionEntry, error) {
	query, args, err := psql().
		Select(entryColumns...).
		From(entryTableName).
		Where(sq.Eq{"assessment_id": assessmentID}).
		OrderBy("element_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate entries query: %w", err)
	}

	entries := make([]*types.ElementConditionEntry, 0)
	err = pgxscan.Select(ctx, r.pool, &entries, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries for assessment %s: %w", assessmentID, err)
	}

	return entries, nil
}

// UpsertEntry writes the entry for (assessment, element), replacing any
// earlier one. The assessment row is share locked for the duration so a
// concurrent completion either sees this entry or blocks it.
func (r *EntryRepository) UpsertEntry(ctx context.Context, entry *types.ElementConditionEntry) (*types.ElementConditionEntry, error) {
	var saved *types.ElementConditionEntry

	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockOpenAssessment(ctx, tx, entry.AssessmentID, "FOR SHARE"); err != nil {
			return err
		}

		now := time.Now()
		entry.ID = utils.NanoID()
		entry.CreatedAt = now
		entry.UpdatedAt = now
		if entry.PhotoRefs == nil {
			entry.PhotoRefs = []string{}
		}

		fields := utils.StructToMap(entry)
		updates := withoutKeys(fields, "id", "assessment_id", "element_id", "created_at")

		query, args, err := psql().
			Insert(entryTableName).
			SetMap(fields).
			Suffix("ON CONFLICT (assessment_id, element_id) DO UPDATE SET " + buildUpdateClause(updates)).
			Suffix("RETURNING " + strings.Join(entryColumns, ", ")).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate upsert entry query: %w", err)
		}

		var out types.ElementConditionEntry
		err = pgxscan.Get(ctx, tx, &out, query, args...)
		if err != nil {
			return fmt.Errorf("failed to upsert entry: %w", err)
		}

		saved = &out
		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

func (r *EntryRepository) DeleteEntry(ctx context.Context, assessmentID, elementID string) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockOpenAssessment(ctx, tx, assessmentID, "FOR SHARE"); err != nil {
			return err
		}

		query, args, err := psql().
			Delete(entryTableName).
			Where(sq.Eq{"assessment_id": assessmentID, "element_id": elementID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate delete entry query: %w", err)
		}

		_, err = tx.Exec(ctx, query, args...)
		return utils.ErrorWrapOrNil(err, "failed to delete entry")
	})
}

func lockOpenAssessment(ctx context.Context, tx pgx.Tx, id, lock string) error {
	query, args, err := psql().
		Select("status").
		From(assessmentTableName).
		Where(sq.Eq{"id": id}).
		Suffix(lock).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate assessment lock query: %w", err)
	}

	var status types.AssessmentStatus
	err = tx.QueryRow(ctx, query, args...).Scan(&status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return types.ErrAssessmentNotFound
		}
		return fmt.Errorf("failed to lock assessment %s: %w", id, err)
	}

	if status.Terminal() {
		return types.ErrAssessmentClosed
	}

	return nil
}
