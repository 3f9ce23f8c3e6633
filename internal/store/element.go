package store

import (
	"context"
	"fmt"

	"fcaengine/internal/utils"
	"fcaengine/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const elementTableName = "elements"

var elementColumns = utils.StructTagValues(types.Element{})

type ElementRepository struct {
	pool *pgxpool.Pool
}

func NewElementRepository(pool *pgxpool.Pool) *ElementRepository {
	return &ElementRepository{pool: pool}
}

func (r *ElementRepository) AllElements(ctx context.Context) ([]*types.Element, error) {
	return r.elements(ctx, nil)
}

func (r *ElementRepository) ElementsByMajorGroup(ctx context.Context, majorGroup string) ([]*types.Element, error) {
	return r.elements(ctx, sq.Eq{"major_group": majorGroup})
}

func (r *ElementRepository) ElementsByIDs(ctx context.Context, ids []string) ([]*types.Element, error) {
	if len(ids) == 0 {
		return []*types.Element{}, nil
	}
	return r.elements(ctx, sq.Eq{"id": ids})
}

func (r *ElementRepository) elements(ctx context.Context, where sq.Sqlizer) ([]*types.Element, error) {
	builder := psql().
		Select(elementColumns...).
		From(elementTableName).
		OrderBy("code ASC")
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate elements query: %w", err)
	}

	elements := make([]*types.Element, 0)
	err = pgxscan.Select(ctx, r.pool, &elements, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch elements: %w", err)
	}

	return elements, nil
}

func (r *ElementRepository) Element(ctx context.Context, id string) (*types.Element, error) {
	query, args, err := psql().
		Select(elementColumns...).
		From(elementTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate element query: %w", err)
	}

	var element types.Element
	err = pgxscan.Get(ctx, r.pool, &element, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrElementNotFound
		}
		return nil, fmt.Errorf("failed to fetch element: %w", err)
	}

	return &element, nil
}

func (r *ElementRepository) UpsertElement(ctx context.Context, element *types.Element) error {
	elementMap := utils.StructToMap(element)
	delete(elementMap, "created_at")

	query, args, err := psql().
		Insert(elementTableName).
		SetMap(elementMap).
		Suffix("ON CONFLICT (id) DO UPDATE SET " + buildUpdateClause(withoutKeys(elementMap, "id"))).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert element: %w", err)
	}

	return nil
}

// DeleteElement fails while entries still reference the element.
func (r *ElementRepository) DeleteElement(ctx context.Context, id string) error {
	query, args, err := psql().
		Delete(elementTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete element: %w", err)
	}

	return nil
}
