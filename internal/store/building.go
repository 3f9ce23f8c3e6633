package store

import (
	"context"
	"fmt"
	"time"

	"fcaengine/internal/utils"
	"fcaengine/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const buildingTableName = "buildings"

var buildingColumns = utils.StructTagValues(types.Building{})

type BuildingRepository struct {
	pool *pgxpool.Pool
}

func NewBuildingRepository(pool *pgxpool.Pool) *BuildingRepository {
	return &BuildingRepository{pool: pool}
}

func (r *BuildingRepository) Building(ctx context.Context, id string) (*types.Building, error) {
	query, args, err := psql().
		Select(buildingColumns...).
		From(buildingTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate building query: %w", err)
	}

	var building types.Building
	err = pgxscan.Get(ctx, r.pool, &building, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrBuildingNotFound
		}
		return nil, fmt.Errorf("failed to fetch building: %w", err)
	}

	return &building, nil
}

// UpsertBuilding is only used by the seed command; buildings are owned by
// the buildings service.
func (r *BuildingRepository) UpsertBuilding(ctx context.Context, building *types.Building) error {
	now := time.Now()
	if building.CreatedAt.IsZero() {
		building.CreatedAt = now
	}
	building.UpdatedAt = now

	buildingMap := utils.StructToMap(building)

	query, args, err := psql().
		Insert(buildingTableName).
		SetMap(buildingMap).
		Suffix("ON CONFLICT (id) DO UPDATE SET " + buildUpdateClause(withoutKeys(buildingMap, "id", "created_at"))).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert building query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert building")
}
