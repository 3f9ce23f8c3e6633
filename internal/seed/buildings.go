package seed

import (
	"context"
	"fmt"

	"fcaengine/internal/utils"
	"fcaengine/pkg/types"

	"github.com/sirupsen/logrus"
)

type BuildingStore interface {
	UpsertBuilding(ctx context.Context, building *types.Building) error
}

// sampleBuildings exist so a fresh environment has something to assess.
// Real buildings come from the buildings service.
var sampleBuildings = []types.Building{
	{
		ID:               "QxD4m1Yk7TzP0bWfR8sLhN2vGc5JaE9u",
		Name:             "Riverside Elementary School",
		BuildingType:     utils.StringPtr("education"),
		Address:          utils.StringPtr("1200 River Rd"),
		YearBuilt:        utils.IntPtr(1978),
		Area:             48000,
		ReplacementValue: utils.Float64Ptr(14_400_000),
	},
	{
		ID:           "k3Vn8HqZ2cLw6RtY0pXbM9sJfA4gUe7D",
		Name:         "Civic Center Annex",
		BuildingType: utils.StringPtr("office"),
		Address:      utils.StringPtr("45 Market St"),
		YearBuilt:    utils.IntPtr(1995),
		Area:         22000,
		CostPerArea:  utils.Float64Ptr(310),
	},
}

func SyncSampleBuildings(ctx context.Context, logger logrus.FieldLogger, repo BuildingStore) error {
	for i := range sampleBuildings {
		b := sampleBuildings[i]
		if err := repo.UpsertBuilding(ctx, &b); err != nil {
			return fmt.Errorf("failed to upsert building %s: %w", b.Name, err)
		}
		logger.WithFields(logrus.Fields{"id": b.ID, "name": b.Name}).Info("upserted sample building")
	}
	return nil
}
