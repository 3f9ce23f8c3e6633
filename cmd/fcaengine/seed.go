package main

import (
	"context"
	"fmt"

	"fcaengine/internal/db"
	"fcaengine/internal/seed"
	"fcaengine/internal/store"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Sync the element catalog (and optionally sample buildings) into the database",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "sample-buildings",
			Usage: "Also upsert sample buildings for local development",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger := newLogger(cfg)
		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logger.Info("connected to database")

		if err := db.Migrate(ctx, pool, cfg.DatabaseSchema, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		st := store.New(pool)

		if err := seed.SyncElements(ctx, logger, st); err != nil {
			return fmt.Errorf("failed to seed elements: %w", err)
		}

		if c.Bool("sample-buildings") {
			if err := seed.SyncSampleBuildings(ctx, logger, st); err != nil {
				return fmt.Errorf("failed to seed buildings: %w", err)
			}
		}

		return nil
	},
}
