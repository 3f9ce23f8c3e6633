package main

import (
	"context"
	"fmt"

	"fcaengine/internal/db"
	"fcaengine/internal/report"
	"fcaengine/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var calcCommand = &cli.Command{
	Name:      "calc",
	Usage:     "Print the FCI calculation for an assessment's current ledger",
	ArgsUsage: "<assessment-id>",
	Action: func(c *cli.Context) error {
		assessmentID := c.Args().First()
		if assessmentID == "" {
			return fmt.Errorf("assessment id is required")
		}

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

		// Preview never renders, so no renderer or artifact store is needed.
		compiler := report.NewCompiler(logger, store.New(pool), nil, nil)

		result, err := compiler.Preview(ctx, assessmentID)
		if err != nil {
			return err
		}

		pp.Println(result)
		return nil
	},
}
