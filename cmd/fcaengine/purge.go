package main

import (
	"context"
	"fmt"

	"fcaengine/internal/assessment"
	"fcaengine/internal/db"
	"fcaengine/internal/events"
	"fcaengine/internal/store"

	"github.com/urfave/cli/v2"
)

var purgeCommand = &cli.Command{
	Name:      "purge",
	Usage:     "Delete an assessment with its ledger entries and report",
	ArgsUsage: "<assessment-id>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "yes",
			Usage: "Confirm the delete",
		},
		&cli.StringFlag{
			Name:  "actor",
			Usage: "Who is purging, recorded in the log",
			Value: "cli",
		},
	},
	Action: func(c *cli.Context) error {
		assessmentID := c.Args().First()
		if assessmentID == "" {
			return fmt.Errorf("assessment id is required")
		}
		if !c.Bool("yes") {
			return fmt.Errorf("purge is permanent, pass --yes to confirm")
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

		st := store.New(pool)
		svc := assessment.NewService(logger, st, st, events.Discard{})

		return svc.Purge(ctx, assessmentID, c.String("actor"))
	},
}
