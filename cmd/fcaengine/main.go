package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "fcaengine",
		Usage: "Facility condition assessment engine",
		Commands: []*cli.Command{
			serveCommand,
			migrateCommand,
			seedCommand,
			calcCommand,
			purgeCommand,
			nanoidCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
