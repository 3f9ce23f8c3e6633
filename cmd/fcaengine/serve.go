package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fcaengine/internal/db"
	"fcaengine/internal/memstore"
	"fcaengine/internal/seed"
	"fcaengine/internal/server"
	"fcaengine/internal/store"
	"fcaengine/pkg/types"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP server",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "ephemeral",
			Usage: "Keep all state in memory and seed the element catalog on start",
		},
	},
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ephemeral := cCtx.Bool("ephemeral")
	if ephemeral {
		os.Setenv("ARTIFACT_BACKEND", "memory")
	}

	config, err := loadConfig(!ephemeral)
	if err != nil {
		return err
	}

	logger := newLogger(config)

	var st engineStore
	if ephemeral {
		mem := memstore.New()
		if err := seed.SyncElements(ctx, logger, mem); err != nil {
			return err
		}
		if err := seed.SyncSampleBuildings(ctx, logger, mem); err != nil {
			return err
		}
		st = mem
		logger.Warn("running with in-memory state, nothing will persist")
	} else {
		pool, err := db.Connect(ctx, config)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool, config.DatabaseSchema, logger); err != nil {
			return err
		}
		st = store.New(pool)
	}

	artifacts, err := newArtifactStore(ctx, config)
	if err != nil {
		return err
	}

	publisher, closePublisher := newPublisher(logger, config)
	defer func() {
		if err := closePublisher(); err != nil {
			logger.WithError(err).Warn("failed to close event publisher")
		}
	}()

	fca := newEngine(logger, config, st, artifacts, publisher)

	if config.AutoGenerateReport {
		fca.assessments.SetCompletionHook(func(ctx context.Context, a *types.Assessment) {
			go func() {
				// The request that completed the assessment may be gone by now.
				ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Minute)
				defer cancel()

				report, err := fca.reports.Generate(ctx, a.ID)
				entry := logger.WithField("assessment_id", a.ID)
				if err != nil {
					entry.WithError(err).Error("automatic report generation failed")
					return
				}
				entry.WithField("render_status", report.RenderStatus).Info("report generated on completion")
			}()
		})
	}

	keys, err := newKeySource(ctx, config)
	if err != nil {
		return err
	}

	auth, err := server.NewAuthenticator(config, keys)
	if err != nil {
		return err
	}

	srv := server.New(
		config,
		logger,
		auth,
		fca.assessments,
		fca.ledger,
		fca.reports,
		st,
	)

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

func newKeySource(ctx context.Context, config *types.Config) (server.KeySetSource, error) {
	if config.AuthDisabled {
		logrus.Warn("authentication disabled, trusting the X-Actor-ID header")
		return nil, nil
	}

	jwkCache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	if err := jwkCache.Register(ctx, config.JWKSURL); err != nil {
		return nil, fmt.Errorf("failed to register jwks url with cache: %w", err)
	}

	return jwkCache, nil
}
