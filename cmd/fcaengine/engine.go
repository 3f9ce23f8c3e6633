package main

import (
	"context"
	"fmt"
	"time"

	"fcaengine/internal/assessment"
	"fcaengine/internal/events"
	"fcaengine/internal/ledger"
	"fcaengine/internal/render"
	"fcaengine/internal/report"
	"fcaengine/internal/seed"
	"fcaengine/internal/server"
	"fcaengine/internal/storage"
	"fcaengine/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// engineStore is satisfied by both *store.Store and *memstore.Store.
type engineStore interface {
	assessment.Store
	assessment.BuildingLookup
	ledger.Store
	report.Store
	server.ElementCatalog
	seed.ElementStore
	seed.BuildingStore
}

type engine struct {
	assessments *assessment.Service
	ledger      *ledger.Service
	reports     *report.Compiler
}

func newEngine(logger logrus.FieldLogger, config *types.Config, st engineStore, artifacts storage.ArtifactStore, publisher events.Publisher) *engine {
	compiler := report.NewCompiler(
		logger.WithField("component", "report"),
		st,
		render.NewPDFRenderer(artifacts),
		artifacts,
		report.WithRenderTimeout(time.Duration(config.RenderTimeoutSec)*time.Second),
	)

	return &engine{
		assessments: assessment.NewService(logger.WithField("component", "assessment"), st, st, publisher),
		ledger:      ledger.NewService(logger.WithField("component", "ledger"), st),
		reports:     compiler,
	}
}

func newArtifactStore(ctx context.Context, config *types.Config) (storage.ArtifactStore, error) {
	switch config.ArtifactBackend {
	case "s3":
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Store(s3.NewFromConfig(awsConfig), config.S3Bucket), nil
	case "supabase":
		return storage.NewSupabaseStore(config.SupabaseProject, config.SupabaseAPIKey, config.SupabaseBucket), nil
	case "memory":
		return storage.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown artifact backend %q", config.ArtifactBackend)
}

// newPublisher always logs events and also sends them to Kafka when brokers
// are configured. The returned func closes the Kafka writer.
func newPublisher(logger logrus.FieldLogger, config *types.Config) (events.Publisher, func() error) {
	logPublisher := events.NewLogPublisher(logger.WithField("component", "events"))
	if len(config.KafkaBrokers) == 0 {
		return logPublisher, func() error { return nil }
	}

	kafkaPublisher := events.NewKafkaPublisher(config.KafkaBrokers, config.KafkaTopic)
	return events.Multi{logPublisher, kafkaPublisher}, kafkaPublisher.Close
}
