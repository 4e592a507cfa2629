// Package app wires configuration into the application services shared by
// the HTTP API and the Lambda trigger.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/glam-looks-api/internal/application/analysis"
	"github.com/glam-looks-api/internal/application/generation"
	"github.com/glam-looks-api/internal/application/look"
	"github.com/glam-looks-api/internal/application/pipeline"
	"github.com/glam-looks-api/internal/application/upload"
	"github.com/glam-looks-api/internal/config"
	"github.com/glam-looks-api/internal/infrastructure/awscfg"
	"github.com/glam-looks-api/internal/infrastructure/dynamo"
	"github.com/glam-looks-api/internal/infrastructure/gemini"
	"github.com/glam-looks-api/internal/infrastructure/rekognition"
	s3infra "github.com/glam-looks-api/internal/infrastructure/s3"
	"github.com/glam-looks-api/internal/infrastructure/sns"
)

// App holds the wired services.
type App struct {
	Uploads  upload.Service
	Pipeline pipeline.Service
	Looks    look.Service
	Selfies  *s3infra.Store

	gemini *gemini.Client
}

// Options tune what New sets up beyond the services.
type Options struct {
	// BootstrapTables creates missing DynamoDB tables (local development).
	BootstrapTables bool
}

// New builds every adapter and service from cfg.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	awsCfg, err := awscfg.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}

	dynamoClient := dynamo.NewClient(awsCfg, cfg.AWSEndpointURL)
	if opts.BootstrapTables {
		dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)
	}
	lookRepo := dynamo.NewLookRepo(dynamoClient, cfg.DynamoTables.Looks)
	runRepo := dynamo.NewRunRepo(dynamoClient, cfg.DynamoTables.Runs)

	selfies := s3infra.NewStore(s3infra.NewClient(awsCfg, cfg.AWSEndpointURL), cfg.Selfies.Bucket)
	detector := rekognition.NewDetector(rekognition.NewClient(awsCfg, cfg.AWSEndpointURL))

	model, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, float32(cfg.GeminiTemperature))
	if err != nil {
		return nil, fmt.Errorf("look generator: %w", err)
	}

	looks := look.NewService(look.ServiceDeps{
		LookRepo:    lookRepo,
		PageSize:    cfg.LooksPageSize,
		MaxPageSize: cfg.LooksMaxPageSize,
	})

	deps := pipeline.ServiceDeps{
		Analyzer: analysis.NewService(analysis.ServiceDeps{
			Images:              selfies,
			Detector:            detector,
			ConfidenceThreshold: cfg.ConfidenceThreshold,
		}),
		Generator: generation.NewService(generation.ServiceDeps{Model: model}),
		Looks:     looks,
		Ledger:    runRepo,
		Storage:   cfg.Selfies,
		Timeouts: pipeline.Timeouts{
			Analysis:   cfg.AnalysisTimeout,
			Generation: cfg.GenerationTimeout,
			Storage:    cfg.StorageTimeout,
		},
		RunTTL: cfg.RunTTL,
	}
	if cfg.SNSTopicARN != "" {
		deps.Notifier = sns.NewPublisher(sns.NewClient(awsCfg, cfg.AWSEndpointURL), cfg.SNSTopicARN)
	} else {
		slog.Info("SNS_TOPIC_ARN not set, look.created events disabled")
	}

	return &App{
		Uploads: upload.NewService(upload.ServiceDeps{
			Presigner: selfies,
			Storage:   cfg.Selfies,
			TTL:       cfg.UploadURLTTL,
		}),
		Pipeline: pipeline.NewService(deps),
		Looks:    looks,
		Selfies:  selfies,
		gemini:   model,
	}, nil
}

// Close releases the generative model connection.
func (a *App) Close() error {
	return a.gemini.Close()
}
