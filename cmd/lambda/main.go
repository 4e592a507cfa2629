package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/glam-looks-api/internal/app"
	"github.com/glam-looks-api/internal/config"
	lambdatransport "github.com/glam-looks-api/internal/transport/lambda"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	a, err := app.New(context.Background(), cfg, app.Options{})
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}

	h := lambdatransport.NewS3Handler(a.Pipeline, a.Selfies, cfg.Selfies)
	lambda.Start(h.Handle)
}
