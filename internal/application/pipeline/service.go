package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/glam-looks-api/internal/application/upload"
	"github.com/glam-looks-api/internal/config"
	"github.com/glam-looks-api/internal/domain"
	"github.com/glam-looks-api/internal/metrics"
	"github.com/glam-looks-api/internal/pkg/validate"
)

type Service interface {
	Run(ctx context.Context, req domain.RunRequest) (*domain.LookRecommendation, error)
	RunStatus(ctx context.Context, userID, uploadID string) (*domain.Run, error)
}

type analyzer interface {
	Analyze(ctx context.Context, storageKey string) (*domain.FaceProfile, error)
}

type generator interface {
	Generate(ctx context.Context, profile domain.FaceProfile) (*domain.Look, error)
}

type lookWriter interface {
	Save(ctx context.Context, l *domain.LookRecommendation) error
	NextCreatedAt(ctx context.Context, userID string) (string, error)
}

type runLedger interface {
	Begin(ctx context.Context, run *domain.Run) error
	Get(ctx context.Context, uploadID string) (*domain.Run, error)
	Complete(ctx context.Context, uploadID string) error
	Fail(ctx context.Context, uploadID string, stage domain.Stage, reason string) error
}

type notifier interface {
	LookCreated(ctx context.Context, l *domain.LookRecommendation) error
}

type service struct {
	analyzer  analyzer
	generator generator
	looks     lookWriter
	ledger    runLedger
	notifier  notifier
	storage   config.SelfieStorage
	timeouts  Timeouts
	runTTL    time.Duration
	now       func() time.Time
}

// Timeouts bound each blocking stage of a run.
type Timeouts struct {
	Analysis   time.Duration
	Generation time.Duration
	Storage    time.Duration
}

type ServiceDeps struct {
	Analyzer  analyzer
	Generator generator
	Looks     lookWriter
	Ledger    runLedger
	Notifier  notifier // optional
	Storage   config.SelfieStorage
	Timeouts  Timeouts
	RunTTL    time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		analyzer:  deps.Analyzer,
		generator: deps.Generator,
		looks:     deps.Looks,
		ledger:    deps.Ledger,
		notifier:  deps.Notifier,
		storage:   deps.Storage,
		timeouts:  deps.Timeouts,
		runTTL:    deps.RunTTL,
		now:       time.Now,
	}
}

// Run drives one upload through Analyzing, Generating and Saving. Stages run
// strictly in order and are never retried; the first failure ends the run
// with a *domain.PipelineError naming the stage. A second run for an upload
// that already has one is rejected with domain.ErrConflict before any
// remote call is made.
func (s *service) Run(ctx context.Context, req domain.RunRequest) (*domain.LookRecommendation, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	log := slog.With("user_id", req.UserID, "upload_id", req.UploadID)

	now := s.now().UTC()
	err := s.ledger.Begin(ctx, &domain.Run{
		UploadID:  req.UploadID,
		UserID:    req.UserID,
		Status:    domain.RunStatusPending,
		Stage:     domain.StageUploaded,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.runTTL).Unix(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			metrics.PipelineRuns.WithLabelValues(metrics.OutcomeDuplicate, string(domain.StageUploaded)).Inc()
			log.Warn("duplicate run rejected")
		}
		return nil, err
	}

	// Stage: Analyzing
	var profile *domain.FaceProfile
	err = s.stage(ctx, log, domain.StageAnalyzing, s.timeouts.Analysis, func(ctx context.Context) error {
		var err error
		profile, err = s.analyzer.Analyze(ctx, upload.StorageKey(s.storage, req.UploadID))
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, log, req.UploadID, domain.StageAnalyzing, err)
	}
	if profile.Ambiguous() {
		log.Info("continuing with ambiguous face profile", "face_shape", profile.FaceShape)
	}

	// Stage: Generating
	var look *domain.Look
	err = s.stage(ctx, log, domain.StageGenerating, s.timeouts.Generation, func(ctx context.Context) error {
		var err error
		look, err = s.generator.Generate(ctx, *profile)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, log, req.UploadID, domain.StageGenerating, err)
	}

	// Stage: Saving
	rec := &domain.LookRecommendation{
		UserID:      req.UserID,
		UploadID:    req.UploadID,
		FaceProfile: *profile,
		Look:        *look,
	}
	err = s.stage(ctx, log, domain.StageSaving, s.timeouts.Storage, func(ctx context.Context) error {
		createdAt, err := s.looks.NextCreatedAt(ctx, req.UserID)
		if err != nil {
			return err
		}
		rec.CreatedAt = createdAt
		return s.looks.Save(ctx, rec)
	})
	if err != nil {
		return nil, s.fail(ctx, log, req.UploadID, domain.StageSaving, err)
	}

	// The look is durable from here on; bookkeeping failures are logged only.
	bg, cancel := s.bookkeeping(ctx)
	defer cancel()
	if err := s.ledger.Complete(bg, req.UploadID); err != nil {
		log.Error("failed to complete run", "error", err)
	}
	metrics.PipelineRuns.WithLabelValues(metrics.OutcomeSaved, string(domain.StageSaved)).Inc()
	log.Info("run saved", "stage", domain.StageSaved, "look_name", rec.LookName)

	if s.notifier != nil {
		if err := s.notifier.LookCreated(bg, rec); err != nil {
			log.Warn("look.created notification failed", "error", err)
		}
	}
	return rec, nil
}

// RunStatus returns the ledger entry of uploadID if it belongs to userID.
// Runs of other users are reported as not found.
func (s *service) RunStatus(ctx context.Context, userID, uploadID string) (*domain.Run, error) {
	if userID == "" || uploadID == "" {
		return nil, fmt.Errorf("user_id and upload_id are required: %w", domain.ErrBadRequest)
	}
	run, err := s.ledger.Get(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	if run.UserID != userID {
		return nil, fmt.Errorf("run not found: %w", domain.ErrNotFound)
	}
	return run, nil
}

// stage runs fn under its own timeout and records its duration.
func (s *service) stage(ctx context.Context, log *slog.Logger, stage domain.Stage, timeout time.Duration, fn func(context.Context) error) error {
	stageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.Info("stage started", "stage", stage)
	start := time.Now()
	err := fn(stageCtx)
	elapsed := time.Since(start)
	metrics.StageDuration.WithLabelValues(string(stage)).Observe(elapsed.Seconds())

	if err != nil && errors.Is(stageCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}
	if err == nil {
		log.Info("stage finished", "stage", stage, "duration", elapsed)
	}
	return err
}

// fail records the failure in the ledger and wraps err with its stage.
func (s *service) fail(ctx context.Context, log *slog.Logger, uploadID string, stage domain.Stage, err error) error {
	log.Error("run failed", "stage", stage, "error", err)
	metrics.PipelineRuns.WithLabelValues(metrics.OutcomeFailed, string(stage)).Inc()

	bg, cancel := s.bookkeeping(ctx)
	defer cancel()
	if ferr := s.ledger.Fail(bg, uploadID, stage, err.Error()); ferr != nil {
		log.Error("failed to record run failure", "stage", stage, "error", ferr)
	}
	return &domain.PipelineError{Stage: stage, Err: err}
}

// bookkeeping detaches ledger and notification writes from the caller's
// cancellation.
func (s *service) bookkeeping(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.timeouts.Storage)
}
