package lambda

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/glam-looks-api/internal/application/upload"
	"github.com/glam-looks-api/internal/config"
	"github.com/glam-looks-api/internal/domain"
)

type runner interface {
	Run(ctx context.Context, req domain.RunRequest) (*domain.LookRecommendation, error)
}

type metadataReader interface {
	Metadata(ctx context.Context, key string) (map[string]string, error)
}

// S3Handler starts a pipeline run for every selfie that lands in the bucket.
type S3Handler struct {
	runs    runner
	objects metadataReader
	storage config.SelfieStorage
}

func NewS3Handler(runs runner, objects metadataReader, storage config.SelfieStorage) *S3Handler {
	return &S3Handler{runs: runs, objects: objects, storage: storage}
}

// Handle processes an S3 notification batch. Records that are not selfie
// uploads, carry no uploader, or were already processed are skipped; any
// other failure is returned so the invocation is retried.
func (h *S3Handler) Handle(ctx context.Context, event events.S3Event) error {
	var errs []error
	for _, rec := range event.Records {
		if err := h.handleRecord(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *S3Handler) handleRecord(ctx context.Context, rec events.S3EventRecord) error {
	key := rec.S3.Object.URLDecodedKey
	if key == "" {
		key = rec.S3.Object.Key
	}
	log := slog.With("event", rec.EventName, "key", key)

	if !strings.HasPrefix(rec.EventName, "ObjectCreated:") {
		log.Debug("skipping non-create event")
		return nil
	}
	uploadID, ok := h.uploadID(key)
	if !ok {
		log.Debug("skipping object outside selfie prefix")
		return nil
	}

	meta, err := h.objects.Metadata(ctx, key)
	if err != nil {
		return fmt.Errorf("read metadata of %s: %w", key, err)
	}
	userID := meta[upload.MetaUserID]
	if userID == "" {
		log.Warn("selfie has no uploader, waiting for an explicit analyze call")
		return nil
	}

	if _, err := h.runs.Run(ctx, domain.RunRequest{UserID: userID, UploadID: uploadID}); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			log.Info("upload already processed", "upload_id", uploadID)
			return nil
		}
		return fmt.Errorf("run %s: %w", uploadID, err)
	}
	log.Info("look saved", "upload_id", uploadID, "user_id", userID)
	return nil
}

// uploadID extracts the id from a key shaped {prefix}{uploadId}{ext}.
func (h *S3Handler) uploadID(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, h.storage.KeyPrefix)
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, h.storage.KeyExt)
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
