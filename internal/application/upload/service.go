package upload

import (
	"context"
	"time"

	"github.com/glam-looks-api/internal/config"
	"github.com/glam-looks-api/internal/domain"
	s3infra "github.com/glam-looks-api/internal/infrastructure/s3"
	"github.com/glam-looks-api/internal/metrics"
	"github.com/glam-looks-api/internal/pkg/id"
)

// MetaUserID is the object metadata key carrying the uploader's user id.
// S3 exposes it on the object as x-amz-meta-user-id.
const MetaUserID = "user-id"

type Service interface {
	Issue(ctx context.Context, userID string) (*domain.UploadCredential, error)
}

type presigner interface {
	PresignPut(ctx context.Context, key, contentType string, metadata map[string]string, ttl time.Duration) (*s3infra.PresignedPut, error)
}

type service struct {
	presigner presigner
	storage   config.SelfieStorage
	ttl       time.Duration
	now       func() time.Time
	newID     func() string
}

type ServiceDeps struct {
	Presigner presigner
	Storage   config.SelfieStorage
	TTL       time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		presigner: deps.Presigner,
		storage:   deps.Storage,
		ttl:       deps.TTL,
		now:       time.Now,
		newID:     id.New,
	}
}

// StorageKey returns the object key of the selfie for uploadID.
func StorageKey(storage config.SelfieStorage, uploadID string) string {
	return storage.KeyPrefix + uploadID + storage.KeyExt
}

// Issue mints a fresh upload id and a PUT credential scoped to its object.
// userID may be empty; when set it is signed into the object metadata.
func (s *service) Issue(ctx context.Context, userID string) (*domain.UploadCredential, error) {
	uploadID := s.newID()
	key := StorageKey(s.storage, uploadID)

	var metadata map[string]string
	if userID != "" {
		metadata = map[string]string{MetaUserID: userID}
	}
	issuedAt := s.now().UTC()
	put, err := s.presigner.PresignPut(ctx, key, s.storage.ContentType, metadata, s.ttl)
	if err != nil {
		return nil, err
	}
	metrics.UploadsIssued.Inc()

	return &domain.UploadCredential{
		UploadID:   uploadID,
		StorageKey: key,
		UploadURL:  put.URL,
		Method:     put.Method,
		Headers:    put.Headers,
		ExpiresAt:  issuedAt.Add(s.ttl),
	}, nil
}
