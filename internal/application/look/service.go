package look

import (
	"context"
	"fmt"
	"time"

	"github.com/glam-looks-api/internal/domain"
	"github.com/glam-looks-api/internal/pkg/validate"
)

type Service interface {
	Save(ctx context.Context, l *domain.LookRecommendation) error
	List(ctx context.Context, userID string, limit int, cursor string) (*domain.LookPage, error)
	Get(ctx context.Context, userID, uploadID string) (*domain.LookRecommendation, error)
	NextCreatedAt(ctx context.Context, userID string) (string, error)
}

type lookStore interface {
	Put(ctx context.Context, l *domain.LookRecommendation) error
	Get(ctx context.Context, userID, uploadID string) (*domain.LookRecommendation, error)
	QueryByUser(ctx context.Context, userID string, limit int32, cursor string) ([]domain.LookRecommendation, string, error)
	Latest(ctx context.Context, userID string) (*domain.LookRecommendation, error)
}

type service struct {
	repo        lookStore
	pageSize    int
	maxPageSize int
	now         func() time.Time
}

type ServiceDeps struct {
	LookRepo    lookStore
	PageSize    int
	MaxPageSize int
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:        deps.LookRepo,
		pageSize:    deps.PageSize,
		maxPageSize: deps.MaxPageSize,
		now:         time.Now,
	}
}

// Save validates l and writes it in one item. Nothing is written when
// validation fails.
func (s *service) Save(ctx context.Context, l *domain.LookRecommendation) error {
	if l == nil {
		return fmt.Errorf("look is required: %w", domain.ErrValidation)
	}
	if l.FaceProfile.Landmarks == nil {
		l.FaceProfile.Landmarks = []domain.Landmark{}
	}
	if l.ProductLinks == nil {
		l.ProductLinks = []string{}
	}
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrValidation)
	}
	return s.repo.Put(ctx, l)
}

// List returns one page of userID's looks, newest first. A user with no
// looks gets an empty page.
func (s *service) List(ctx context.Context, userID string, limit int, cursor string) (*domain.LookPage, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required: %w", domain.ErrBadRequest)
	}
	switch {
	case limit <= 0:
		limit = s.pageSize
	case limit > s.maxPageSize:
		limit = s.maxPageSize
	}
	items, next, err := s.repo.QueryByUser(ctx, userID, int32(limit), cursor)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.LookRecommendation{}
	}
	return &domain.LookPage{Items: items, NextCursor: next}, nil
}

func (s *service) Get(ctx context.Context, userID, uploadID string) (*domain.LookRecommendation, error) {
	if userID == "" || uploadID == "" {
		return nil, fmt.Errorf("user_id and upload_id are required: %w", domain.ErrBadRequest)
	}
	return s.repo.Get(ctx, userID, uploadID)
}

// NextCreatedAt returns the creation timestamp for userID's next look: now,
// or one millisecond past the newest existing look when the clock has not
// moved beyond it. A new look therefore always sorts first in its owner's history.
func (s *service) NextCreatedAt(ctx context.Context, userID string) (string, error) {
	now := domain.FormatCreatedAt(s.now())
	latest, err := s.repo.Latest(ctx, userID)
	if err != nil {
		return "", err
	}
	if latest == nil || latest.CreatedAt < now {
		return now, nil
	}
	t, err := time.Parse(domain.CreatedAtLayout, latest.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("parse created_at %q: %w", latest.CreatedAt, err)
	}
	return domain.FormatCreatedAt(t.Add(time.Millisecond)), nil
}
