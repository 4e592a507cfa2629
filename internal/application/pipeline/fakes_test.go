package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/glam-looks-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

type mockAnalyzer struct{ mock.Mock }

func (m *mockAnalyzer) Analyze(ctx context.Context, key string) (*domain.FaceProfile, error) {
	args := m.Called(ctx, key)
	if p, _ := args.Get(0).(*domain.FaceProfile); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockGenerator struct{ mock.Mock }

func (m *mockGenerator) Generate(ctx context.Context, p domain.FaceProfile) (*domain.Look, error) {
	args := m.Called(ctx, p)
	if l, _ := args.Get(0).(*domain.Look); l != nil {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) LookCreated(ctx context.Context, l *domain.LookRecommendation) error {
	return m.Called(ctx, l).Error(0)
}

// memLooks is an in-memory look table with the same ordering as the
// user_id-created_at index.
type memLooks struct {
	mu      sync.Mutex
	items   map[string]domain.LookRecommendation
	puts    int
	failPut error
}

func newMemLooks() *memLooks {
	return &memLooks{items: map[string]domain.LookRecommendation{}}
}

func (r *memLooks) Put(_ context.Context, l *domain.LookRecommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.puts++
	if r.failPut != nil {
		return r.failPut
	}
	r.items[l.UserID+"/"+l.UploadID] = *l
	return nil
}

func (r *memLooks) Get(_ context.Context, userID, uploadID string) (*domain.LookRecommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.items[userID+"/"+uploadID]
	if !ok {
		return nil, fmt.Errorf("look not found: %w", domain.ErrNotFound)
	}
	return &l, nil
}

func (r *memLooks) QueryByUser(_ context.Context, userID string, limit int32, _ string) ([]domain.LookRecommendation, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.LookRecommendation{}
	for _, l := range r.items {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, "", nil
}

func (r *memLooks) Latest(ctx context.Context, userID string) (*domain.LookRecommendation, error) {
	looks, _, _ := r.QueryByUser(ctx, userID, 1, "")
	if len(looks) == 0 {
		return nil, nil
	}
	return &looks[0], nil
}

func (r *memLooks) putCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.puts
}

// memLedger mirrors the conditional-put semantics of the run table.
type memLedger struct {
	mu   sync.Mutex
	runs map[string]domain.Run
}

func newMemLedger() *memLedger {
	return &memLedger{runs: map[string]domain.Run{}}
}

func (l *memLedger) Begin(_ context.Context, run *domain.Run) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.runs[run.UploadID]; ok {
		return fmt.Errorf("upload %s already has a run: %w", run.UploadID, domain.ErrConflict)
	}
	l.runs[run.UploadID] = *run
	return nil
}

func (l *memLedger) Get(_ context.Context, uploadID string) (*domain.Run, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	run, ok := l.runs[uploadID]
	if !ok {
		return nil, fmt.Errorf("run not found: %w", domain.ErrNotFound)
	}
	return &run, nil
}

func (l *memLedger) Complete(_ context.Context, uploadID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	run := l.runs[uploadID]
	run.Status = domain.RunStatusDone
	run.Stage = domain.StageSaved
	run.ExpiresAt = 0
	l.runs[uploadID] = run
	return nil
}

func (l *memLedger) Fail(_ context.Context, uploadID string, stage domain.Stage, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	run := l.runs[uploadID]
	run.Status = domain.RunStatusFailed
	run.Stage = stage
	run.Error = reason
	l.runs[uploadID] = run
	return nil
}
