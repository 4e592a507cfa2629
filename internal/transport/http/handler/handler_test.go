package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glam-looks-api/internal/domain"
	jwtinfra "github.com/glam-looks-api/internal/infrastructure/jwt"
	"github.com/glam-looks-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUploadSvc struct{ mock.Mock }

func (m *mockUploadSvc) Issue(ctx context.Context, userID string) (*domain.UploadCredential, error) {
	args := m.Called(ctx, userID)
	if c, _ := args.Get(0).(*domain.UploadCredential); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPipelineSvc struct{ mock.Mock }

func (m *mockPipelineSvc) Run(ctx context.Context, req domain.RunRequest) (*domain.LookRecommendation, error) {
	args := m.Called(ctx, req)
	if l, _ := args.Get(0).(*domain.LookRecommendation); l != nil {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPipelineSvc) RunStatus(ctx context.Context, userID, uploadID string) (*domain.Run, error) {
	args := m.Called(ctx, userID, uploadID)
	if r, _ := args.Get(0).(*domain.Run); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLookSvc struct{ mock.Mock }

func (m *mockLookSvc) Save(ctx context.Context, l *domain.LookRecommendation) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockLookSvc) List(ctx context.Context, userID string, limit int, cursor string) (*domain.LookPage, error) {
	args := m.Called(ctx, userID, limit, cursor)
	if p, _ := args.Get(0).(*domain.LookPage); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLookSvc) Get(ctx context.Context, userID, uploadID string) (*domain.LookRecommendation, error) {
	args := m.Called(ctx, userID, uploadID)
	if l, _ := args.Get(0).(*domain.LookRecommendation); l != nil {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLookSvc) NextCreatedAt(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

// --- helpers ---

// newTestJWTProvider generates a fresh RSA key pair and returns a *jwtinfra.Provider.
func newTestJWTProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return jwtinfra.NewProviderFromKeys(privKey, &privKey.PublicKey, time.Hour)
}

func newReq(method, target string, body []byte) *http.Request {
	if body != nil {
		return httptest.NewRequest(method, target, bytes.NewReader(body))
	}
	return httptest.NewRequest(method, target, nil)
}

// bearerReq builds a request with a signed Bearer token for the given userID and role.
func bearerReq(t *testing.T, p *jwtinfra.Provider, method, target, userID, role string, body []byte) *http.Request {
	t.Helper()
	token, err := p.Sign(userID, role)
	require.NoError(t, err)
	r := newReq(method, target, body)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// withUploadID injects the chi URL param "uploadId" into the request context.
func withUploadID(r *http.Request, uploadID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("uploadId", uploadID)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// serveOptional wraps the handler with middleware.OptionalAuth before serving.
func serveOptional(p *jwtinfra.Provider, h http.Handler, w http.ResponseWriter, r *http.Request) {
	middleware.OptionalAuth(p)(h).ServeHTTP(w, r)
}
