package http

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glam-looks-api/internal/config"
	"github.com/glam-looks-api/internal/domain"
	jwtinfra "github.com/glam-looks-api/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUploads struct{ gotUser string }

func (s *stubUploads) Issue(_ context.Context, userID string) (*domain.UploadCredential, error) {
	s.gotUser = userID
	return &domain.UploadCredential{UploadID: "up1", Method: http.MethodPut}, nil
}

type stubPipeline struct{}

func (stubPipeline) Run(context.Context, domain.RunRequest) (*domain.LookRecommendation, error) {
	return nil, domain.ErrConflict
}

func (stubPipeline) RunStatus(context.Context, string, string) (*domain.Run, error) {
	return nil, domain.ErrNotFound
}

type stubLooks struct{}

func (stubLooks) Save(context.Context, *domain.LookRecommendation) error { return nil }

func (stubLooks) List(context.Context, string, int, string) (*domain.LookPage, error) {
	return &domain.LookPage{Items: []domain.LookRecommendation{}}, nil
}

func (stubLooks) Get(context.Context, string, string) (*domain.LookRecommendation, error) {
	return nil, domain.ErrNotFound
}

func (stubLooks) NextCreatedAt(context.Context, string) (string, error) { return "", nil }

func newTestRouter(t *testing.T, withJWT bool) (http.Handler, *jwtinfra.Provider, *stubUploads) {
	t.Helper()
	var p *jwtinfra.Provider
	if withJWT {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		p = jwtinfra.NewProviderFromKeys(key, &key.PublicKey, time.Hour)
	}
	uploads := &stubUploads{}
	cfg := &config.Config{AllowedOrigins: []string{"*"}}
	return NewRouter(cfg, &Deps{Uploads: uploads, Pipeline: stubPipeline{}, Looks: stubLooks{}, JWTProvider: p}), p, uploads
}

func TestRouter_PublicRoutes(t *testing.T) {
	h, _, _ := newTestRouter(t, false)

	cases := []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/v1/health-check/ping", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/v1/looks?user_id=u1", http.StatusOK},
		{http.MethodGet, "/v1/looks/up1?user_id=u1", http.StatusNotFound},
		{http.MethodGet, "/v1/runs/up1?user_id=u1", http.StatusNotFound},
		{http.MethodPost, "/v1/upload-url", http.StatusOK},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.status, rr.Code, tc.path)
	}
}

func TestRouter_AnalyzeDuplicateIsConflict(t *testing.T) {
	h, _, _ := newTestRouter(t, false)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(`{"user_id":"u1","upload_id":"up1"}`)))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRouter_AdminSaveNotMountedWithoutJWT(t *testing.T) {
	h, _, _ := newTestRouter(t, false)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/looks/save", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRouter_AdminSaveRequiresToken(t *testing.T) {
	h, p, _ := newTestRouter(t, true)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/looks/save", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	token, err := p.Sign("u1", domain.RoleUser)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, "/v1/looks/save", strings.NewReader(`{}`))
	r.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRouter_TokenBindsUploadUser(t *testing.T) {
	h, p, uploads := newTestRouter(t, true)

	token, err := p.Sign("u7", domain.RoleUser)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, "/v1/upload-url", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u7", uploads.gotUser)
}

func TestRouter_BadTokenRejected(t *testing.T) {
	h, _, _ := newTestRouter(t, true)

	r := httptest.NewRequest(http.MethodGet, "/v1/looks?user_id=u1", nil)
	r.Header.Set("Authorization", "Bearer not-a-jwt")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_AnonymousCannotActForUserWhenJWTConfigured(t *testing.T) {
	h, _, _ := newTestRouter(t, true)

	cases := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/v1/looks?user_id=u2", ""},
		{http.MethodGet, "/v1/looks/up1?user_id=u2", ""},
		{http.MethodGet, "/v1/runs/up1?user_id=u2", ""},
		{http.MethodPost, "/v1/analyze", `{"user_id":"u2","upload_id":"up1"}`},
		{http.MethodPost, "/v1/upload-url", `{"user_id":"u2"}`},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body)))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, tc.path)
	}
}

func TestRouter_AnonymousUploadWithoutUserWhenJWTConfigured(t *testing.T) {
	h, _, uploads := newTestRouter(t, true)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/upload-url", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, uploads.gotUser)
}
