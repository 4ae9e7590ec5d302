package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/forum-search-backend/internal/auth"
	"github.com/lk2023060901/forum-search-backend/internal/auth/middleware"
	"github.com/lk2023060901/forum-search-backend/internal/conf"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/redis"
	"github.com/lk2023060901/forum-search-backend/internal/search/biz"
	"github.com/lk2023060901/forum-search-backend/internal/search/data"
	"github.com/lk2023060901/forum-search-backend/internal/search/service"
	"github.com/lk2023060901/forum-search-backend/internal/search/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type fakeChecker struct{ err error }

func (f *fakeChecker) HealthCheck(ctx context.Context) error { return f.err }

type emptyAdapter struct{}

func (emptyAdapter) Kind() string { return "empty" }

func (emptyAdapter) Execute(ctx context.Context, req *types.SearchRequest) (*types.SearchResult, error) {
	return &types.SearchResult{Items: []types.Record{}}, nil
}

type noPrivileges struct{}

func (noPrivileges) Can(ctx context.Context, privilege string, uid int64) (bool, error) {
	return false, nil
}

type noPosts struct{}

func (noPosts) Search(ctx context.Context, filters *types.SearchFilters) (*types.PostSearchResult, error) {
	return &types.PostSearchResult{}, nil
}

func testConfig() *conf.Config {
	return &conf.Config{
		Server: conf.ServerConfig{Host: "127.0.0.1", Port: 0, Mode: gin.TestMode},
		Auth: conf.AuthConfig{
			RateLimit: middleware.RateLimiterConfig{MaxRequests: 2, WindowSeconds: 60, Strategy: middleware.StrategyIP},
		},
	}
}

func newTestHTTPServer(t *testing.T, checker HealthChecker) (*HTTPServer, *auth.JWTManager) {
	t.Helper()
	log := logger.NewNop()

	mr := miniredis.RunT(t)
	rc := redis.DefaultConfig()
	rc.Addr = mr.Addr()
	client, err := redis.New(rc, log)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	searchUC := biz.NewSearchUseCase(emptyAdapter{}, biz.SearchConfig{}, log)
	forumUC := biz.NewForumSearchUseCase(noPrivileges{}, noPosts{}, data.NewHistoryStore(client), nil, biz.ForumConfig{}, log)
	jwtManager := auth.NewJWTManager("secret", "forum-search", time.Minute)

	srv := NewHTTPServer(testConfig(), log,
		service.NewForumSearchService(forumUC, log),
		service.NewSearchService(searchUC, log),
		jwtManager, client, checker)
	return srv, jwtManager
}

func get(h http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHTTPServer_Health(t *testing.T) {
	checker := &fakeChecker{}
	srv, _ := newTestHTTPServer(t, checker)

	w := get(srv.Handler(), "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])

	checker.err = errors.New("redis: connection refused")
	w = get(srv.Handler(), "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestHTTPServer_Routes(t *testing.T) {
	srv, jwtManager := newTestHTTPServer(t, nil)
	h := srv.Handler()

	w := get(h, "/api/v1/custom-search/companies?ticker=aa", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "custom search requires a token")

	token, err := jwtManager.GenerateAccessToken(9, "ops")
	require.NoError(t, err)
	w = get(h, "/api/v1/custom-search/companies?ticker=aa", token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(h, "/api/v1/search?query=hello", "")
	assert.Equal(t, http.StatusOK, w.Code, "forum search is open to guests")

	w = get(h, "/api/v1/search?query=hello", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "rate limit applies per ip")
}

func TestGRPCServer_Refresh(t *testing.T) {
	checker := &fakeChecker{}
	srv := NewGRPCServer(testConfig(), logger.NewNop(), checker)
	ctx := context.Background()

	resp, err := srv.health.Check(ctx, &healthpb.HealthCheckRequest{Service: HealthService})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status, "not serving before the first check")

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, srv.Refresh(ctx))
	resp, err = srv.health.Check(ctx, &healthpb.HealthCheckRequest{Service: HealthService})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	checker.err = errors.New("database: gone")
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, srv.Refresh(ctx))
	t.Logf("✓ health status follows the storage health check")
}
