package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/forum-search-backend/internal/auth"
	"github.com/lk2023060901/forum-search-backend/internal/auth/middleware"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/redis"
	"github.com/lk2023060901/forum-search-backend/internal/search/biz"
	"github.com/lk2023060901/forum-search-backend/internal/search/data"
	"github.com/lk2023060901/forum-search-backend/internal/search/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAdapter struct {
	mu   sync.Mutex
	rows []types.Record
	err  error
	last *types.SearchRequest
}

func (s *stubAdapter) Kind() string { return "stub" }

func (s *stubAdapter) Execute(ctx context.Context, req *types.SearchRequest) (*types.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &types.SearchResult{Items: s.rows, TotalCount: 45, HasMore: true}, nil
}

type stubPrivileges map[string]bool

func (p stubPrivileges) Can(ctx context.Context, privilege string, uid int64) (bool, error) {
	return uid > 0 && p[privilege], nil
}

type stubPosts struct{}

func (stubPosts) Search(ctx context.Context, filters *types.SearchFilters) (*types.PostSearchResult, error) {
	return &types.PostSearchResult{
		Posts:      []types.Post{{PID: 3, TID: 1, Title: "Hello", Content: "<b>hi</b>"}},
		MatchCount: 1,
	}, nil
}

type testServer struct {
	router  *gin.Engine
	adapter *stubAdapter
	jwt     *auth.JWTManager
	redis   *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewNop()

	mr := miniredis.RunT(t)
	cfg := redis.DefaultConfig()
	cfg.Addr = mr.Addr()
	client, err := redis.New(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	a := &stubAdapter{rows: []types.Record{{"id": 1, "ticker": "AAPL"}, {"id": 2, "ticker": "AMZN"}}}
	searchUC := biz.NewSearchUseCase(a, biz.SearchConfig{QueryTimeout: time.Second}, log)
	forumUC := biz.NewForumSearchUseCase(
		stubPrivileges{types.PrivilegeSearchUsers: true},
		stubPosts{},
		data.NewHistoryStore(client),
		nil,
		biz.ForumConfig{HistoryTimeout: time.Second},
		log,
	)

	jwtManager := auth.NewJWTManager("secret", "forum-search", time.Minute)

	r := gin.New()
	api := r.Group("/api/v1")
	NewForumSearchService(forumUC, log).RegisterRoutes(api.Group("/search", middleware.OptionalJWTAuth(jwtManager, log)))
	NewSearchService(searchUC, log).RegisterRoutes(api.Group("/custom-search", middleware.JWTAuth(jwtManager, log)))

	return &testServer{router: r, adapter: a, jwt: jwtManager, redis: mr}
}

func (s *testServer) do(t *testing.T, method, path, body string, uid int64) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if uid > 0 {
		token, err := s.jwt.GenerateAccessToken(uid, "tester")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestForumSearch_HTTP(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/search?query=hello+world&searchIn=titles&page=1&itemsPerPage=5", "", 7)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	result := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), result["matchCount"])
	assert.Equal(t, float64(1), result["pageCount"])
	posts := result["posts"].([]interface{})
	require.Len(t, posts, 1)
	assert.Equal(t, "hi", posts[0].(map[string]interface{})["content"])
	assert.Equal(t, "/post/3", posts[0].(map[string]interface{})["url"])

	history := decode(t, s.do(t, http.MethodGet, "/api/v1/search/history", "", 7))
	entries := history["data"].([]interface{})
	require.Len(t, entries, 1)
	assert.Equal(t, "hello world", entries[0].(map[string]interface{})["query"])
}

func TestForumSearch_HTTPForbidden(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		path string
		uid  int64
	}{
		{name: "guest users", path: "/api/v1/search?query=bob&searchIn=users"},
		{name: "member tags", path: "/api/v1/search?query=go&searchIn=tags", uid: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, tt.path, "", tt.uid)
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.JSONEq(t, `{"success":false,"error":"Insufficient privileges"}`, w.Body.String())
		})
	}

	w := s.do(t, http.MethodGet, "/api/v1/search?query=bob&searchIn=users", "", 4)
	assert.Equal(t, http.StatusOK, w.Code, "members with search:users may search users")
}

func TestForumSearch_HTTPAdvancedAndExtras(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/search/advanced", `{"query":"golang tips","searchIn":"posts","page":"2","itemsPerPage":10}`, 2)
	require.Equal(t, http.StatusOK, w.Code)
	filters := decode(t, w)["data"].(map[string]interface{})["filters"].(map[string]interface{})
	assert.Equal(t, float64(2), filters["page"])
	assert.Equal(t, "posts", filters["searchIn"])

	popular := decode(t, s.do(t, http.MethodGet, "/api/v1/search/popular?limit=5", "", 0))
	assert.Equal(t, []interface{}{map[string]interface{}{"query": "golang tips", "count": float64(1)}}, popular["data"])

	suggestions := decode(t, s.do(t, http.MethodGet, "/api/v1/search/suggestions?q=gol", "", 2))
	set := suggestions["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{"golang tips"}, set["recent"])
	assert.Equal(t, []interface{}{"golang tips"}, set["popular"])

	options := decode(t, s.do(t, http.MethodGet, "/api/v1/search/options", "", 0))
	scopes := options["data"].(map[string]interface{})["scopes"].([]interface{})
	assert.NotContains(t, scopes, "users")

	w = s.do(t, http.MethodDelete, "/api/v1/search/history", "", 2)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, s.redis.Exists(biz.UserHistoryKey(2)))

	guest := decode(t, s.do(t, http.MethodGet, "/api/v1/search/history", "", 0))
	assert.Equal(t, []interface{}{}, guest["data"])
}

func TestCustomSearch_HTTP(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/custom-search", `{"query":"aa","table":"company_daily_stock_price","column":"ticker","offset":"20"}`, 1)
	require.Equal(t, http.StatusOK, w.Code)

	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(45), data["totalCount"])
	assert.Equal(t, "ticker", data["column"])
	assert.Equal(t, map[string]interface{}{
		"currentPage": float64(2),
		"pageCount":   float64(3),
		"hasPrev":     true,
		"hasNext":     true,
	}, data["pagination"])
	assert.Equal(t, 20, s.adapter.last.Limit, "absent limit defaults to 20")
	assert.Equal(t, 20, s.adapter.last.Offset)
}

func TestCustomSearch_HTTPErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		uid        int64
		wantStatus int
		wantBody   string
	}{
		{
			name: "unauthenticated", method: http.MethodPost, path: "/api/v1/custom-search",
			body: `{"query":"a"}`, wantStatus: http.StatusUnauthorized,
			wantBody: `{"success":false,"error":"Missing authorization header"}`,
		},
		{
			name: "missing table", method: http.MethodPost, path: "/api/v1/custom-search",
			body: `{"query":"a","column":"c"}`, uid: 1, wantStatus: http.StatusBadRequest,
			wantBody: `{"success":false,"error":"table name is required"}`,
		},
		{
			name: "injection in column", method: http.MethodPost, path: "/api/v1/custom-search",
			body: `{"query":"a","table":"t","column":"c; DROP TABLE t"}`, uid: 1, wantStatus: http.StatusBadRequest,
			wantBody: `{"success":false,"error":"invalid column name"}`,
		},
		{
			name: "advanced without queries", method: http.MethodPost, path: "/api/v1/custom-search/advanced",
			body: `{"table":"t","columns":["c"]}`, uid: 1, wantStatus: http.StatusBadRequest,
			wantBody: `{"success":false,"error":"search queries are required"}`,
		},
		{
			name: "malformed json", method: http.MethodPost, path: "/api/v1/custom-search",
			body: `{"query":`, uid: 1, wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, tt.body, tt.uid)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestCustomSearch_HTTPBackendError(t *testing.T) {
	s := newTestServer(t)
	s.adapter.err = types.NewBackendError("postgres", errors.New(`relation "t" does not exist`))

	w := s.do(t, http.MethodGet, "/api/v1/custom-search/companies?ticker=AAPL", "", 1)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Search failed","message":"relation \"t\" does not exist"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/custom-search/suggestions?query=aapl&table=t&column=ticker", "", 1)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String(), "suggestions swallow backend errors")
}

func TestCustomSearch_HTTPPresetsAndAdvanced(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/custom-search/posts?content=hello&limit=5&offset=10", "", 1)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "objects", s.adapter.last.Table)
	assert.Equal(t, types.SortDesc, s.adapter.last.SortDirection)
	assert.Equal(t, 5, s.adapter.last.Limit)

	w = s.do(t, http.MethodGet, "/api/v1/custom-search/suggestions?query=aa&table=t&column=ticker", "", 1)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":["AAPL","AMZN"]}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/custom-search/advanced", `{"queries":["aa","am"],"table":"t","columns":["ticker"],"limit":10}`, 1)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Len(t, data["results"], 2, "identical rows from both queries collapse")
	assert.Equal(t, float64(90), data["totalCount"])
	assert.Contains(t, data, "pagination")
}
