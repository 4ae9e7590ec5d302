package injector

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lk2023060901/forum-search-backend/internal/conf"
	"github.com/lk2023060901/forum-search-backend/internal/data"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/database"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/redis"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/workerpool"
	"github.com/lk2023060901/forum-search-backend/internal/search/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, redisAddr string) *conf.Config {
	t.Helper()

	db := database.DefaultConfig()
	db.Driver = database.DriverSQLite
	db.Path = filepath.Join(t.TempDir(), "forum.db")
	db.AutoMigrate = true
	db.PrepareStmt = false

	rc := redis.DefaultConfig()
	rc.Addr = redisAddr

	return &conf.Config{
		Server:     conf.ServerConfig{Host: "127.0.0.1", Port: 8080, ShutdownTimeout: time.Second},
		Database:   *db,
		Redis:      *rc,
		Auth:       conf.AuthConfig{JWTSecret: "secret", JWTIssuer: "forum-search", AccessTokenTTL: time.Hour},
		WorkerPool: workerpool.Config{Workers: 2, ExpiryDuration: time.Minute, Nonblocking: true},
		Search: conf.SearchConfig{
			QueryTimeout: time.Second,
			HistoryAsync: true,
			Presets: map[string]conf.PresetConfig{
				"tickers": {Table: "company_daily_stock_price", Column: "ticker", SortDirection: "asc"},
			},
		},
	}
}

func TestInitializeApp(t *testing.T) {
	mr := miniredis.RunT(t)

	app, cleanup, err := InitializeApp(testConfig(t, mr.Addr()), logger.NewNop())
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, app.HTTPServer)
	assert.NotNil(t, app.GRPCServer)
	assert.NotNil(t, app.WorkerPool, "history_async starts a worker pool")
	require.NoError(t, app.Data.HealthCheck(context.Background()))
	t.Logf("✓ app wired with engine %s", app.Config.SearchEngine())
}

func TestInitializeApp_Inline(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, mr.Addr())
	cfg.Search.HistoryAsync = false

	app, cleanup, err := InitializeApp(cfg, logger.NewNop())
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, app.WorkerPool)
	assert.Nil(t, provideTaskSubmitter(app.WorkerPool))
}

func TestProvideAdapter(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, mr.Addr())

	tests := []struct {
		name    string
		engine  string
		wantErr string
	}{
		{name: "mongo without client", engine: conf.EngineMongo, wantErr: "collection provider"},
		{name: "unknown engine", engine: "elastic", wantErr: types.ErrUnsupportedBackend.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.Search.Engine = tt.engine
			_, err := provideAdapter(cfg, &data.Data{}, logger.NewNop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProvideSearchConfig(t *testing.T) {
	sc := provideSearchConfig(testConfig(t, "localhost:6379"))

	require.Contains(t, sc.Presets, "tickers")
	assert.Equal(t, types.SortAsc, sc.Presets["tickers"].SortDirection)
	assert.Equal(t, time.Second, sc.QueryTimeout)
}
