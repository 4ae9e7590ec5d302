package injector

import (
	"fmt"
	"strings"

	"github.com/lk2023060901/forum-search-backend/internal/auth"
	"github.com/lk2023060901/forum-search-backend/internal/conf"
	"github.com/lk2023060901/forum-search-backend/internal/data"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/workerpool"
	"github.com/lk2023060901/forum-search-backend/internal/search/adapter"
	"github.com/lk2023060901/forum-search-backend/internal/search/biz"
	searchdata "github.com/lk2023060901/forum-search-backend/internal/search/data"
	"github.com/lk2023060901/forum-search-backend/internal/search/service"
	"github.com/lk2023060901/forum-search-backend/internal/search/types"
	"github.com/lk2023060901/forum-search-backend/internal/server"
)

// InitializeApp wires the data layer, use cases, services and servers
func InitializeApp(config *conf.Config, log *logger.Logger) (*App, func(), error) {
	d, cleanupData, err := data.NewData(config, log)
	if err != nil {
		return nil, nil, err
	}

	searchAdapter, err := provideAdapter(config, d, log)
	if err != nil {
		cleanupData()
		return nil, nil, err
	}

	pool, err := provideWorkerPool(config, log)
	if err != nil {
		cleanupData()
		return nil, nil, err
	}

	searchUseCase := biz.NewSearchUseCase(searchAdapter, provideSearchConfig(config), log)
	forumUseCase := biz.NewForumSearchUseCase(
		searchdata.NewPrivilegeRepo(d.DB.DB, config.Search.DefaultPrivileges),
		searchdata.NewPostRepo(d.DB.DB),
		searchdata.NewHistoryStore(d.RedisClient),
		provideTaskSubmitter(pool),
		biz.ForumConfig{
			PrivilegeTimeout: config.Search.PrivilegeTimeout,
			SearchTimeout:    config.Search.QueryTimeout,
			HistoryTimeout:   config.Search.HistoryTimeout,
		},
		log,
	)

	jwtManager := auth.NewJWTManager(config.Auth.JWTSecret, config.Auth.JWTIssuer, config.Auth.AccessTokenTTL)

	httpServer := server.NewHTTPServer(
		config,
		log,
		service.NewForumSearchService(forumUseCase, log),
		service.NewSearchService(searchUseCase, log),
		jwtManager,
		d.RedisClient,
		d,
	)
	grpcServer := server.NewGRPCServer(config, log, d)

	app, cleanup := newApp(config, log, d, httpServer, grpcServer, pool, cleanupData)
	return app, cleanup, nil
}

// provideAdapter 按 search.engine 选择后端适配器
func provideAdapter(config *conf.Config, d *data.Data, log *logger.Logger) (adapter.Adapter, error) {
	deps := &adapter.Dependencies{Logger: log}
	if d.DB != nil {
		deps.DB = d.DB.DB
	}
	if d.MongoClient != nil {
		deps.Collections = adapter.DatabaseCollections(d.MongoClient.Database())
	}

	a, err := adapter.NewFactory().Create(config.SearchEngine(), deps)
	if err != nil {
		return nil, fmt.Errorf("failed to create search adapter: %w", err)
	}
	return a, nil
}

func provideSearchConfig(config *conf.Config) biz.SearchConfig {
	presets := make(map[string]biz.Preset, len(config.Search.Presets))
	for alias, p := range config.Search.Presets {
		presets[alias] = biz.Preset{
			Table:         p.Table,
			Column:        p.Column,
			SortBy:        p.SortBy,
			SortDirection: types.SortDirection(strings.ToUpper(p.SortDirection)),
		}
	}
	return biz.SearchConfig{
		QueryTimeout: config.Search.QueryTimeout,
		Presets:      presets,
	}
}

func provideWorkerPool(config *conf.Config, log *logger.Logger) (*workerpool.Pool, error) {
	if !config.Search.HistoryAsync {
		return nil, nil
	}
	pool, err := workerpool.New(&config.WorkerPool, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	return pool, nil
}

// provideTaskSubmitter 避免把 nil *Pool 装进非 nil 接口
func provideTaskSubmitter(pool *workerpool.Pool) biz.TaskSubmitter {
	if pool == nil {
		return nil
	}
	return pool
}

func newApp(
	config *conf.Config,
	log *logger.Logger,
	d *data.Data,
	httpServer *server.HTTPServer,
	grpcServer *server.GRPCServer,
	pool *workerpool.Pool,
	cleanupData func(),
) (*App, func()) {
	// 先等待后台任务写完历史，再关闭存储连接
	cleanup := func() {
		if pool != nil {
			pool.Shutdown(config.Server.ShutdownTimeout)
		}
		cleanupData()
	}

	return &App{
		Config:     config,
		Logger:     log,
		Data:       d,
		HTTPServer: httpServer,
		GRPCServer: grpcServer,
		WorkerPool: pool,
		cleanup:    cleanup,
	}, cleanup
}
