package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/forum-search-backend/internal/auth"
	"github.com/lk2023060901/forum-search-backend/internal/auth/middleware"
	"github.com/lk2023060901/forum-search-backend/internal/conf"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/redis"
	"github.com/lk2023060901/forum-search-backend/internal/search/service"
	"go.uber.org/zap"
)

// HealthChecker 探测下游存储是否可用
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HTTPServer struct {
	server *http.Server
	router *gin.Engine
	logger *logger.Logger
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	forumService *service.ForumSearchService,
	searchService *service.SearchService,
	jwtManager *auth.JWTManager,
	redisClient *redis.Client,
	health HealthChecker,
) *HTTPServer {
	if config.Server.Mode != "" {
		gin.SetMode(config.Server.Mode)
	}

	router := gin.New()
	router.Use(logger.GinRecovery(log))
	router.Use(logger.GinLoggerWithConfig(log, logger.MiddlewareOptions{SkipPaths: []string{"/health"}}))
	router.Use(middleware.CORS())

	router.GET("/health", healthHandler(health))

	api := router.Group("/api/v1")
	limiter := middleware.RateLimiter(redisClient, config.Auth.RateLimit, log)

	forumService.RegisterRoutes(api.Group("/search",
		middleware.OptionalJWTAuth(jwtManager, log),
		limiter,
	))
	searchService.RegisterRoutes(api.Group("/custom-search",
		middleware.JWTAuth(jwtManager, log),
		limiter,
	))

	return &HTTPServer{
		server: &http.Server{
			Addr:              config.Server.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		router: router,
		logger: log,
	}
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler 返回路由，便于测试
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func healthHandler(health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		body := gin.H{}

		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health.HealthCheck(ctx); err != nil {
				status, code = "unavailable", http.StatusServiceUnavailable
				body["error"] = err.Error()
			}
		}

		body["status"] = status
		body["time"] = time.Now().Format(time.RFC3339)
		c.JSON(code, body)
	}
}
