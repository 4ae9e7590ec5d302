package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/lk2023060901/forum-search-backend/internal/conf"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// HealthService gRPC 健康检查中使用的服务名
const HealthService = "forum.search"

// GRPCServer gRPC 服务器，只暴露健康检查和反射
type GRPCServer struct {
	config     *conf.Config
	logger     *logger.Logger
	grpcServer *grpc.Server
	health     *health.Server
	checker    HealthChecker

	stopWatch chan struct{}
	stopOnce  sync.Once
}

// NewGRPCServer 创建 gRPC 服务器
func NewGRPCServer(config *conf.Config, log *logger.Logger, checker HealthChecker) *GRPCServer {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RecoveryInterceptor(log),
			logger.UnaryServerInterceptor(log, healthpb.Health_Check_FullMethodName),
		),
	)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(HealthService, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	// 启用反射（用于 grpcurl 等工具）
	reflection.Register(grpcServer)

	return &GRPCServer{
		config:     config,
		logger:     log,
		grpcServer: grpcServer,
		health:     healthServer,
		checker:    checker,
		stopWatch:  make(chan struct{}),
	}
}

// Start 启动健康探测并监听
func (s *GRPCServer) Start() error {
	addr := s.config.Server.GRPCAddr()

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	go s.watchHealth(s.config.Server.HealthInterval)

	s.logger.Info("starting gRPC server", zap.String("addr", addr))

	if err := s.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return nil
}

// Stop 停止 gRPC 服务器
func (s *GRPCServer) Stop() {
	s.logger.Info("stopping gRPC server")
	s.stopOnce.Do(func() { close(s.stopWatch) })
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

// Refresh 根据存储健康状况更新服务状态
func (s *GRPCServer) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if s.checker != nil {
		if err := s.checker.HealthCheck(ctx); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus(HealthService, status)
	s.health.SetServingStatus("", status)
	return status
}

func (s *GRPCServer) watchHealth(interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}

	refresh := func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval/2)
		defer cancel()
		s.Refresh(ctx)
	}

	refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopWatch:
			return
		case <-ticker.C:
			refresh()
		}
	}
}
