package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrNotInitialized 客户端未初始化
var ErrNotInitialized = errors.New("redis: client not initialized")

// IsNil 判断是否是 Key 不存在错误
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

// Client Redis 客户端封装
type Client struct {
	rdb    redis.UniversalClient
	logger *logger.Logger
}

// New 根据配置创建客户端并执行健康检查
func New(cfg *Config, log *logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := &redis.UniversalOptions{
		Addrs:        cfg.addrs(),
		MasterName:   cfg.MasterName,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxRetries:   cfg.MaxRetries,
	}
	// 集群模式不支持 DB 选择
	if cfg.Mode == ModeCluster {
		opts.DB = 0
	}

	client := NewFromUniversal(redis.NewUniversalClient(opts), log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	log.Info("redis client initialized successfully",
		zap.String("mode", string(cfg.Mode)),
		zap.Strings("addrs", cfg.addrs()),
	)
	return client, nil
}

// NewFromUniversal 包装已有的 go-redis 客户端（测试中配合 miniredis 使用）
func NewFromUniversal(rdb redis.UniversalClient, log *logger.Logger) *Client {
	return &Client{rdb: rdb, logger: log}
}

// Ping 健康检查
func (c *Client) Ping(ctx context.Context) error {
	if c.rdb == nil {
		return ErrNotInitialized
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		c.logger.Error("redis ping failed", zap.Error(err))
		return err
	}
	return nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("close redis client failed", zap.Error(err))
		return err
	}
	return nil
}
