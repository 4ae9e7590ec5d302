package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Config MongoDB 配置
type Config struct {
	Enabled        bool          `mapstructure:"enabled"`
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		URI:            "mongodb://localhost:27017",
		Database:       "forum",
		MaxPoolSize:    50,
		ConnectTimeout: 10 * time.Second,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.URI == "" {
		return errors.New("mongo: uri is required")
	}
	if c.Database == "" {
		return errors.New("mongo: database is required")
	}
	if c.ConnectTimeout <= 0 {
		return errors.New("mongo: connect_timeout must be > 0")
	}
	return nil
}

// Client MongoDB 客户端封装
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	config *Config
	logger *logger.Logger
}

// New 连接 MongoDB 并执行 Ping
func New(cfg *Config, log *logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect failed: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	log.Info("mongo client initialized successfully", zap.String("database", cfg.Database))

	return &Client{
		client: client,
		db:     client.Database(cfg.Database),
		config: cfg,
		logger: log,
	}, nil
}

// Database 返回配置的数据库
func (c *Client) Database() *mongo.Database {
	return c.db
}

// HealthCheck 检查主节点连通性
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close 断开连接
func (c *Client) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		c.logger.Error("mongo disconnect failed", zap.Error(err))
		return err
	}
	return nil
}
