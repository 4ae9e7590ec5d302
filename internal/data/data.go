package data

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/forum-search-backend/internal/conf"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/database"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/mongo"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/redis"
	searchdata "github.com/lk2023060901/forum-search-backend/internal/search/data"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Data 持有所有存储连接
type Data struct {
	DB          *database.DB
	RedisClient *redis.Client
	MongoClient *mongo.Client // 仅在文档引擎或显式开启时非空
	Logger      *logger.Logger
}

// NewData 按配置建立数据库、Redis 以及可选的 MongoDB 连接
func NewData(config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	db, err := database.New(&config.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := db.AutoMigrate(searchdata.Models()...); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to auto migrate: %w", err)
	}

	redisClient, err := redis.New(&config.Redis, log)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	var mongoClient *mongo.Client
	if config.MongoEnabled() {
		mongoClient, err = mongo.New(&config.Mongo, log)
		if err != nil {
			redisClient.Close()
			db.Close()
			return nil, nil, fmt.Errorf("failed to init mongo: %w", err)
		}
	}

	d := &Data{
		DB:          db,
		RedisClient: redisClient,
		MongoClient: mongoClient,
		Logger:      log,
	}

	cleanup := func() {
		log.Info("cleaning up data resources")

		if err := db.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
		redisClient.Close()

		if mongoClient != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			mongoClient.Close(ctx)
		}
	}

	return d, cleanup, nil
}

// HealthCheck 并发探测所有连接，任意一个失败即返回错误
func (d *Data) HealthCheck(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := d.DB.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := d.RedisClient.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	if d.MongoClient != nil {
		g.Go(func() error {
			if err := d.MongoClient.HealthCheck(ctx); err != nil {
				return fmt.Errorf("mongo: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}
