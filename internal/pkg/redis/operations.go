package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Z 有序集合成员
type Z = redis.Z

// ==================== Key Operations ====================

// Del 删除键
func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	n, err := c.rdb.Del(ctx, keys...).Result()
	if err != nil {
		c.logger.Error("redis del failed",
			zap.Strings("keys", keys),
			zap.Error(err),
		)
	}
	return n, err
}

// Eval 执行 Lua 脚本
func (c *Client) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	result, err := c.rdb.Eval(ctx, script, keys, args...).Result()
	if err != nil && !IsNil(err) {
		c.logger.Error("redis eval failed",
			zap.Strings("keys", keys),
			zap.Error(err),
		)
	}
	return result, err
}

// ==================== Sorted Set Operations ====================

// ZAdd 添加有序集合成员
func (c *Client) ZAdd(ctx context.Context, key string, members ...redis.Z) (int64, error) {
	n, err := c.rdb.ZAdd(ctx, key, members...).Result()
	if err != nil {
		c.logger.Error("redis zadd failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
	return n, err
}

// ZIncrBy 有序集合成员分数自增
func (c *Client) ZIncrBy(ctx context.Context, key string, increment float64, member string) (float64, error) {
	score, err := c.rdb.ZIncrBy(ctx, key, increment, member).Result()
	if err != nil {
		c.logger.Error("redis zincrby failed",
			zap.String("key", key),
			zap.String("member", member),
			zap.Float64("increment", increment),
			zap.Error(err),
		)
	}
	return score, err
}

// ZRemRangeByRank 按排名删除有序集合成员（从小到大）
func (c *Client) ZRemRangeByRank(ctx context.Context, key string, start, stop int64) (int64, error) {
	n, err := c.rdb.ZRemRangeByRank(ctx, key, start, stop).Result()
	if err != nil {
		c.logger.Error("redis zremrangebyrank failed",
			zap.String("key", key),
			zap.Int64("start", start),
			zap.Int64("stop", stop),
			zap.Error(err),
		)
	}
	return n, err
}

// ZRange 获取有序集合范围内的成员（按分数从小到大）
func (c *Client) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	members, err := c.rdb.ZRange(ctx, key, start, stop).Result()
	if err != nil {
		c.logger.Error("redis zrange failed",
			zap.String("key", key),
			zap.Int64("start", start),
			zap.Int64("stop", stop),
			zap.Error(err),
		)
	}
	return members, err
}

// ZRevRangeWithScores 获取有序集合范围内的成员及分数（按分数从大到小）
func (c *Client) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]redis.Z, error) {
	members, err := c.rdb.ZRevRangeWithScores(ctx, key, start, stop).Result()
	if err != nil {
		c.logger.Error("redis zrevrange with scores failed",
			zap.String("key", key),
			zap.Int64("start", start),
			zap.Int64("stop", stop),
			zap.Error(err),
		)
	}
	return members, err
}
