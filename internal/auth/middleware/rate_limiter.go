package middleware

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/lk2023060901/forum-search-backend/internal/pkg/errors"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/redis"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/response"
	"go.uber.org/zap"
)

const (
	StrategyIP       = "ip"
	StrategyUser     = "user"
	StrategyEndpoint = "endpoint"
)

// RateLimiterConfig 限流配置
type RateLimiterConfig struct {
	// 时间窗口内允许的最大请求数
	MaxRequests int `mapstructure:"max_requests"`
	// 时间窗口（秒）
	WindowSeconds int `mapstructure:"window_seconds"`
	// 限流策略：user, endpoint, ip（默认）
	Strategy string `mapstructure:"strategy"`
}

// slidingWindowScript 原子性滑动窗口限流，分数为毫秒时间戳
const slidingWindowScript = `
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local member = ARGV[4]

	redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

	local current = redis.call('ZCARD', key)
	if current < limit then
		redis.call('ZADD', key, now, member)
		redis.call('PEXPIRE', key, window)
		return {1, limit - current - 1, now + window}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')[2]
	return {0, 0, tonumber(oldest) + window}
`

// RateLimiter 基于 Redis 的滑动窗口限流中间件
func RateLimiter(redisClient *redis.Client, cfg RateLimiterConfig, log *logger.Logger) gin.HandlerFunc {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 100
	}
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = 60
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyIP
	}

	return func(c *gin.Context) {
		key := buildRateLimitKey(c, cfg.Strategy)

		allowed, remaining, resetAt, err := checkRateLimit(c.Request.Context(), redisClient, key, cfg)
		if err != nil {
			log.Error("rate limiter error", zap.Error(err), zap.String("key", key))
			// 限流器故障时，降级允许请求通过
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", resetAt/1000))

		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", cfg.WindowSeconds))
			response429(c, cfg.WindowSeconds)
			return
		}

		c.Next()
	}
}

func response429(c *gin.Context, window int) {
	c.AbortWithStatusJSON(apperrors.GetHTTPStatus(apperrors.ErrTooManyRequests), response.Response{
		Success: false,
		Error:   "rate limit exceeded",
		Message: fmt.Sprintf("too many requests, please try again in %d seconds", window),
	})
}

// buildRateLimitKey 构建限流 key
func buildRateLimitKey(c *gin.Context, strategy string) string {
	prefix := "rate_limit"

	switch strategy {
	case StrategyUser:
		// 基于用户 ID 限流（需要先经过认证中间件），游客回退到 IP
		if uid := GetUID(c); uid > 0 {
			return fmt.Sprintf("%s:user:%d", prefix, uid)
		}
		return fmt.Sprintf("%s:ip:%s", prefix, clientIP(c))

	case StrategyEndpoint:
		return fmt.Sprintf("%s:endpoint:%s:%s", prefix, c.FullPath(), clientIP(c))

	default:
		return fmt.Sprintf("%s:ip:%s", prefix, clientIP(c))
	}
}

// clientIP 去掉 IPv6 zone 后的客户端地址，无法解析时归入同一个桶
func clientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if idx := strings.IndexByte(ip, '%'); idx != -1 {
		ip = ip[:idx]
	}
	if net.ParseIP(ip) == nil {
		return "unknown"
	}
	return ip
}

// checkRateLimit 使用 Redis 滑动窗口算法检查限流
func checkRateLimit(ctx context.Context, redisClient *redis.Client, key string, cfg RateLimiterConfig) (allowed bool, remaining int, resetAt int64, err error) {
	now := time.Now().UnixMilli()
	window := int64(cfg.WindowSeconds) * 1000

	// 每次请求使用唯一成员，避免同一毫秒内的请求被合并
	result, err := redisClient.Eval(ctx, slidingWindowScript, []string{key}, now, window, cfg.MaxRequests, uuid.NewString())
	if err != nil {
		return false, 0, 0, err
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 3 {
		return false, 0, 0, fmt.Errorf("invalid rate limit result: %v", result)
	}

	allowedInt, _ := values[0].(int64)
	remainingInt, _ := values[1].(int64)
	resetInt, _ := values[2].(int64)

	return allowedInt == 1, int(remainingInt), resetInt, nil
}
