package workerpool

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("worker pool is closed")

// Config Worker Pool 配置
type Config struct {
	Workers        int           `mapstructure:"workers"`         // worker 数量
	ExpiryDuration time.Duration `mapstructure:"expiry_duration"` // 空闲 worker 回收间隔
	Nonblocking    bool          `mapstructure:"nonblocking"`     // 满载时直接拒绝而不是等待
	MaxBlocking    int           `mapstructure:"max_blocking"`    // 阻塞模式下最多等待的提交数，0 表示不限
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Workers:        32,
		ExpiryDuration: time.Minute,
		Nonblocking:    true,
	}
}

// Statistics 统计信息
type Statistics struct {
	Submitted int64
	Completed int64
	Rejected  int64
	Panicked  int64
}

// Pool 基于 ants 的 Worker Pool
type Pool struct {
	pool   *ants.Pool
	logger *zap.Logger

	submitted atomic.Int64
	completed atomic.Int64
	rejected  atomic.Int64
	panicked  atomic.Int64
}

// New 创建 Worker Pool
func New(config *Config, logger *zap.Logger) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Workers <= 0 {
		return nil, fmt.Errorf("workerpool: workers must be > 0, got %d", config.Workers)
	}

	p := &Pool{logger: logger}

	opts := []ants.Option{
		ants.WithNonblocking(config.Nonblocking),
		ants.WithMaxBlockingTasks(config.MaxBlocking),
		ants.WithPanicHandler(func(r interface{}) {
			p.panicked.Add(1)
			logger.Error("worker panic", zap.Any("error", r))
		}),
	}
	if config.ExpiryDuration > 0 {
		opts = append(opts, ants.WithExpiryDuration(config.ExpiryDuration))
	}

	antsPool, err := ants.NewPool(config.Workers, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ants pool: %w", err)
	}
	p.pool = antsPool
	return p, nil
}

// Submit 提交任务；池已关闭或满载（非阻塞模式）时返回错误
func (p *Pool) Submit(task func()) error {
	if p.pool.IsClosed() {
		return ErrPoolClosed
	}

	p.submitted.Add(1)
	err := p.pool.Submit(func() {
		defer p.completed.Add(1)
		task()
	})
	if err != nil {
		p.rejected.Add(1)
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrPoolClosed
		}
		return err
	}
	return nil
}

// Running 获取运行中的 worker 数量
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Stats 获取统计信息
func (p *Pool) Stats() Statistics {
	return Statistics{
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Rejected:  p.rejected.Load(),
		Panicked:  p.panicked.Load(),
	}
}

// Shutdown 等待运行中的任务结束后释放
func (p *Pool) Shutdown(timeout time.Duration) {
	if err := p.pool.ReleaseTimeout(timeout); err != nil {
		p.logger.Warn("worker pool release timed out", zap.Error(err))
	}
}
