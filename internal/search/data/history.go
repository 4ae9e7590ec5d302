package data

import (
	"context"
	"fmt"

	"github.com/lk2023060901/forum-search-backend/internal/pkg/redis"
	"github.com/lk2023060901/forum-search-backend/internal/search/biz"
)

// HistoryStore 基于 Redis 有序集合的搜索历史与热度存储
type HistoryStore struct {
	client *redis.Client
}

// NewHistoryStore 创建搜索历史存储
func NewHistoryStore(client *redis.Client) *HistoryStore {
	return &HistoryStore{client: client}
}

var _ biz.SortedSetStore = (*HistoryStore)(nil)

// GetSortedSetRange 按分数从小到大获取成员
func (s *HistoryStore) GetSortedSetRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return s.client.ZRange(ctx, key, start, stop)
}

// GetSortedSetRevRange 按分数从大到小获取成员及分数
func (s *HistoryStore) GetSortedSetRevRange(ctx context.Context, key string, start, stop int64) ([]biz.ScoredMember, error) {
	zs, err := s.client.ZRevRangeWithScores(ctx, key, start, stop)
	if err != nil {
		return nil, err
	}

	members := make([]biz.ScoredMember, len(zs))
	for i, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			member = fmt.Sprint(z.Member)
		}
		members[i] = biz.ScoredMember{Member: member, Score: z.Score}
	}
	return members, nil
}

// SortedSetIncrBy 成员分数自增
func (s *HistoryStore) SortedSetIncrBy(ctx context.Context, key string, increment float64, member string) (float64, error) {
	return s.client.ZIncrBy(ctx, key, increment, member)
}

// SortedSetAdd 添加或更新成员分数
func (s *HistoryStore) SortedSetAdd(ctx context.Context, key string, score float64, member string) error {
	_, err := s.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member})
	return err
}

// SortedSetRemoveRangeByRank 按排名删除成员
func (s *HistoryStore) SortedSetRemoveRangeByRank(ctx context.Context, key string, start, stop int64) error {
	_, err := s.client.ZRemRangeByRank(ctx, key, start, stop)
	return err
}

// Delete 删除键
func (s *HistoryStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.Del(ctx, key)
	return err
}
