package biz

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// KeyAllSearches 全站搜索计数
	KeyAllSearches = "searches:all"

	historyCap          = 100
	maxHistoryQuery     = 255
	minRecordedQuery    = 3
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
	recentScanSize      = 50
	popularScanSize     = 100
	maxSuggestions      = 5
)

// ScoredMember 有序集合成员及其分数
type ScoredMember struct {
	Member string
	Score  float64
}

// SortedSetStore 保存搜索历史和计数的键值存储
type SortedSetStore interface {
	SortedSetIncrBy(ctx context.Context, key string, increment float64, member string) (float64, error)
	SortedSetAdd(ctx context.Context, key string, score float64, member string) error
	SortedSetRemoveRangeByRank(ctx context.Context, key string, start, stop int64) error
	GetSortedSetRevRange(ctx context.Context, key string, start, stop int64) ([]ScoredMember, error)
	Delete(ctx context.Context, key string) error
}

// DayKey 返回 t 所在日期的计数键，以本地零点的毫秒时间戳区分
func DayKey(t time.Time) string {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return "searches:" + strconv.FormatInt(midnight.UnixMilli(), 10)
}

// UserHistoryKey 返回用户历史键
func UserHistoryKey(uid int64) string {
	return fmt.Sprintf("user:%d:searches", uid)
}

// NormalizeHistoryQuery 去除首尾空白、转小写并截断到 255 个字符
func NormalizeHistoryQuery(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	if utf8.RuneCountInString(q) > maxHistoryQuery {
		q = string([]rune(q)[:maxHistoryQuery])
	}
	return q
}

// ClampHistoryLimit 未指定时默认 10，最大 50
func ClampHistoryLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	return min(limit, maxHistoryLimit)
}
