package data

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/redis"
	"github.com/lk2023060901/forum-search-backend/internal/search/biz"
	"github.com/lk2023060901/forum-search-backend/internal/search/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHistoryStore(t *testing.T) (*HistoryStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := redis.DefaultConfig()
	cfg.Addr = mr.Addr()
	client, err := redis.New(cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewHistoryStore(client), mr
}

func TestHistoryStore_SortedSets(t *testing.T) {
	store, mr := setupHistoryStore(t)
	ctx := context.Background()

	score, err := store.SortedSetIncrBy(ctx, "searches:all", 1, "golang")
	require.NoError(t, err)
	assert.Equal(t, float64(1), score)
	_, err = store.SortedSetIncrBy(ctx, "searches:all", 2, "golang")
	require.NoError(t, err)
	_, err = store.SortedSetIncrBy(ctx, "searches:all", 1, "rust")
	require.NoError(t, err)

	got, err := mr.ZScore("searches:all", "golang")
	require.NoError(t, err)
	assert.Equal(t, float64(3), got)

	members, err := store.GetSortedSetRange(ctx, "searches:all", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"rust", "golang"}, members)

	rev, err := store.GetSortedSetRevRange(ctx, "searches:all", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []biz.ScoredMember{{Member: "golang", Score: 3}}, rev)

	for i, q := range []string{"a1", "a2", "a3", "a4"} {
		require.NoError(t, store.SortedSetAdd(ctx, "user:1:searches", float64(i), q))
	}
	require.NoError(t, store.SortedSetRemoveRangeByRank(ctx, "user:1:searches", 0, -3))
	members, err = store.GetSortedSetRange(ctx, "user:1:searches", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a3", "a4"}, members)

	require.NoError(t, store.Delete(ctx, "user:1:searches"))
	assert.False(t, mr.Exists("user:1:searches"))
}

func TestHistoryStore_WithForumSearch(t *testing.T) {
	store, mr := setupHistoryStore(t)
	db := setupForumDB(t)
	seedForum(t, db)

	uc := biz.NewForumSearchUseCase(
		NewPrivilegeRepo(db, nil),
		NewPostRepo(db),
		store,
		nil,
		biz.ForumConfig{HistoryTimeout: time.Second},
		logger.NewNop(),
	)
	ctx := context.Background()

	res, err := uc.Search(ctx, types.SearchFilters{Query: "Golang", SearchIn: types.ScopeTitlesPosts, UID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.MatchCount)
	assert.Equal(t, "Where do I start with Go?", res.Posts[1].Content)

	score, err := mr.ZScore(biz.KeyAllSearches, "golang")
	require.NoError(t, err)
	assert.Equal(t, float64(1), score)

	history, err := uc.GetSearchHistory(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "golang", history[0].Query)

	require.NoError(t, uc.ClearSearchHistory(ctx, 1))
	assert.False(t, mr.Exists(biz.UserHistoryKey(1)))

	mr.Close()
	_, err = uc.Search(ctx, types.SearchFilters{Query: "release", UID: 1})
	assert.NoError(t, err, "a dead history store does not fail the search")
	t.Logf("✓ forum search ran against sqlite and miniredis")
}
