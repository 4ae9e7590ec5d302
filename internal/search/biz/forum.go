package biz

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/pagination"
	"github.com/lk2023060901/forum-search-backend/internal/search/types"
	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PrivilegeChecker 权限检查接口
type PrivilegeChecker interface {
	Can(ctx context.Context, privilege string, uid int64) (bool, error)
}

// PostSearcher 帖子搜索接口
type PostSearcher interface {
	Search(ctx context.Context, filters *types.SearchFilters) (*types.PostSearchResult, error)
}

// TaskSubmitter 后台任务提交接口，通常由协程池实现
type TaskSubmitter interface {
	Submit(task func()) error
}

// ForumConfig 论坛搜索用例配置
type ForumConfig struct {
	PrivilegeTimeout time.Duration
	SearchTimeout    time.Duration
	HistoryTimeout   time.Duration
}

// ForumSearchUseCase 论坛搜索用例
type ForumSearchUseCase struct {
	privileges PrivilegeChecker
	posts      PostSearcher
	store      SortedSetStore
	submitter  TaskSubmitter
	cfg        ForumConfig
	policy     *bluemonday.Policy
	logger     *logger.Logger
	now        func() time.Time
}

// NewForumSearchUseCase 创建论坛搜索用例
// submitter 为 nil 时同步记录搜索历史
func NewForumSearchUseCase(
	privileges PrivilegeChecker,
	posts PostSearcher,
	store SortedSetStore,
	submitter TaskSubmitter,
	cfg ForumConfig,
	log *logger.Logger,
) *ForumSearchUseCase {
	return &ForumSearchUseCase{
		privileges: privileges,
		posts:      posts,
		store:      store,
		submitter:  submitter,
		cfg:        cfg,
		policy:     bluemonday.StrictPolicy(),
		logger:     log,
		now:        time.Now,
	}
}

// Search 检查权限后执行帖子搜索并记录查询
func (uc *ForumSearchUseCase) Search(ctx context.Context, filters types.SearchFilters) (*types.ForumSearchResult, error) {
	filters = NormalizeFilters(filters)

	privs, err := uc.Privileges(ctx, filters.UID)
	if err != nil {
		return nil, err
	}

	scope, ok := Normalize(string(filters.SearchIn), filters.UID, privs)
	if !ok {
		return nil, fmt.Errorf("%w: scope %q", types.ErrInsufficientPrivileges, scope)
	}
	filters.SearchIn = scope

	searchCtx, cancel := withTimeout(ctx, uc.cfg.SearchTimeout)
	defer cancel()

	start := uc.now()
	res, err := uc.posts.Search(searchCtx, &filters)
	elapsed := uc.now().Sub(start)
	if err != nil {
		return nil, fmt.Errorf("post search failed: %w", err)
	}

	if filters.Query != "" {
		uc.recordInBackground(ctx, filters.Query, filters.UID)
	}

	return &types.ForumSearchResult{
		Posts:      uc.ProjectPosts(res.Posts),
		MatchCount: res.MatchCount,
		PageCount:  pagination.Paginate(filters.Page, int(res.MatchCount), filters.ItemsPerPage).PageCount,
		SearchTime: types.FormatElapsed(elapsed),
		Filters:    filters,
	}, nil
}

// AdvancedSearch 处理来自请求体的过滤条件，行为同 Search
func (uc *ForumSearchUseCase) AdvancedSearch(ctx context.Context, filters types.SearchFilters) (*types.ForumSearchResult, error) {
	return uc.Search(ctx, filters)
}

// Privileges 并发获取用户的三项搜索权限
func (uc *ForumSearchUseCase) Privileges(ctx context.Context, uid int64) (types.Privileges, error) {
	var privs types.Privileges

	ctx, cancel := withTimeout(ctx, uc.cfg.PrivilegeTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	check := func(name string, dst *bool) {
		g.Go(func() error {
			ok, err := uc.privileges.Can(gctx, name, uid)
			if err != nil {
				return fmt.Errorf("failed to check privilege %s: %w", name, err)
			}
			*dst = ok
			return nil
		})
	}
	check(types.PrivilegeSearchUsers, &privs.SearchUsers)
	check(types.PrivilegeSearchContent, &privs.SearchContent)
	check(types.PrivilegeSearchTags, &privs.SearchTags)

	if err := g.Wait(); err != nil {
		return types.Privileges{}, err
	}
	return privs, nil
}

// Options 返回调用者的权限及可搜索范围
func (uc *ForumSearchUseCase) Options(ctx context.Context, uid int64) (*types.SearchOptions, error) {
	privs, err := uc.Privileges(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &types.SearchOptions{Privileges: privs, Scopes: AllowedScopes(uid, privs)}, nil
}

// ProjectPosts 按帖子去重，并展平为去除标记的视图
func (uc *ForumSearchUseCase) ProjectPosts(posts []types.Post) []types.PostView {
	unique := lo.UniqBy(posts, func(p types.Post) string {
		if p.PID > 0 {
			return fmt.Sprintf("p%d", p.PID)
		}
		return fmt.Sprintf("t%d", p.TID)
	})

	views := make([]types.PostView, 0, len(unique))
	for _, p := range unique {
		views = append(views, types.PostView{
			PID:       p.PID,
			TID:       p.TID,
			Title:     p.Title,
			Content:   uc.stripMarkup(p.Content),
			Username:  p.Username,
			Category:  p.Category,
			Timestamp: p.Timestamp,
			URL:       postURL(p),
		})
	}
	return views
}

func (uc *ForumSearchUseCase) stripMarkup(s string) string {
	return strings.TrimSpace(html.UnescapeString(uc.policy.Sanitize(s)))
}

func postURL(p types.Post) string {
	if p.PID > 0 {
		return fmt.Sprintf("/post/%d", p.PID)
	}
	return fmt.Sprintf("/topic/%d", p.TID)
}

// RecordSearch 累加全站和当日计数，并写入用户搜索历史
// 两个字符及以下的查询不记录
func (uc *ForumSearchUseCase) RecordSearch(ctx context.Context, query string, uid int64) error {
	q := NormalizeHistoryQuery(query)
	if utf8.RuneCountInString(q) < minRecordedQuery {
		return nil
	}

	ctx, cancel := withTimeout(ctx, uc.cfg.HistoryTimeout)
	defer cancel()

	now := uc.now()
	if _, err := uc.store.SortedSetIncrBy(ctx, KeyAllSearches, 1, q); err != nil {
		return fmt.Errorf("failed to bump search counter: %w", err)
	}
	if _, err := uc.store.SortedSetIncrBy(ctx, DayKey(now), 1, q); err != nil {
		return fmt.Errorf("failed to bump daily search counter: %w", err)
	}

	if uid <= 0 {
		return nil
	}

	key := UserHistoryKey(uid)
	if err := uc.store.SortedSetAdd(ctx, key, float64(now.UnixMilli()), q); err != nil {
		return fmt.Errorf("failed to append search history: %w", err)
	}
	if err := uc.store.SortedSetRemoveRangeByRank(ctx, key, 0, -(historyCap + 1)); err != nil {
		return fmt.Errorf("failed to trim search history: %w", err)
	}
	return nil
}

// recordInBackground 记录查询，失败或耗时都不影响搜索
func (uc *ForumSearchUseCase) recordInBackground(ctx context.Context, query string, uid int64) {
	bg := context.WithoutCancel(ctx)
	task := func() {
		if err := uc.RecordSearch(bg, query, uid); err != nil {
			uc.logger.WithContext(bg).Warn("failed to record search", zap.Int64("uid", uid), zap.Error(err))
		}
	}

	if uc.submitter == nil {
		task()
		return
	}
	if err := uc.submitter.Submit(task); err != nil {
		uc.logger.WithContext(ctx).Warn("search history task dropped", zap.Error(err))
	}
}

// GetSearchHistory 按时间倒序返回用户搜索历史，游客没有历史
func (uc *ForumSearchUseCase) GetSearchHistory(ctx context.Context, uid int64, limit int) ([]types.HistoryEntry, error) {
	if uid <= 0 {
		return []types.HistoryEntry{}, nil
	}

	ctx, cancel := withTimeout(ctx, uc.cfg.HistoryTimeout)
	defer cancel()

	members, err := uc.store.GetSortedSetRevRange(ctx, UserHistoryKey(uid), 0, int64(ClampHistoryLimit(limit)-1))
	if err != nil {
		return nil, fmt.Errorf("failed to load search history: %w", err)
	}

	return lo.Map(members, func(m ScoredMember, _ int) types.HistoryEntry {
		return types.HistoryEntry{UID: uid, Query: m.Member, Timestamp: int64(m.Score)}
	}), nil
}

// ClearSearchHistory 清空用户搜索历史，游客不做处理
func (uc *ForumSearchUseCase) ClearSearchHistory(ctx context.Context, uid int64) error {
	if uid <= 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx, uc.cfg.HistoryTimeout)
	defer cancel()

	if err := uc.store.Delete(ctx, UserHistoryKey(uid)); err != nil {
		return fmt.Errorf("failed to clear search history: %w", err)
	}
	return nil
}

// PopularSearches 返回历史搜索次数最多的查询
func (uc *ForumSearchUseCase) PopularSearches(ctx context.Context, limit int) ([]types.PopularSearch, error) {
	ctx, cancel := withTimeout(ctx, uc.cfg.HistoryTimeout)
	defer cancel()

	members, err := uc.store.GetSortedSetRevRange(ctx, KeyAllSearches, 0, int64(ClampHistoryLimit(limit)-1))
	if err != nil {
		return nil, fmt.Errorf("failed to load popular searches: %w", err)
	}

	return lo.Map(members, func(m ScoredMember, _ int) types.PopularSearch {
		return types.PopularSearch{Query: m.Member, Count: int64(m.Score)}
	}), nil
}

// Suggestions 根据用户历史和全站计数生成搜索框下拉建议
// 存储出错时记录日志，对应列表留空
func (uc *ForumSearchUseCase) Suggestions(ctx context.Context, query string, uid int64) *types.SuggestionSet {
	set := &types.SuggestionSet{Recent: []string{}, Popular: []string{}}

	q := NormalizeHistoryQuery(query)
	if utf8.RuneCountInString(q) < minSuggestionQuery {
		return set
	}

	ctx, cancel := withTimeout(ctx, uc.cfg.HistoryTimeout)
	defer cancel()

	log := uc.logger.WithContext(ctx)

	if uid > 0 {
		recent, err := uc.store.GetSortedSetRevRange(ctx, UserHistoryKey(uid), 0, recentScanSize-1)
		if err != nil {
			log.Warn("failed to load recent searches", zap.Error(err))
		} else {
			set.Recent = pickMembers(recent, func(m string) bool { return strings.Contains(m, q) })
		}
	}

	popular, err := uc.store.GetSortedSetRevRange(ctx, KeyAllSearches, 0, popularScanSize-1)
	if err != nil {
		log.Warn("failed to load popular searches", zap.Error(err))
	} else {
		set.Popular = pickMembers(popular, func(m string) bool { return strings.HasPrefix(m, q) })
	}

	return set
}

func pickMembers(members []ScoredMember, keep func(string) bool) []string {
	out := make([]string, 0, maxSuggestions)
	for _, m := range members {
		if len(out) == maxSuggestions {
			break
		}
		if keep(m.Member) {
			out = append(out, m.Member)
		}
	}
	return out
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
