package biz

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/search/adapter"
	"github.com/lk2023060901/forum-search-backend/internal/search/sanitizer"
	"github.com/lk2023060901/forum-search-backend/internal/search/types"
	"go.uber.org/zap"
)

const (
	minSuggestionQuery     = 2
	defaultSuggestionLimit = 5
	maxSuggestionLimit     = 10
)

// SearchConfig 搜索用例配置
type SearchConfig struct {
	QueryTimeout time.Duration
	Presets      map[string]Preset
}

// SearchUseCase 搜索用例，校验请求后交给配置的后端执行
type SearchUseCase struct {
	adapter adapter.Adapter
	presets map[string]Preset
	timeout time.Duration
	logger  *logger.Logger
	now     func() time.Time
}

// NewSearchUseCase 创建搜索用例
func NewSearchUseCase(a adapter.Adapter, cfg SearchConfig, log *logger.Logger) *SearchUseCase {
	presets := DefaultPresets()
	for alias, p := range cfg.Presets {
		presets[alias] = p
	}
	return &SearchUseCase{
		adapter: a,
		presets: presets,
		timeout: cfg.QueryTimeout,
		logger:  log,
		now:     time.Now,
	}
}

// Search 校验并执行搜索，SearchTime 只统计后端调用耗时
func (uc *SearchUseCase) Search(ctx context.Context, raw types.RawSearchRequest) (*types.SearchResponse, error) {
	req, err := sanitizer.Validate(raw)
	if err != nil {
		return nil, err
	}

	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	start := uc.now()
	res, err := uc.adapter.Execute(ctx, req)
	elapsed := uc.now().Sub(start)
	if err != nil {
		return nil, err
	}

	items := res.Items
	if items == nil {
		items = []types.Record{}
	}

	return &types.SearchResponse{
		Results:    items,
		TotalCount: res.TotalCount,
		HasMore:    res.HasMore,
		SearchTime: types.FormatElapsed(elapsed),
		Query:      req.Query,
		Table:      req.Table,
		Column:     req.Column,
	}, nil
}

// SearchByField 执行预设搜索，limit 为 0 时使用默认分页大小
func (uc *SearchUseCase) SearchByField(ctx context.Context, alias, value string, limit, offset int) (*types.SearchResponse, error) {
	preset, ok := uc.presets[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownPreset, alias)
	}
	if limit == 0 {
		limit = sanitizer.DefaultLimit
	}
	return uc.Search(ctx, preset.Request(value, limit, offset))
}

// Presets 返回已注册的预设别名及定义
func (uc *SearchUseCase) Presets() map[string]Preset {
	out := make(map[string]Preset, len(uc.presets))
	for k, v := range uc.presets {
		out[k] = v
	}
	return out
}

// TrySuggestions 返回单列的自动补全值，出错时返回错误
func (uc *SearchUseCase) TrySuggestions(ctx context.Context, req types.SuggestionRequest) ([]interface{}, error) {
	query := strings.TrimSpace(req.Query)
	if utf8.RuneCountInString(query) < minSuggestionQuery {
		return []interface{}{}, nil
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}
	limit = min(limit, maxSuggestionLimit)

	res, err := uc.Search(ctx, types.RawSearchRequest{
		Query:         query,
		Table:         req.Table,
		Column:        req.Column,
		Limit:         limit,
		SortBy:        req.Column,
		SortDirection: string(types.SortAsc),
	})
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, 0, len(res.Results))
	for _, row := range res.Results {
		if v, ok := row[res.Column]; ok && v != nil {
			values = append(values, v)
		} else {
			values = append(values, row)
		}
	}
	return values, nil
}

// GetSuggestions 同 TrySuggestions，出错时记录日志并返回空切片
func (uc *SearchUseCase) GetSuggestions(ctx context.Context, req types.SuggestionRequest) []interface{} {
	values, err := uc.TrySuggestions(ctx, req)
	if err != nil {
		uc.logger.WithContext(ctx).Warn("suggestion lookup failed",
			zap.String("table", req.Table),
			zap.String("column", req.Column),
			zap.Error(err),
		)
		return []interface{}{}
	}
	return values
}
