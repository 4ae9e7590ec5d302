package biz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lk2023060901/forum-search-backend/internal/search/types"
	"golang.org/x/sync/errgroup"
)

// AdvancedSearch 并发执行每个查询并合并结果
//
// 第 i 个查询搜索 Columns[i]，列数不足时使用 Columns[0]。
// limit 按 ceil(limit/n) 分摊，offset 按 floor(offset/n) 分摊。
// 任一子查询失败则整体失败。
func (uc *SearchUseCase) AdvancedSearch(ctx context.Context, req types.AdvancedSearchRequest) (*types.CombinedResult, error) {
	if len(req.Queries) == 0 {
		return nil, types.MissingField("queries", "search queries are required")
	}
	if len(req.Columns) == 0 {
		return nil, types.MissingField("columns", "search columns are required")
	}
	if strings.TrimSpace(req.Table) == "" {
		return nil, types.MissingField("table", "table name is required")
	}

	n := len(req.Queries)
	limit := (req.Limit + n - 1) / n
	offset := req.Offset / n

	results := make([]*types.SearchResponse, n)
	g, gctx := errgroup.WithContext(ctx)
	for i, query := range req.Queries {
		i, query := i, query
		column := req.Columns[0]
		if i < len(req.Columns) {
			column = req.Columns[i]
		}
		g.Go(func() error {
			res, err := uc.Search(gctx, types.RawSearchRequest{
				Query:         query,
				Table:         req.Table,
				Column:        column,
				Limit:         limit,
				Offset:        offset,
				SortBy:        req.SortBy,
				SortDirection: req.SortDirection,
			})
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return combine(results, req), nil
}

// combine 合并各子结果的行，去掉结构完全相同的重复行
// TotalCount 为各子计数之和
func combine(results []*types.SearchResponse, req types.AdvancedSearchRequest) *types.CombinedResult {
	var (
		merged = make([]types.Record, 0)
		seen   = make(map[string]struct{})
		total  int64
	)
	for _, res := range results {
		total += res.TotalCount
		for _, item := range res.Results {
			key := contentKey(item)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, item)
		}
	}

	combined := &types.CombinedResult{
		Results:    merged,
		TotalCount: total,
		HasMore:    int64(len(merged)) < total,
		Queries:    req.Queries,
		Table:      req.Table,
		Columns:    req.Columns,
	}
	if len(results) > 0 {
		combined.SearchTime = results[0].SearchTime
	}
	return combined
}

// contentKey 返回行的规范 JSON，encoding/json 会对 map 键排序
func contentKey(item types.Record) string {
	b, err := json.Marshal(item)
	if err != nil {
		return fmt.Sprintf("%#v", item)
	}
	return string(b)
}
