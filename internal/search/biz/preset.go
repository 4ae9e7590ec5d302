package biz

import "github.com/lk2023060901/forum-search-backend/internal/search/types"

// Preset 命名搜索预设，固定表、列和排序
type Preset struct {
	Table         string              `json:"table"`
	Column        string              `json:"column"`
	SortBy        string              `json:"sortBy"`
	SortDirection types.SortDirection `json:"sortDirection"`
}

// Request 根据搜索值构造原始请求
func (p Preset) Request(value string, limit, offset int) types.RawSearchRequest {
	return types.RawSearchRequest{
		Query:         value,
		Table:         p.Table,
		Column:        p.Column,
		Limit:         limit,
		Offset:        offset,
		SortBy:        p.SortBy,
		SortDirection: string(p.SortDirection),
	}
}

const (
	PresetCompanies = "companies"
	PresetUsers     = "users"
	PresetPosts     = "posts"
)

// DefaultPresets 返回内置预设
func DefaultPresets() map[string]Preset {
	return map[string]Preset{
		PresetCompanies: {Table: "company_daily_stock_price", Column: "ticker", SortBy: "ticker", SortDirection: types.SortAsc},
		PresetUsers:     {Table: "objects", Column: "data", SortBy: "data", SortDirection: types.SortAsc},
		PresetPosts:     {Table: "objects", Column: "data", SortBy: "data", SortDirection: types.SortDesc},
	}
}
