package service

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/pagination"
	"github.com/lk2023060901/forum-search-backend/internal/search/types"
	"github.com/spf13/cast"
)

// ForumSearchBody POST /search/advanced 请求体
type ForumSearchBody struct {
	Query        string      `json:"query"`
	SearchIn     string      `json:"searchIn"`
	Page         interface{} `json:"page"`
	ItemsPerPage interface{} `json:"itemsPerPage"`
}

func (b *ForumSearchBody) filters(uid int64) types.SearchFilters {
	return types.SearchFilters{
		Query:        b.Query,
		SearchIn:     types.Scope(b.SearchIn),
		Page:         toInt(b.Page),
		ItemsPerPage: toInt(b.ItemsPerPage),
		UID:          uid,
	}
}

// CustomSearchBody POST /custom-search 请求体，数字字段兼容字符串
type CustomSearchBody struct {
	Query         string      `json:"query"`
	Table         string      `json:"table"`
	Column        string      `json:"column"`
	Limit         interface{} `json:"limit"`
	Offset        interface{} `json:"offset"`
	SortBy        string      `json:"sortBy"`
	SortDirection string      `json:"sortDirection"`
}

func (b *CustomSearchBody) raw() types.RawSearchRequest {
	return types.RawSearchRequest{
		Query:         b.Query,
		Table:         b.Table,
		Column:        b.Column,
		Limit:         toInt(b.Limit),
		Offset:        toInt(b.Offset),
		SortBy:        b.SortBy,
		SortDirection: b.SortDirection,
	}
}

// AdvancedSearchBody POST /custom-search/advanced 请求体
type AdvancedSearchBody struct {
	Queries       []string    `json:"queries"`
	Table         string      `json:"table"`
	Columns       []string    `json:"columns"`
	Limit         interface{} `json:"limit"`
	Offset        interface{} `json:"offset"`
	SortBy        string      `json:"sortBy"`
	SortDirection string      `json:"sortDirection"`
}

func (b *AdvancedSearchBody) request() types.AdvancedSearchRequest {
	return types.AdvancedSearchRequest{
		Queries:       b.Queries,
		Table:         b.Table,
		Columns:       b.Columns,
		Limit:         toInt(b.Limit),
		Offset:        toInt(b.Offset),
		SortBy:        b.SortBy,
		SortDirection: b.SortDirection,
	}
}

// CombinedResponse 合并搜索结果及分页信息
type CombinedResponse struct {
	*types.CombinedResult
	Pagination pagination.PageInfo `json:"pagination"`
}

// toInt 解析数字参数：字符串只按十进制读取前导数字，其他类型交给 cast
func toInt(v interface{}) int {
	s, ok := v.(string)
	if !ok {
		return cast.ToInt(v)
	}

	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// queryInt 按十进制读取查询参数
func queryInt(c *gin.Context, key string) int {
	return toInt(c.Query(key))
}
