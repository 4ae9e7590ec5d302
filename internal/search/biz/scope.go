package biz

import (
	"strings"

	"github.com/lk2023060901/forum-search-backend/internal/search/types"
	"github.com/samber/lo"
)

const (
	defaultItemsPerPage = 10
	maxItemsPerPage     = 100
)

// ValidScopes 按展示顺序列出所有搜索范围
var ValidScopes = []types.Scope{
	types.ScopeTitles,
	types.ScopePosts,
	types.ScopeTitlesPosts,
	types.ScopeUsers,
	types.ScopeCategories,
	types.ScopeTags,
	types.ScopeBookmarks,
}

var guestScopes = []types.Scope{
	types.ScopeTitles,
	types.ScopePosts,
	types.ScopeTitlesPosts,
	types.ScopeBookmarks,
	types.ScopeCategories,
}

// NormalizeScope 未知范围按 titlesposts 处理
func NormalizeScope(searchIn string) types.Scope {
	scope := types.Scope(searchIn)
	if lo.Contains(ValidScopes, scope) {
		return scope
	}
	return types.ScopeTitlesPosts
}

// Normalize 返回实际搜索范围以及用户是否有权搜索
func Normalize(searchIn string, uid int64, privs types.Privileges) (types.Scope, bool) {
	scope := NormalizeScope(searchIn)
	return scope, Allowed(scope, uid, privs)
}

// Allowed 判断用户能否搜索该范围，游客（uid <= 0）使用固定白名单
func Allowed(scope types.Scope, uid int64, privs types.Privileges) bool {
	if uid <= 0 {
		return lo.Contains(guestScopes, scope)
	}
	switch scope {
	case types.ScopeUsers:
		return privs.SearchUsers
	case types.ScopeTags:
		return privs.SearchTags
	default:
		return true
	}
}

// AllowedScopes 返回用户可搜索的范围
func AllowedScopes(uid int64, privs types.Privileges) []types.Scope {
	return lo.Filter(ValidScopes, func(s types.Scope, _ int) bool {
		return Allowed(s, uid, privs)
	})
}

// NormalizeFilters 去除查询首尾空白并填充分页默认值
func NormalizeFilters(f types.SearchFilters) types.SearchFilters {
	f.Query = strings.TrimSpace(f.Query)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.ItemsPerPage < 1 {
		f.ItemsPerPage = defaultItemsPerPage
	}
	f.ItemsPerPage = min(f.ItemsPerPage, maxItemsPerPage)
	if f.UID < 0 {
		f.UID = 0
	}
	return f
}
