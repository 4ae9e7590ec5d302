package types

import "github.com/lk2023060901/forum-search-backend/internal/pkg/pagination"

// Scope selects which entity class a forum search targets.
type Scope string

const (
	ScopeTitles      Scope = "titles"
	ScopePosts       Scope = "posts"
	ScopeTitlesPosts Scope = "titlesposts"
	ScopeUsers       Scope = "users"
	ScopeCategories  Scope = "categories"
	ScopeTags        Scope = "tags"
	ScopeBookmarks   Scope = "bookmarks"
)

// Privilege names checked before a forum search.
const (
	PrivilegeSearchUsers   = "search:users"
	PrivilegeSearchContent = "search:content"
	PrivilegeSearchTags    = "search:tags"
)

// Privileges are the caller's search privilege flags.
type Privileges struct {
	SearchUsers   bool `json:"search:users"`
	SearchContent bool `json:"search:content"`
	SearchTags    bool `json:"search:tags"`
}

// SearchFilters is a normalized forum search.
type SearchFilters struct {
	Query        string `json:"query"`
	SearchIn     Scope  `json:"searchIn"`
	Page         int    `json:"page"`
	ItemsPerPage int    `json:"itemsPerPage"`
	UID          int64  `json:"uid"`
}

// Post is a row from the forum platform.
type Post struct {
	PID       int64
	TID       int64
	UID       int64
	Title     string
	Content   string
	Username  string
	Category  string
	Timestamp int64
}

// PostSearchResult is what the platform post searcher returns.
type PostSearchResult struct {
	Posts      []Post
	MatchCount int64
}

// PostView is the flat projection returned to callers.
type PostView struct {
	PID       int64  `json:"pid"`
	TID       int64  `json:"tid"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Username  string `json:"username"`
	Category  string `json:"category"`
	Timestamp int64  `json:"timestamp"`
	URL       string `json:"url"`
}

// ForumSearchResult is the data payload of a forum search.
type ForumSearchResult struct {
	Posts      []PostView    `json:"posts"`
	MatchCount int64         `json:"matchCount"`
	PageCount  int           `json:"pageCount"`
	SearchTime string        `json:"searchTime"`
	Filters    SearchFilters `json:"filters"`
}

// HistoryEntry is one remembered query of a user.
type HistoryEntry struct {
	UID       int64  `json:"uid"`
	Query     string `json:"query"`
	Timestamp int64  `json:"timestamp"` // epoch ms
}

// PopularSearch is a query and how often it was searched.
type PopularSearch struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// SuggestionSet is the search bar dropdown content.
type SuggestionSet struct {
	Recent  []string `json:"recent"`
	Popular []string `json:"popular"`
}

// SearchOptions describes what a caller may search.
type SearchOptions struct {
	Privileges Privileges `json:"privileges"`
	Scopes     []Scope    `json:"scopes"`
}

// PagedResponse wraps list results with page metadata.
type PagedResponse struct {
	*SearchResponse
	Pagination pagination.PageInfo `json:"pagination"`
}
