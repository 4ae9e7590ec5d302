package types

import (
	"strconv"
	"time"
)

// SortDirection is the ORDER BY direction of a search.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Record is one opaque row returned by a backend.
type Record = map[string]interface{}

// RawSearchRequest is unvalidated caller input.
type RawSearchRequest struct {
	Query         string `json:"query"`
	Table         string `json:"table"`
	Column        string `json:"column"`
	Limit         int    `json:"limit"`
	Offset        int    `json:"offset"`
	SortBy        string `json:"sortBy"`
	SortDirection string `json:"sortDirection"`
}

// SearchRequest is a validated request. Table, Column and SortBy are safe identifiers.
type SearchRequest struct {
	Query         string
	Table         string
	Column        string
	Limit         int
	Offset        int
	SortBy        string
	SortDirection SortDirection
}

// SearchResult is what a backend adapter returns.
type SearchResult struct {
	Items      []Record
	TotalCount int64
	HasMore    bool
}

// SearchResponse is a SearchResult shaped for callers.
type SearchResponse struct {
	Results    []Record `json:"results"`
	TotalCount int64    `json:"totalCount"`
	HasMore    bool     `json:"hasMore"`
	SearchTime string   `json:"searchTime"`
	Query      string   `json:"query"`
	Table      string   `json:"table"`
	Column     string   `json:"column"`
}

// SuggestionRequest asks for autocomplete values of one column.
type SuggestionRequest struct {
	Query  string `json:"query"`
	Table  string `json:"table"`
	Column string `json:"column"`
	Limit  int    `json:"limit"`
}

// AdvancedSearchRequest fans several queries out over one table.
type AdvancedSearchRequest struct {
	Queries       []string `json:"queries"`
	Table         string   `json:"table"`
	Columns       []string `json:"columns"`
	Limit         int      `json:"limit"`
	Offset        int      `json:"offset"`
	SortBy        string   `json:"sortBy"`
	SortDirection string   `json:"sortDirection"`
}

// CombinedResult merges the sub-results of an AdvancedSearchRequest.
// TotalCount is the sum of the sub-counts and can exceed the number of distinct rows.
type CombinedResult struct {
	Results    []Record `json:"results"`
	TotalCount int64    `json:"totalCount"`
	HasMore    bool     `json:"hasMore"`
	SearchTime string   `json:"searchTime"`
	Queries    []string `json:"queries"`
	Table      string   `json:"table"`
	Columns    []string `json:"columns"`
}

// FormatElapsed renders a duration as seconds with two decimals.
func FormatElapsed(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 2, 64)
}
