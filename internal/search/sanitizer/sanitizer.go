// Package sanitizer turns untrusted search input into a SearchRequest.
//
// The identifier check is the only thing standing between caller input and
// generated SQL or collection names. Table, column and sort column must each
// match IdentifierPattern; nothing is repaired.
package sanitizer

import (
	"regexp"
	"strings"

	"github.com/lk2023060901/forum-search-backend/internal/search/types"
)

const (
	MinLimit      = 1
	MaxLimit      = 100
	DefaultLimit  = 20
	DefaultSortBy = "id"
)

// IdentifierPattern matches table and column names.
var IdentifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Ampersands are left alone so escaping twice is a no-op.
var htmlEscaper = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// Escape neutralizes markup characters and trims surrounding space.
func Escape(s string) string {
	return strings.TrimSpace(htmlEscaper.Replace(s))
}

// IsIdentifier reports whether s is a safe table or column name.
func IsIdentifier(s string) bool {
	return IdentifierPattern.MatchString(s)
}

// ClampLimit forces limit into [MinLimit, MaxLimit].
func ClampLimit(limit int) int {
	switch {
	case limit < MinLimit:
		return MinLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Validate checks and normalizes raw. It never touches a backend.
func Validate(raw types.RawSearchRequest) (*types.SearchRequest, error) {
	query := Escape(raw.Query)
	table := Escape(raw.Table)
	column := Escape(raw.Column)
	sortBy := Escape(raw.SortBy)

	if query == "" {
		return nil, types.MissingField("query", "search query is required")
	}
	if table == "" {
		return nil, types.MissingField("table", "table name is required")
	}
	if column == "" {
		return nil, types.MissingField("column", "column name is required")
	}

	if !IsIdentifier(table) {
		return nil, types.InvalidIdentifier("table", "invalid table name")
	}
	if !IsIdentifier(column) {
		return nil, types.InvalidIdentifier("column", "invalid column name")
	}
	if sortBy == "" {
		sortBy = DefaultSortBy
	}
	if !IsIdentifier(sortBy) {
		return nil, types.InvalidIdentifier("sortBy", "invalid sort column name")
	}

	offset := raw.Offset
	if offset < 0 {
		offset = 0
	}

	direction := types.SortAsc
	if strings.EqualFold(strings.TrimSpace(raw.SortDirection), string(types.SortDesc)) {
		direction = types.SortDesc
	}

	return &types.SearchRequest{
		Query:         query,
		Table:         table,
		Column:        column,
		Limit:         ClampLimit(raw.Limit),
		Offset:        offset,
		SortBy:        sortBy,
		SortDirection: direction,
	}, nil
}
