// Package pagination derives page metadata from counts.
package pagination

// PageInfo describes where a page sits in a result set.
type PageInfo struct {
	CurrentPage int  `json:"currentPage"`
	PageCount   int  `json:"pageCount"`
	HasPrev     bool `json:"hasPrev"`
	HasNext     bool `json:"hasNext"`
}

// Paginate computes PageInfo. Callers must pass page >= 1 and limit >= 1.
func Paginate(page, totalCount, limit int) PageInfo {
	pageCount := (totalCount + limit - 1) / limit
	if pageCount < 1 {
		pageCount = 1
	}
	return PageInfo{
		CurrentPage: page,
		PageCount:   pageCount,
		HasPrev:     page > 1,
		HasNext:     page < pageCount,
	}
}

// FromOffset maps an offset/limit window to its 1-based page.
func FromOffset(offset, totalCount, limit int) PageInfo {
	return Paginate(offset/limit+1, totalCount, limit)
}

// Offset returns the row offset of a 1-based page.
func Offset(page, limit int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * limit
}
