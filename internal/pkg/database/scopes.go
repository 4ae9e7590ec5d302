package database

import (
	"strings"

	"github.com/lk2023060901/forum-search-backend/internal/pkg/pagination"
	"gorm.io/gorm"
)

// Paginate applies LIMIT/OFFSET for a 1-based page
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if pageSize < 1 {
			pageSize = 10
		}
		return db.Offset(pagination.Offset(page, pageSize)).Limit(pageSize)
	}
}

// ContainsFold matches any of columns against a case-insensitive substring.
// Columns are trusted expressions such as "t.title".
func ContainsFold(query string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(columns) == 0 {
			return db
		}
		pattern := "%" + strings.ToLower(query) + "%"
		conds := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			conds[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = pattern
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}
