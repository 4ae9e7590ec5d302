// Package adapter executes validated search requests against one backend engine.
package adapter

import (
	"context"

	"github.com/lk2023060901/forum-search-backend/internal/search/types"
)

// Engine kinds accepted by the factory.
const (
	KindPostgres = "postgres"
	KindMySQL    = "mysql"
	KindSQLite   = "sqlite"
	KindMongo    = "mongo"
)

// Adapter runs a pattern search plus a count under the same predicate.
type Adapter interface {
	// Execute fetches one page of matches and the total match count.
	// Driver failures come back as *types.BackendError.
	Execute(ctx context.Context, req *types.SearchRequest) (*types.SearchResult, error)

	// Kind returns the engine kind this adapter was built for.
	Kind() string
}

func hasMore(offset, fetched int, total int64) bool {
	return int64(offset+fetched) < total
}
