package adapter

import (
	"context"

	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/search/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelationalAdapter searches SQL tables through gorm.
type RelationalAdapter struct {
	kind   string
	db     *gorm.DB
	logger *logger.Logger
}

// NewRelationalAdapter creates a RelationalAdapter for any gorm dialect
func NewRelationalAdapter(kind string, db *gorm.DB, log *logger.Logger) *RelationalAdapter {
	return &RelationalAdapter{kind: kind, db: db, logger: log}
}

func (a *RelationalAdapter) Kind() string {
	return a.kind
}

// Execute runs
//
//	SELECT * FROM "table" WHERE LOWER("column") LIKE LOWER(?) ORDER BY "sortBy" dir LIMIT ? OFFSET ?
//
// and the matching COUNT(*) concurrently.
func (a *RelationalAdapter) Execute(ctx context.Context, req *types.SearchRequest) (*types.SearchResult, error) {
	var (
		rows  []map[string]interface{}
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.matching(gctx, req).
			Order(clause.OrderByColumn{
				Column: clause.Column{Name: req.SortBy},
				Desc:   req.SortDirection == types.SortDesc,
			}).
			Limit(req.Limit).
			Offset(req.Offset).
			Find(&rows).Error
	})
	g.Go(func() error {
		return a.matching(gctx, req).Count(&total).Error
	})

	if err := g.Wait(); err != nil {
		a.logger.WithContext(ctx).Error("relational search failed",
			zap.String("table", req.Table),
			zap.String("column", req.Column),
			zap.Error(err),
		)
		return nil, types.NewBackendError(a.kind, err)
	}

	items := make([]types.Record, len(rows))
	for i, row := range rows {
		items[i] = row
	}

	return &types.SearchResult{
		Items:      items,
		TotalCount: total,
		HasMore:    hasMore(req.Offset, len(items), total),
	}, nil
}

func (a *RelationalAdapter) matching(ctx context.Context, req *types.SearchRequest) *gorm.DB {
	return a.db.WithContext(ctx).
		Table(req.Table).
		Where("LOWER(?) LIKE LOWER(?)", clause.Column{Name: req.Column}, "%"+req.Query+"%")
}
