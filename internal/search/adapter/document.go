package adapter

import (
	"context"
	"regexp"

	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/search/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DocumentCollection is the part of *mongo.Collection the adapter uses.
type DocumentCollection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// CollectionProvider resolves a collection by name.
type CollectionProvider func(name string) DocumentCollection

// DatabaseCollections adapts a *mongo.Database to a CollectionProvider.
func DatabaseCollections(db *mongo.Database) CollectionProvider {
	return func(name string) DocumentCollection {
		return db.Collection(name)
	}
}

// DocumentAdapter searches MongoDB collections with a case-insensitive regex.
type DocumentAdapter struct {
	collections CollectionProvider
	logger      *logger.Logger
}

// NewDocumentAdapter creates a DocumentAdapter
func NewDocumentAdapter(collections CollectionProvider, log *logger.Logger) *DocumentAdapter {
	return &DocumentAdapter{collections: collections, logger: log}
}

func (a *DocumentAdapter) Kind() string {
	return KindMongo
}

// Execute runs find with sort/skip/limit and countDocuments concurrently.
// The query is matched literally as a substring.
func (a *DocumentAdapter) Execute(ctx context.Context, req *types.SearchRequest) (*types.SearchResult, error) {
	coll := a.collections(req.Table)
	filter := RegexFilter(req.Column, req.Query)

	direction := 1
	if req.SortDirection == types.SortDesc {
		direction = -1
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: req.SortBy, Value: direction}}).
		SetSkip(int64(req.Offset)).
		SetLimit(int64(req.Limit))

	var (
		docs  []bson.M
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cur, err := coll.Find(gctx, filter, findOpts)
		if err != nil {
			return err
		}
		return cur.All(gctx, &docs)
	})
	g.Go(func() error {
		var err error
		total, err = coll.CountDocuments(gctx, filter)
		return err
	})

	if err := g.Wait(); err != nil {
		a.logger.WithContext(ctx).Error("document search failed",
			zap.String("collection", req.Table),
			zap.String("field", req.Column),
			zap.Error(err),
		)
		return nil, types.NewBackendError(KindMongo, err)
	}

	items := make([]types.Record, len(docs))
	for i, doc := range docs {
		items[i] = doc
	}

	return &types.SearchResult{
		Items:      items,
		TotalCount: total,
		HasMore:    hasMore(req.Offset, len(items), total),
	}, nil
}

// RegexFilter matches field against query as a case-insensitive substring.
func RegexFilter(field, query string) bson.M {
	return bson.M{
		field: bson.M{
			"$regex":   regexp.QuoteMeta(query),
			"$options": "i",
		},
	}
}
