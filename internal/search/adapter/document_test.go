package adapter

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/search/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeCollection struct {
	mu       sync.Mutex
	docs     []interface{}
	count    int64
	findErr  error
	countErr error

	gotFilter  interface{}
	gotOptions *options.FindOptions
}

func (f *fakeCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	f.mu.Lock()
	f.gotFilter = filter
	if len(opts) > 0 {
		f.gotOptions = opts[0]
	}
	f.mu.Unlock()

	if f.findErr != nil {
		return nil, f.findErr
	}
	return mongo.NewCursorFromDocuments(f.docs, nil, nil)
}

func (f *fakeCollection) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.count, nil
}

func providerFor(t *testing.T, want string, coll *fakeCollection) CollectionProvider {
	return func(name string) DocumentCollection {
		assert.Equal(t, want, name)
		return coll
	}
}

func objectsRequest() *types.SearchRequest {
	return &types.SearchRequest{
		Query:         "a.b",
		Table:         "objects",
		Column:        "data",
		Limit:         2,
		Offset:        4,
		SortBy:        "data",
		SortDirection: types.SortDesc,
	}
}

func TestDocumentAdapter_Execute(t *testing.T) {
	coll := &fakeCollection{
		docs: []interface{}{
			bson.M{"_key": "user:1", "data": "a.b.c"},
			bson.M{"_key": "user:2", "data": "A.B"},
		},
		count: 7,
	}
	a := NewDocumentAdapter(providerFor(t, "objects", coll), logger.NewNop())

	res, err := a.Execute(context.Background(), objectsRequest())
	require.NoError(t, err)

	require.Len(t, res.Items, 2)
	assert.Equal(t, "a.b.c", res.Items[0]["data"])
	assert.Equal(t, int64(7), res.TotalCount)
	assert.True(t, res.HasMore, "offset 4 + 2 items is below 7")
}

func TestDocumentAdapter_QueryShape(t *testing.T) {
	coll := &fakeCollection{}
	a := NewDocumentAdapter(providerFor(t, "objects", coll), logger.NewNop())

	_, err := a.Execute(context.Background(), objectsRequest())
	require.NoError(t, err)

	assert.Equal(t, bson.M{"data": bson.M{"$regex": `a\.b`, "$options": "i"}}, coll.gotFilter)
	require.NotNil(t, coll.gotOptions)
	assert.Equal(t, bson.D{{Key: "data", Value: -1}}, coll.gotOptions.Sort)
	assert.Equal(t, int64(4), *coll.gotOptions.Skip)
	assert.Equal(t, int64(2), *coll.gotOptions.Limit)
}

func TestDocumentAdapter_Errors(t *testing.T) {
	driverErr := errors.New("connection reset by peer")

	tests := []struct {
		name string
		coll *fakeCollection
	}{
		{name: "find fails", coll: &fakeCollection{findErr: driverErr}},
		{name: "count fails", coll: &fakeCollection{countErr: driverErr}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewDocumentAdapter(providerFor(t, "objects", tt.coll), logger.NewNop())
			_, err := a.Execute(context.Background(), objectsRequest())

			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrBackend)
			assert.ErrorIs(t, err, driverErr)
			assert.EqualError(t, err, "database search failed: connection reset by peer")
		})
	}
}

func TestRegexFilter_Literal(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "plain", query: "apple", want: "apple"},
		{name: "wildcard", query: ".*", want: `\.\*`},
		{name: "unbalanced group", query: "a(b", want: `a\(b`},
		{name: "anchors and class", query: "^[x]$", want: `\^\[x\]\$`},
		{name: "alternation", query: "a|b", want: `a\|b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := RegexFilter("data", tt.query)
			assert.Equal(t, bson.M{"data": bson.M{"$regex": tt.want, "$options": "i"}}, filter)
		})
	}
	t.Logf("✓ regex metacharacters are matched literally")
}
