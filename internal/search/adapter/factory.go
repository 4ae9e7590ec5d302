package adapter

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/search/types"
	"gorm.io/gorm"
)

// Dependencies are the engine handles an adapter may need.
type Dependencies struct {
	DB          *gorm.DB
	Collections CollectionProvider
	Logger      *logger.Logger
}

// Constructor builds an adapter for one engine kind.
type Constructor func(kind string, deps *Dependencies) (Adapter, error)

// Factory creates adapters by engine kind
type Factory struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewFactory returns a factory with the built-in engines registered
func NewFactory() *Factory {
	f := &Factory{constructors: make(map[string]Constructor)}

	f.Register(KindPostgres, newRelational)
	f.Register(KindMySQL, newRelational)
	f.Register(KindSQLite, newRelational)
	f.Register(KindMongo, newDocument)

	return f
}

// Register registers a constructor, replacing any previous one for kind
func (f *Factory) Register(kind string, constructor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructors[kind] = constructor
}

// Create builds the adapter for kind. Unknown kinds fail with types.ErrUnsupportedBackend.
func (f *Factory) Create(kind string, deps *Dependencies) (Adapter, error) {
	f.mu.RLock()
	constructor, ok := f.constructors[kind]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q, registered: %s", types.ErrUnsupportedBackend, kind, strings.Join(f.Kinds(), ", "))
	}
	if deps == nil {
		deps = &Dependencies{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.L()
	}
	return constructor(kind, deps)
}

// Kinds lists the registered engine kinds in sorted order
func (f *Factory) Kinds() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	kinds := make([]string, 0, len(f.constructors))
	for kind := range f.constructors {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func newRelational(kind string, deps *Dependencies) (Adapter, error) {
	if deps.DB == nil {
		return nil, errors.New("relational search adapter requires a database handle")
	}
	return NewRelationalAdapter(kind, deps.DB, deps.Logger), nil
}

func newDocument(kind string, deps *Dependencies) (Adapter, error) {
	if deps.Collections == nil {
		return nil, errors.New("document search adapter requires a collection provider")
	}
	return NewDocumentAdapter(deps.Collections, deps.Logger), nil
}
