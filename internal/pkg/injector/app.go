package injector

import (
	"github.com/lk2023060901/forum-search-backend/internal/conf"
	"github.com/lk2023060901/forum-search-backend/internal/data"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/workerpool"
	"github.com/lk2023060901/forum-search-backend/internal/server"
)

// App encapsulates all application dependencies
type App struct {
	Config     *conf.Config
	Logger     *logger.Logger
	Data       *data.Data
	HTTPServer *server.HTTPServer
	GRPCServer *server.GRPCServer
	WorkerPool *workerpool.Pool // nil when history is recorded inline
	cleanup    func()
}

// Cleanup releases all resources
func (a *App) Cleanup() {
	if a.cleanup != nil {
		a.cleanup()
	}
}
