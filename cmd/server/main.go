package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/lk2023060901/forum-search-backend/internal/conf"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/injector"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "configs/config.yaml", "config file path")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(&config.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("config loaded successfully",
		zap.String("engine", config.SearchEngine()),
		zap.Bool("history_async", config.Search.HistoryAsync),
	)

	app, cleanup, err := injector.InitializeApp(config, log)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}
	defer cleanup()

	// Start servers in goroutines
	go func() {
		if err := app.HTTPServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	if config.Server.GRPCPort > 0 {
		go func() {
			if err := app.GRPCServer.Start(); err != nil {
				log.Fatal("failed to start gRPC server", zap.Error(err))
			}
		}()
	}

	log.Info("servers started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
	defer cancel()

	if config.Server.GRPCPort > 0 {
		app.GRPCServer.Stop()
	}

	if err := app.HTTPServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("servers exited")
}
