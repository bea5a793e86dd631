package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paularlott/cli"

	"github.com/kavia-common/netwatch/internal/api"
	"github.com/kavia-common/netwatch/internal/checker"
	"github.com/kavia-common/netwatch/internal/config"
	"github.com/kavia-common/netwatch/internal/log"
	"github.com/kavia-common/netwatch/internal/storage"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:        "server",
		Usage:       "Start the device API server",
		Description: "Start the HTTP server backing the device inventory",
		Flags:       config.ServerFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load()
			log.Configure(cfg.LogLevel, cfg.LogFormat)

			log.Info("Configuration loaded", "data_dir", cfg.DataDir, "listen_addr", cfg.ListenAddr)

			store, err := storage.NewStorage(cfg.DataDir)
			if err != nil {
				log.Error("Failed to initialize storage", "error", err)
				return err
			}
			defer store.Close()
			log.Info("Storage initialized", "backend", "SQLite", "path", cfg.DataDir)

			apiHandler := api.NewHandler(store, checker.New(2*time.Second))

			mux := http.NewServeMux()
			apiHandler.RegisterRoutes(mux)

			var handler http.Handler = mux
			if cfg.IsAPIAuthEnabled() {
				handler = api.AuthMiddleware(cfg.APIAuthToken, handler)
			}
			handler = api.SecurityHeadersMiddleware(handler)

			server := &http.Server{
				Addr:    cfg.ListenAddr,
				Handler: handler,
			}

			// Handle shutdown gracefully
			go func() {
				sigChan := make(chan os.Signal, 1)
				signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
				<-sigChan
				log.Info("Shutting down server...")
				server.Close()
			}()

			log.Info("Starting netwatch server", "addr", cfg.ListenAddr)
			log.Info("API available", "url", "http://localhost"+cfg.ListenAddr+"/api/")
			if cfg.IsAPIAuthEnabled() {
				log.Info("API authentication enabled")
			}

			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("Server error", "error", err)
				return err
			}

			log.Info("Server stopped")
			return nil
		},
	}
}
