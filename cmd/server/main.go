package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/bayadbuddy/server/internal/api"
	"github.com/bayadbuddy/server/internal/config"
	"github.com/bayadbuddy/server/internal/history"
	"github.com/bayadbuddy/server/internal/scan"
	"github.com/bayadbuddy/server/internal/session"
	"github.com/bayadbuddy/server/internal/storage/sqlite"
	"github.com/bayadbuddy/server/pkg/logging"
)

const defaultConfigPath = "config.yaml"

func main() {
	cfg, err := config.LoadOrEnv(defaultConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level)
	gin.SetMode(gin.ReleaseMode)

	// Initialize SQLite-backed key-value storage
	store, err := sqlite.New(cfg.Storage.DatabasePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Storage.DatabasePath)

	ctx := context.Background()
	sess := session.New(ctx, store)
	hist := history.New(ctx, store)

	scanner := scan.NewClient(
		cfg.Scanner.Endpoint,
		cfg.Scanner.APIKey,
		time.Duration(cfg.Scanner.TimeoutSeconds)*time.Second,
	)
	if cfg.Scanner.Endpoint == "" {
		slog.Warn("No scanner endpoint configured, receipt scanning will fail")
	}

	srv := api.NewServer(sess, hist, scanner)

	// Wrap with h2c for HTTP/2 without TLS
	h2cHandler := h2c.NewHandler(srv.Handler(), &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
