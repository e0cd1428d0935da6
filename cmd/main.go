// Command bracket-console serves the esports bracket console and offers a few
// operator commands against the same tournament backend.
//
// Usage:
//
//	bracket-console serve
//	bracket-console show --tournament 12 --tournament 13
//	bracket-console score --tournament 12 --match 57 --score1 2 --score2 1
//	bracket-console token --subject ops --ttl 12h
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/Dosada05/bracket-console/backend"
	"github.com/Dosada05/bracket-console/brackets"
	"github.com/Dosada05/bracket-console/config"
	"github.com/Dosada05/bracket-console/handlers"
	"github.com/Dosada05/bracket-console/metrics"
	api "github.com/Dosada05/bracket-console/routes"
	"github.com/Dosada05/bracket-console/services"
	"github.com/Dosada05/bracket-console/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bracket-console",
		Short:         "Esports bracket console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(showCmd())
	root.AddCommand(scoreCmd())
	root.AddCommand(tokenCmd())
	return root
}

// setup загружает конфигурацию и создаёт JSON логгер.
// CLI-команды пишут логи в stderr, чтобы не смешивать их с выводом.
func setup(logOut io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newBackendClient(cfg *config.Config, logger *slog.Logger) *backend.Client {
	return backend.NewClient(backend.Config{
		BaseURL:           cfg.BackendBaseURL,
		APIToken:          cfg.BackendAPIToken,
		Timeout:           cfg.BackendTimeout,
		RequestsPerSecond: cfg.BackendRequestsPerSecond,
	}, logger)
}

// --------------------------------------------------------------------------
// serve command
// --------------------------------------------------------------------------

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(os.Stdout)
			if err != nil {
				return err
			}
			return serve(cfg, logger)
		},
	}
}

func serve(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("backend", cfg.BackendBaseURL))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Инициализация загрузчика файлов (Cloudflare R2), необязательна
	var uploader storage.FileUploader
	uploader, err := storage.NewCloudflareR2Uploader(ctx, cfg.R2)
	switch {
	case errors.Is(err, storage.ErrStorageNotConfigured):
		logger.Info("R2 storage not configured, bracket publishing disabled")
		uploader = nil
	case err != nil:
		return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
	default:
		logger.Info("Cloudflare R2 uploader initialized")
	}

	// Инициализация WebSocket Hub
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(hubCtx)
	logger.Info("WebSocket Hub started")

	m := metrics.New()
	client := newBackendClient(cfg, logger)

	// Инициализация сервисов
	bracketService := services.NewBracketService(client, wsHub, uploader, cfg.Layout, m, logger)
	scoreService := services.NewScoreService(client, bracketService, m, logger)
	advanceService := services.NewAdvanceService(bracketService, scoreService, m, logger)
	logger.Info("Services initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Deps{
		JWTSecret:        []byte(cfg.JWTSecretKey),
		AllowedOrigins:   cfg.CORSAllowOrigins,
		Metrics:          m.Handler(),
		BracketHandler:   handlers.NewBracketHandler(bracketService),
		MatchHandler:     handlers.NewMatchHandler(scoreService, advanceService),
		WebSocketHandler: handlers.NewWebSocketHandler(wsHub, bracketService, cfg.CORSAllowOrigins, logger),
	})
	logger.Info("Routes configured")

	// WriteTimeout не задаём: WebSocket соединения долгоживущие,
	// обычные запросы ограничены middleware Timeout.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		stopHub()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
	return nil
}
