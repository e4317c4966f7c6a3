package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThiagoRGoveia/csv-files/internal/config"
	"github.com/ThiagoRGoveia/csv-files/internal/externalapi"
	"github.com/ThiagoRGoveia/csv-files/internal/ingestion"
	"github.com/ThiagoRGoveia/csv-files/internal/logging"
	"github.com/ThiagoRGoveia/csv-files/internal/server"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	client := externalapi.NewClient(externalapi.Config{
		BaseURL: cfg.ExternalAPIBaseURL,
		APIKey:  cfg.ExternalAPIKey,
		Timeout: cfg.RequestTimeout,
	}, &http.Client{}, logger.Named("externalapi"))
	service := ingestion.NewFilesService(client, ingestion.NewPool(cfg.NumFetchWorkers, logger.Named("pool")), logger.Named("ingestion"))
	router := server.SetupRoutes(server.NewFilesHandler(service, logger.Named("server")), logger.Named("http"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.APIPort))
	if err != nil {
		logger.Fatal("Failed to listen", zap.String("port", cfg.APIPort), zap.Error(err))
	}

	if err := serve(ctx, ln, router, cfg.ShutdownTimeout, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
	logger.Info("Server stopped")
}

// serve runs the HTTP server on ln until ctx is cancelled, then drains
// in-flight requests for at most shutdownTimeout. Request contexts are not
// derived from ctx, so a shutdown signal does not cancel running requests.
func serve(ctx context.Context, ln net.Listener, handler http.Handler, shutdownTimeout time.Duration, logger *zap.Logger) error {
	srv := &http.Server{Handler: handler}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
