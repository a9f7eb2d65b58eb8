package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"beatbridge/database"
	"beatbridge/handlers"
	"beatbridge/metrics"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP resolver (default command)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.WithFields(log.Fields{"module": "serve"})

	switch cfg.Options.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Options.GinMode)
	default:
		logger.Warnf("unknown GIN_MODE %q, using release", cfg.Options.GinMode)
		gin.SetMode(gin.ReleaseMode)
	}

	res, err := newResolver()
	if err != nil {
		return err
	}

	var history handlers.HistoryStore
	if cfg.History.IsEnabled() {
		db, err := database.New(cfg.History.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		history = db
	}

	manager := handlers.NewManager(cfg, res, metrics.New(), history)

	port := cfg.Options.Port
	if servePort != "" {
		port = servePort
	}
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           manager.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Infof("Starting server on :%s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("server stopped with error: %v", err)
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}
