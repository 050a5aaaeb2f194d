package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aromadb/aroma-catalog/app/server"
	"github.com/aromadb/aroma-catalog/models"
	"github.com/aromadb/aroma-catalog/seed"
)

var (
	seedOnStart bool

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
)

func init() {
	serveCmd.Flags().BoolVar(&seedOnStart, "seed", false, "load the demo catalog when the database is empty")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Info("Starting service", cfg.Fields()...)

	db, closeDB, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()
	store := models.NewStore(db)

	if seedOnStart {
		data, err := seed.Default()
		if err != nil {
			return err
		}
		if _, err := seed.Apply(cmd.Context(), store, data); err != nil {
			return err
		}
	}

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	srv := server.New(server.Config{
		Addr:            ":" + cfg.Server.Port,
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		MetricsPath:     metricsPath,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Store:           store,
		Logger:          logger,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server encountered an error", zap.Error(err))
			return err
		}
		return nil
	case sig := <-sigCh:
		logger.Info("Shutting down http server", zap.String("signal", sig.String()))
	}

	if err := srv.Stop(); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
