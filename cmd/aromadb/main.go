package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aromadb/aroma-catalog/config"
	"github.com/aromadb/aroma-catalog/database"
	"github.com/aromadb/aroma-catalog/logging"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	rootCmd = &cobra.Command{
		Use:           "aromadb",
		Short:         "Catalog and pricing service for aroma blends",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			logger, err = logging.Init(logging.Config{
				Level:       cfg.Log.Level,
				Environment: cfg.Server.Env,
				ServiceName: cfg.ServiceName,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			cmd.SetContext(logging.WithContext(cmd.Context(), logger))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, repriceCmd, exportCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openDatabase connects and brings the schema up to date.
func openDatabase() (*gorm.DB, func(), error) {
	db, err := database.Open(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := database.Migrate(db); err != nil {
		closeFn()
		return nil, nil, err
	}
	logger.Info("Database ready", zap.String("driver", cfg.DB.Driver))
	return db, closeFn, nil
}
