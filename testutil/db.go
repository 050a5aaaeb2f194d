// Package testutil opens throwaway catalog databases for tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aromadb/aroma-catalog/config"
	"github.com/aromadb/aroma-catalog/database"
	"github.com/aromadb/aroma-catalog/models"
)

// NewDB returns a migrated in-memory sqlite database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(config.DBConfig{
		Driver:       config.DriverSQLite,
		SQLitePath:   fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
		LogLevel:     logger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewStore wraps NewDB in a models.Store.
func NewStore(t testing.TB) *models.Store {
	t.Helper()
	return models.NewStore(NewDB(t))
}
