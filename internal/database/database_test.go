package database

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Run("Error_UnknownDriver", func(t *testing.T) {
		db, err := Connect(Config{
			Driver:             "invalid",
			ConnectionString:   "invalid",
			MaxOpenConnections: 10,
			MaxIdleConnections: 5,
			ConnMaxLifetime:    time.Hour,
		})

		assert.Nil(t, db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sql: unknown driver")
	})

	t.Run("Error_InvalidMySQLDSN", func(t *testing.T) {
		db, err := Connect(Config{Driver: "mysql", ConnectionString: "not a dsn"})

		assert.Nil(t, db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid mysql connection string")
	})
}

func TestNormalizeMySQLDSN(t *testing.T) {
	t.Run("Success_AddsRequiredOptions", func(t *testing.T) {
		dsn, err := NormalizeMySQLDSN("user:password@tcp(localhost:3306)/apikeys")
		require.NoError(t, err)

		cfg, err := mysql.ParseDSN(dsn)
		require.NoError(t, err)
		assert.True(t, cfg.ParseTime)
		assert.True(t, cfg.ClientFoundRows)
		assert.Equal(t, time.UTC, cfg.Loc)
		assert.Equal(t, "apikeys", cfg.DBName)
		assert.Equal(t, "localhost:3306", cfg.Addr)
	})

	t.Run("Success_KeepsExistingParams", func(t *testing.T) {
		dsn, err := NormalizeMySQLDSN("user:password@tcp(localhost:3306)/apikeys?parseTime=false&timeout=5s")
		require.NoError(t, err)

		cfg, err := mysql.ParseDSN(dsn)
		require.NoError(t, err)
		assert.True(t, cfg.ParseTime)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
	})

	t.Run("Error_Invalid", func(t *testing.T) {
		_, err := NormalizeMySQLDSN("not a dsn")
		assert.Error(t, err)
	})
}
