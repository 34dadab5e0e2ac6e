package db

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"webwatch/internal/pkg/config"
)

func TestDefaultConnectionConfig(t *testing.T) {
	cfg := DefaultConnectionConfig()

	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 10, cfg.MaxIdleConns)
	assert.Equal(t, 1*time.Hour, cfg.ConnMaxLifetime)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxIdleTime)
}

func TestConnectionConfigFromEnv(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		want      ConnectionConfig
		fallbacks int
	}{
		{
			name: "defaults",
			want: DefaultConnectionConfig(),
		},
		{
			name: "valid overrides",
			env: map[string]string{
				"DB_MAX_OPEN_CONNS":     "50",
				"DB_MAX_IDLE_CONNS":     "5",
				"DB_CONN_MAX_LIFETIME":  "2h",
				"DB_CONN_MAX_IDLE_TIME": "1m",
			},
			want: ConnectionConfig{MaxOpenConns: 50, MaxIdleConns: 5, ConnMaxLifetime: 2 * time.Hour, ConnMaxIdleTime: time.Minute},
		},
		{
			name: "invalid values fall back",
			env: map[string]string{
				"DB_MAX_OPEN_CONNS":    "invalid",
				"DB_MAX_IDLE_CONNS":    "-10",
				"DB_CONN_MAX_LIFETIME": "0s",
			},
			want:      DefaultConnectionConfig(),
			fallbacks: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME"} {
				t.Setenv(k, tt.env[k])
			}
			var l config.Loader
			got := connectionConfigFromEnv(&l)
			assert.Equal(t, tt.want, got)
			assert.Len(t, l.Fallbacks, tt.fallbacks)
		})
	}
}

func TestLoadStorageConfigFromEnv(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("defaults to mongo", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "")
		cfg := LoadStorageConfigFromEnv(logger)
		assert.Equal(t, DriverMongo, cfg.Driver)
		assert.Equal(t, "webwatch", cfg.MongoDatabase)
	})

	t.Run("postgres", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "postgres")
		t.Setenv("DATABASE_URL", "postgres://u:p@localhost/webwatch")
		cfg := LoadStorageConfigFromEnv(logger)
		assert.Equal(t, DriverPostgres, cfg.Driver)
		assert.Equal(t, "postgres://u:p@localhost/webwatch", cfg.DatabaseURL)
	})

	t.Run("unknown driver falls back", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "sqlite")
		assert.Equal(t, DriverMongo, LoadStorageConfigFromEnv(logger).Driver)
	})
}

func TestOpenPostgres_RequiresDSN(t *testing.T) {
	_, err := OpenPostgres(context.Background(), "", DefaultConnectionConfig())
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestOpenStores_UnknownDriver(t *testing.T) {
	_, err := OpenStores(context.Background(), StorageConfig{Driver: "sqlite"}, slog.Default())
	assert.ErrorContains(t, err, "unknown storage driver")
}
