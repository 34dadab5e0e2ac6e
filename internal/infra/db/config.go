package db

import (
	"log/slog"
	"time"

	"webwatch/internal/pkg/config"
)

// Storage drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// StorageConfig selects and addresses the backing store.
type StorageConfig struct {
	Driver        string
	MongoURI      string
	MongoDatabase string
	DatabaseURL   string
	Pool          ConnectionConfig
}

// LoadStorageConfigFromEnv reads STORAGE_DRIVER, MONGODB_URI, MONGODB_DATABASE,
// DATABASE_URL and the DB_* pool settings. Invalid values fall back to defaults.
func LoadStorageConfigFromEnv(logger *slog.Logger) StorageConfig {
	var l config.Loader
	cfg := StorageConfig{
		Driver:        config.Get(&l, "STORAGE_DRIVER", config.LoadEnvWithFallback("STORAGE_DRIVER", DriverMongo, config.OneOf(DriverMongo, DriverPostgres))),
		MongoURI:      config.LoadEnvString("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: config.LoadEnvString("MONGODB_DATABASE", "webwatch"),
		DatabaseURL:   config.LoadEnvString("DATABASE_URL", ""),
		Pool:          connectionConfigFromEnv(&l),
	}
	for _, w := range l.Warnings {
		logger.Warn("storage configuration fallback", slog.String("warning", w))
	}
	return cfg
}

// connectionConfigFromEnv reads the pool settings. Non-positive values fall back.
func connectionConfigFromEnv(l *config.Loader) ConnectionConfig {
	d := DefaultConnectionConfig()
	positive := config.IntRange(1, 10000)
	return ConnectionConfig{
		MaxOpenConns:    config.Get(l, "DB_MAX_OPEN_CONNS", config.LoadEnvInt("DB_MAX_OPEN_CONNS", d.MaxOpenConns, positive)),
		MaxIdleConns:    config.Get(l, "DB_MAX_IDLE_CONNS", config.LoadEnvInt("DB_MAX_IDLE_CONNS", d.MaxIdleConns, positive)),
		ConnMaxLifetime: config.Get(l, "DB_CONN_MAX_LIFETIME", config.LoadEnvDuration("DB_CONN_MAX_LIFETIME", d.ConnMaxLifetime, config.ValidatePositiveDuration)),
		ConnMaxIdleTime: config.Get(l, "DB_CONN_MAX_IDLE_TIME", config.LoadEnvDuration("DB_CONN_MAX_IDLE_TIME", d.ConnMaxIdleTime, config.ValidatePositiveDuration)),
	}
}
