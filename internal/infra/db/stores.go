package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	mongorepo "webwatch/internal/infra/adapter/persistence/mongo"
	"webwatch/internal/infra/adapter/persistence/postgres"
	"webwatch/internal/observability/metrics"
	"webwatch/internal/repository"
)

// Stores bundles the repositories of one backend with its lifecycle hooks.
type Stores struct {
	Driver   string
	Sources  repository.SourceRepository
	Records  repository.RecordRepository
	Projects repository.ProjectRepository
	// SQL is set for the postgres driver so callers can report pool stats.
	SQL   *sql.DB
	Ping  func(ctx context.Context) error
	Close func(ctx context.Context) error
}

// OpenStores connects to the configured backend and prepares its schema.
func OpenStores(ctx context.Context, cfg StorageConfig, logger *slog.Logger) (*Stores, error) {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	ping := st.Ping
	st.Ping = func(ctx context.Context) error {
		start := time.Now()
		err := ping(ctx)
		metrics.RecordDBQuery("ping", time.Since(start))
		st.ReportStats()
		return err
	}
	return st, nil
}

// ReportStats publishes connection pool gauges. Only the postgres driver
// exposes pool statistics.
func (s *Stores) ReportStats() {
	if s.SQL == nil {
		return
	}
	stats := s.SQL.Stats()
	metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
}

func openStores(ctx context.Context, cfg StorageConfig, logger *slog.Logger) (*Stores, error) {
	switch cfg.Driver {
	case DriverPostgres:
		sqlDB, err := OpenPostgres(ctx, cfg.DatabaseURL, cfg.Pool)
		if err != nil {
			return nil, err
		}
		if err := MigrateUp(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("storage ready", slog.String("driver", DriverPostgres))
		return &Stores{
			Driver:   DriverPostgres,
			Sources:  postgres.NewSourceRepo(sqlDB),
			Records:  postgres.NewRecordRepo(sqlDB),
			Projects: postgres.NewProjectRepo(sqlDB),
			SQL:      sqlDB,
			Ping:     sqlDB.PingContext,
			Close:    func(context.Context) error { return sqlDB.Close() },
		}, nil

	case DriverMongo, "":
		client, database, err := ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.Pool)
		if err != nil {
			return nil, err
		}
		if err := EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		logger.Info("storage ready", slog.String("driver", DriverMongo))
		return &Stores{
			Driver:   DriverMongo,
			Sources:  mongorepo.NewSourceRepo(database),
			Records:  mongorepo.NewRecordRepo(database),
			Projects: mongorepo.NewProjectRepo(database),
			Ping:     func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
			Close:    client.Disconnect,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
