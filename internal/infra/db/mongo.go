package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	mongorepo "webwatch/internal/infra/adapter/persistence/mongo"
)

// ConnectMongo dials uri, pings the primary and returns the named database.
func ConnectMongo(ctx context.Context, uri, database string, cfg ConnectionConfig) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(uint64(cfg.MaxOpenConns)).
		SetMaxConnIdleTime(cfg.ConnMaxIdleTime)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	slog.Info("mongo connection established successfully", slog.String("database", database))
	return client, client.Database(database), nil
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// indexes are what turns a second insert of the same source URL or record
// content hash into entity.ErrDuplicate.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := indexModels()

	for _, coll := range []string{mongorepo.SourcesCollection, mongorepo.RecordsCollection} {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, specs[coll]); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// indexModels returns the index set per collection. Record URLs are indexed
// but not unique: a container without its own link gets the page URL as its
// permalink, so distinct records from one page share it. Record identity is
// the content hash.
func indexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		mongorepo.SourcesCollection: {
			{Keys: bson.D{{Key: "url", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_sources_url")},
			{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "next_crawl", Value: 1}}, Options: options.Index().SetName("idx_sources_due")},
		},
		mongorepo.RecordsCollection: {
			{Keys: bson.D{{Key: "content_hash", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_records_content_hash")},
			{Keys: bson.D{{Key: "url", Value: 1}}, Options: options.Index().SetName("idx_records_url")},
			{Keys: bson.D{{Key: "source_id", Value: 1}, {Key: "scraped_at", Value: -1}}, Options: options.Index().SetName("idx_records_source_scraped")},
			{Keys: bson.D{{Key: "sentiment.label", Value: 1}}, Options: options.Index().SetName("idx_records_sentiment")},
		},
	}
}
