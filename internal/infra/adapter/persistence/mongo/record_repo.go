package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"webwatch/internal/domain/entity"
	"webwatch/internal/repository"
)

// DefaultListLimit caps record listings without an explicit limit.
const DefaultListLimit = 100

type RecordRepo struct {
	coll *mongo.Collection
}

func NewRecordRepo(db *mongo.Database) repository.RecordRepository {
	return &RecordRepo{coll: db.Collection(RecordsCollection)}
}

func (repo *RecordRepo) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err := repo.coll.FindOne(ctx, bson.M{"content_hash": hash}, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ExistsByHash: %w", err)
	}
	return true, nil
}

func (repo *RecordRepo) Create(ctx context.Context, rec *entity.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if _, err := repo.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("Create: %w", translateWriteError(err))
	}
	return nil
}

func (repo *RecordRepo) Get(ctx context.Context, id string) (*entity.Record, error) {
	var rec entity.Record
	err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &rec, nil
}

// List returns records newest first.
func (repo *RecordRepo) List(ctx context.Context, f entity.RecordFilter) ([]*entity.Record, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "scraped_at", Value: -1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(limit))

	cur, err := repo.coll.Find(ctx, recordFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	records := make([]*entity.Record, 0, limit)
	for cur.Next(ctx) {
		var rec entity.Record
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		records = append(records, &rec)
	}
	return records, cur.Err()
}

func (repo *RecordRepo) UpdateEngagement(ctx context.Context, id string, e entity.Engagement) error {
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"engagement": e}})
	if err != nil {
		return fmt.Errorf("UpdateEngagement: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("UpdateEngagement: %w", entity.ErrNotFound)
	}
	return nil
}

func recordFilter(f entity.RecordFilter) bson.M {
	filter := bson.M{}
	if f.SourceID != "" {
		filter["source_id"] = f.SourceID
	}
	if f.ProjectID != "" {
		filter["project_id"] = f.ProjectID
	}
	if f.Sentiment != "" {
		filter["sentiment.label"] = f.Sentiment
	}
	if f.From != nil || f.To != nil {
		scraped := bson.M{}
		if f.From != nil {
			scraped["$gte"] = f.From.UTC()
		}
		if f.To != nil {
			scraped["$lte"] = f.To.UTC()
		}
		filter["scraped_at"] = scraped
	}
	return filter
}
