// Package mongo implements the repository ports on a MongoDB database.
// Entities are stored as-is through their bson tags; string UUIDs are the _id.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"webwatch/internal/domain/entity"
	"webwatch/internal/repository"
)

// Collection names.
const (
	SourcesCollection  = "sources"
	RecordsCollection  = "records"
	ProjectsCollection = "projects"
)

type SourceRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewSourceRepo(db *mongo.Database) repository.SourceRepository {
	return &SourceRepo{coll: db.Collection(SourcesCollection), now: time.Now}
}

func (repo *SourceRepo) Get(ctx context.Context, id string) (*entity.Source, error) {
	var src entity.Source
	err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&src)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &src, nil
}

func (repo *SourceRepo) List(ctx context.Context) ([]*entity.Source, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	sources, err := findSources(ctx, repo.coll, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return sources, nil
}

// ListDue returns sources in natural (insertion) order.
func (repo *SourceRepo) ListDue(ctx context.Context, now time.Time) ([]*entity.Source, error) {
	filter := bson.M{
		"is_active": true,
		"$or": bson.A{
			bson.M{"next_crawl": nil},
			bson.M{"next_crawl": bson.M{"$lte": now}},
		},
	}
	sources, err := findSources(ctx, repo.coll, filter)
	if err != nil {
		return nil, fmt.Errorf("ListDue: %w", err)
	}
	return sources, nil
}

func (repo *SourceRepo) Create(ctx context.Context, src *entity.Source) error {
	if src.ID == "" {
		src.ID = uuid.NewString()
	}
	if src.CreatedAt.IsZero() {
		src.CreatedAt = repo.now().UTC()
	}
	if src.UpdatedAt.IsZero() {
		src.UpdatedAt = src.CreatedAt
	}
	if _, err := repo.coll.InsertOne(ctx, src); err != nil {
		return fmt.Errorf("Create: %w", translateWriteError(err))
	}
	return nil
}

// Update rewrites operator configuration. Crawl state and the lock are left alone.
func (repo *SourceRepo) Update(ctx context.Context, src *entity.Source) error {
	src.UpdatedAt = repo.now().UTC()
	set := bson.M{
		"name":                    src.Name,
		"url":                     src.URL,
		"type":                    src.Type,
		"category":                src.Category,
		"project_id":              src.ProjectID,
		"selectors":               src.Selectors,
		"crawl_frequency_minutes": src.CrawlFrequencyMinutes,
		"keywords":                src.Keywords,
		"exclude_keywords":        src.ExcludeKeywords,
		"hashtags":                src.Hashtags,
		"crawl_settings":          src.CrawlSettings,
		"is_active":               src.IsActive,
		"updated_at":              src.UpdatedAt,
	}
	if err := repo.updateOne(ctx, src.ID, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return nil
}

func (repo *SourceRepo) Deactivate(ctx context.Context, id string) error {
	update := bson.M{"$set": bson.M{"is_active": false, "updated_at": repo.now().UTC()}}
	if err := repo.updateOne(ctx, id, update); err != nil {
		return fmt.Errorf("Deactivate: %w", err)
	}
	return nil
}

func (repo *SourceRepo) SaveCrawlState(ctx context.Context, src *entity.Source) error {
	update := bson.M{"$set": bson.M{
		"last_crawled": src.LastCrawled,
		"next_crawl":   src.NextCrawl,
		"statistics":   src.Statistics,
		"updated_at":   src.UpdatedAt,
	}}
	if err := repo.updateOne(ctx, src.ID, update); err != nil {
		return fmt.Errorf("SaveCrawlState: %w", err)
	}
	return nil
}

// TryLockCrawl is a single conditional update, so two workers racing on the
// same source cannot both match.
func (repo *SourceRepo) TryLockCrawl(ctx context.Context, id string, now time.Time, staleAfter time.Duration) (bool, error) {
	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"crawl_in_progress": bson.M{"$ne": true}},
			bson.M{"crawl_started_at": bson.M{"$lt": now.Add(-staleAfter)}},
		},
	}
	update := bson.M{"$set": bson.M{"crawl_in_progress": true, "crawl_started_at": now}}
	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("TryLockCrawl: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (repo *SourceRepo) UnlockCrawl(ctx context.Context, id string) error {
	update := bson.M{
		"$set":   bson.M{"crawl_in_progress": false},
		"$unset": bson.M{"crawl_started_at": ""},
	}
	if _, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("UnlockCrawl: %w", err)
	}
	return nil
}

func (repo *SourceRepo) updateOne(ctx context.Context, id string, update bson.M) error {
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translateWriteError(err)
	}
	if res.MatchedCount == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func findSources(ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]*entity.Source, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	sources := make([]*entity.Source, 0, 50)
	for cur.Next(ctx) {
		var src entity.Source
		if err := cur.Decode(&src); err != nil {
			return nil, err
		}
		sources = append(sources, &src)
	}
	return sources, cur.Err()
}

// translateWriteError maps unique index violations onto entity.ErrDuplicate.
func translateWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", entity.ErrDuplicate, err)
	}
	return err
}
