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

type ProjectRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewProjectRepo(db *mongo.Database) repository.ProjectRepository {
	return &ProjectRepo{coll: db.Collection(ProjectsCollection), now: time.Now}
}

func (repo *ProjectRepo) Get(ctx context.Context, id string) (*entity.Project, error) {
	var p entity.Project
	err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &p, nil
}

func (repo *ProjectRepo) List(ctx context.Context) ([]*entity.Project, error) {
	cur, err := repo.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var projects []*entity.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return projects, nil
}

func (repo *ProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = repo.now().UTC()
	}
	if _, err := repo.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("Create: %w", translateWriteError(err))
	}
	return nil
}
