package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/biolink/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxPageItems caps each content list of a page snapshot.
const maxPageItems = 100

// ContentRepository reads and purges the blocks, events and showcases of a page.
// Their CRUD lives outside this service.
type ContentRepository interface {
	GetBlocksByPageID(ctx context.Context, pageID string) ([]models.Block, error)
	GetEventsByPageID(ctx context.Context, pageID string) ([]models.Event, error)
	GetShowcasesByPageID(ctx context.Context, pageID string) ([]models.Showcase, error)
	DeleteByPageID(ctx context.Context, pageID string) error
}

type MongoContentRepository struct {
	blocks    *mongo.Collection
	events    *mongo.Collection
	showcases *mongo.Collection
}

func NewMongoContentRepository(db *mongo.Database) *MongoContentRepository {
	return &MongoContentRepository{
		blocks:    db.Collection(CollectionBlocks),
		events:    db.Collection(CollectionEvents),
		showcases: db.Collection(CollectionShowcases),
	}
}

// GetBlocksByPageID returns blocks in display order
func (r *MongoContentRepository) GetBlocksByPageID(ctx context.Context, pageID string) ([]models.Block, error) {
	blocks := []models.Block{}
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}}).SetLimit(maxPageItems)
	if err := findAll(ctx, r.blocks, bson.M{"page_id": pageID}, opts, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *MongoContentRepository) GetEventsByPageID(ctx context.Context, pageID string) ([]models.Event, error) {
	events := []models.Event{}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(maxPageItems)
	if err := findAll(ctx, r.events, bson.M{"page_id": pageID}, opts, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *MongoContentRepository) GetShowcasesByPageID(ctx context.Context, pageID string) ([]models.Showcase, error) {
	showcases := []models.Showcase{}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(maxPageItems)
	if err := findAll(ctx, r.showcases, bson.M{"page_id": pageID}, opts, &showcases); err != nil {
		return nil, err
	}
	return showcases, nil
}

// DeleteByPageID removes every dependent of a page, one collection after another.
// A failure stops the sequence; already purged collections stay purged.
func (r *MongoContentRepository) DeleteByPageID(ctx context.Context, pageID string) error {
	for _, c := range []*mongo.Collection{r.blocks, r.events, r.showcases} {
		if _, err := c.DeleteMany(ctx, bson.M{"page_id": pageID}); err != nil {
			return fmt.Errorf("delete %s of page %s: %w", c.Name(), pageID, err)
		}
	}
	return nil
}

func findAll(ctx context.Context, c *mongo.Collection, filter bson.M, opts *options.FindOptions, out any) error {
	cursor, err := c.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}
