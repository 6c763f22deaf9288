package repository

import (
	"context"
	"errors"
	"fmt"
	visitorserrors "gatepass/internal/visitors/errors"
	"gatepass/pkg/config"
	mongodb "gatepass/pkg/db/mongo"
	"gatepass/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "visitor_groups"
)

type VisitorGroupRepository interface {
	Create(ctx context.Context, group *model.VisitorGroup) error
	ExistsByGroupID(ctx context.Context, groupID string) (bool, error)
	FindByGroupID(ctx context.Context, groupID string) (*model.VisitorGroup, error)
	FindAll(ctx context.Context) ([]model.VisitorGroup, error)
	Checkout(ctx context.Context, groupID string, at time.Time) (*model.VisitorGroup, error)
}

type mongoVisitorGroupRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoVisitorGroupRepository(cfg *config.Config) VisitorGroupRepository {
	return NewVisitorGroupRepository(cfg, cfg.Client.Mongo.Database(cfg.MongoDatabaseName))
}

func NewVisitorGroupRepository(cfg *config.Config, db *mongo.Database) VisitorGroupRepository {
	return &mongoVisitorGroupRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// Create inserts a new group. A clash on the group_id unique index surfaces
// as ErrDuplicateGroupID so the caller can pick another id.
func (r *mongoVisitorGroupRepository) Create(ctx context.Context, group *model.VisitorGroup) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, group)
	if err != nil {
		if mongodb.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", visitorserrors.ErrDuplicateGroupID, group.GroupID)
		}
		return fmt.Errorf("failed to create visitor group: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		group.ID = oid.Hex()
	}
	return nil
}

func (r *mongoVisitorGroupRepository) ExistsByGroupID(ctx context.Context, groupID string) (bool, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"group_id": groupID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to probe group id: %w", err)
	}
	return count > 0, nil
}

func (r *mongoVisitorGroupRepository) FindByGroupID(ctx context.Context, groupID string) (*model.VisitorGroup, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var group model.VisitorGroup
	err := r.collection.FindOne(ctx, bson.M{"group_id": groupID}).Decode(&group)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", visitorserrors.ErrNotFound, groupID)
		}
		return nil, fmt.Errorf("failed to find visitor group: %w", err)
	}
	return &group, nil
}

func (r *mongoVisitorGroupRepository) FindAll(ctx context.Context) ([]model.VisitorGroup, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	// _id breaks ties between groups registered in the same millisecond.
	opts := options.Find().SetSort(bson.D{{Key: "in_time", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query visitor groups: %w", err)
	}
	defer cursor.Close(ctx)

	groups := []model.VisitorGroup{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode visitor groups: %w", err)
	}
	return groups, nil
}

// Checkout sets out_time on a group that has none yet. The filter and the
// update run as one document operation, so concurrent calls for the same
// group see exactly one winner.
func (r *mongoVisitorGroupRepository) Checkout(ctx context.Context, groupID string, at time.Time) (*model.VisitorGroup, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"group_id": groupID, "out_time": nil}
	update := bson.M{"$set": bson.M{"out_time": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var group model.VisitorGroup
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&group)
	if err == nil {
		return &group, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to check out visitor group: %w", err)
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"group_id": groupID}, options.Count().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to classify checkout miss: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s", visitorserrors.ErrNotFound, groupID)
	}
	return nil, fmt.Errorf("%w: %s", visitorserrors.ErrAlreadyCheckedOut, groupID)
}
