package repository

import (
	"context"
	"errors"
	"fmt"
	otperrors "gatepass/internal/otp/errors"
	"gatepass/pkg/config"
	mongodb "gatepass/pkg/db/mongo"
	"gatepass/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "otp_codes"
)

type OTPCodeRepository interface {
	// Replace stores code as the only active code for its phone.
	Replace(ctx context.Context, code *model.OTPCode) error
	// ConsumeAttempt counts one verification attempt against the active code
	// and returns it with the updated counter.
	ConsumeAttempt(ctx context.Context, phone string, now time.Time, maxAttempts int) (*model.OTPCode, error)
	Delete(ctx context.Context, phone string) error
}

type mongoOTPCodeRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoOTPCodeRepository(cfg *config.Config) OTPCodeRepository {
	return NewOTPCodeRepository(cfg, cfg.Client.Mongo.Database(cfg.MongoDatabaseName))
}

func NewOTPCodeRepository(cfg *config.Config, db *mongo.Database) OTPCodeRepository {
	return &mongoOTPCodeRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoOTPCodeRepository) Replace(ctx context.Context, code *model.OTPCode) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	code.ID = ""
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"phone": code.Phone}, code, opts); err != nil {
		return fmt.Errorf("failed to store one-time code: %w", err)
	}
	return nil
}

// ConsumeAttempt increments attempts in the same operation that checks the
// limit, so parallel guesses cannot exceed maxAttempts.
func (r *mongoOTPCodeRepository) ConsumeAttempt(ctx context.Context, phone string, now time.Time, maxAttempts int) (*model.OTPCode, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	active := bson.M{"phone": phone, "expires_at": bson.M{"$gt": now}}
	filter := bson.M{
		"phone":      phone,
		"expires_at": bson.M{"$gt": now},
		"attempts":   bson.M{"$lt": maxAttempts},
	}
	update := bson.M{"$inc": bson.M{"attempts": 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var code model.OTPCode
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&code)
	if err == nil {
		return &code, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to record one-time code attempt: %w", err)
	}

	count, err := r.collection.CountDocuments(ctx, active, options.Count().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to look up one-time code: %w", err)
	}
	if count > 0 {
		return nil, otperrors.ErrTooManyAttempts
	}
	return nil, otperrors.ErrNotFound
}

func (r *mongoOTPCodeRepository) Delete(ctx context.Context, phone string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"phone": phone}); err != nil {
		return fmt.Errorf("failed to delete one-time code: %w", err)
	}
	return nil
}
