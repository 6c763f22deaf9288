//go:build integration

package containers

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoMigration "gatepass/internal/migrations/mongo"
	"gatepass/pkg/client"
	"gatepass/pkg/config"
	"gatepass/pkg/logger"
)

type MongoContainer struct {
	URI      string
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongoContainer starts a throwaway MongoDB with the gatepass collections,
// validators and indexes already migrated.
func NewMongoContainer(t *testing.T) *MongoContainer {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tcmongo.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start mongo container: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get mongo connection string: %v", err)
	}

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}
	t.Cleanup(func() { _ = mc.Disconnect(context.Background()) })

	db := mc.Database("gatepass_test")
	if err := mongoMigration.RunMigration(ctx, db, logger.Discard()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return &MongoContainer{URI: uri, Client: mc, Database: db}
}

// Config returns a config whose client points at the container.
func (m *MongoContainer) Config() *config.Config {
	return &config.Config{
		MongoURI:          m.URI,
		MongoDatabaseName: m.Database.Name(),
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		Log:               logger.Discard(),
		Client:            &client.Client{Mongo: m.Client},
	}
}
