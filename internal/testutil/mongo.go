// Package testutil holds helpers for tests that run against a live MongoDB
// replica set. Tests using it carry the integration build tag.
package testutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"pawcare/pkg/client"
	"pawcare/pkg/config"
	"pawcare/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultMongoURI   = "mongodb://localhost:27017/?replicaSet=rs0"
	ConnectionTimeout = 10 * time.Second
)

// MongoHelper owns a throwaway database for one test.
type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
}

func NewMongoHelper(t *testing.T) *MongoHelper {
	t.Helper()

	mongoURI := os.Getenv("TEST_MONGO_URI")
	if mongoURI == "" {
		mongoURI = DefaultMongoURI
	}

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	c, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := c.Ping(ctx, nil); err != nil {
		t.Skipf("MongoDB not reachable at %s: %v", mongoURI, err)
	}

	dbName := fmt.Sprintf("pawcare_test_%d", time.Now().UnixNano())
	h := &MongoHelper{
		Client:   c,
		Database: c.Database(dbName),
		DBName:   dbName,
	}
	t.Cleanup(func() { h.close(t) })
	return h
}

// Config returns a service config bound to the helper's database.
func (m *MongoHelper) Config() *config.Config {
	loc := time.UTC
	return &config.Config{
		MongoDatabaseName:  m.DBName,
		MongoOpTimeout:     5 * time.Second,
		MaxBookingsPerSlot: config.DefaultMaxBookingsPerSlot,
		BookingTimeZone:    loc.String(),
		BookingLocation:    loc,
		Log:                logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard, Service: "integration"}),
		Client:             &client.Client{Mongo: m.Client},
	}
}

func (m *MongoHelper) CountDocuments(t *testing.T, collectionName string) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := m.Database.Collection(collectionName).CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collectionName, err)
	}
	return count
}

func (m *MongoHelper) close(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.Database.Drop(ctx); err != nil {
		t.Logf("warning: failed to drop %s: %v", m.DBName, err)
	}
	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}
