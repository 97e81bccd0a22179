//go:build integration

package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"roomly/pkg/client"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultDatabaseName = "roomly"
	DefaultServerURL    = "http://localhost:8080"
	ConnectionTimeout   = 10 * time.Second
	HealthCheckTimeout  = 30 * time.Second
)

// TestEnv points the suite at a running roomly server and its database.
type TestEnv struct {
	MongoURI     string
	DatabaseName string
	ServerURL    string
}

func NewTestEnv() *TestEnv {
	return &TestEnv{
		MongoURI:     getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
		ServerURL:    getEnv("TEST_SERVER_URL", DefaultServerURL),
	}
}

// Setup waits for the server, empties every collection and returns a
// database handle that Cleanup closes.
func (e *TestEnv) Setup(t *testing.T) *mongo.Database {
	t.Helper()

	if err := client.NewHttpClient(e.ServerURL).WaitForHealthy(HealthCheckTimeout); err != nil {
		t.Fatalf("server not reachable: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(e.MongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	db := mc.Database(e.DatabaseName)
	CleanDatabase(t, db)

	t.Cleanup(func() {
		CleanDatabase(t, db)
		_ = mc.Disconnect(context.Background())
	})
	return db
}

// CleanDatabase removes documents but keeps collections, validators and
// indexes created by the migration job.
func CleanDatabase(t *testing.T, db *mongo.Database) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("failed to list collections: %v", err)
	}
	for _, name := range names {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			t.Fatalf("failed to clean collection %s: %v", name, err)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
