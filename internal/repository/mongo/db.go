package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"cvos/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// The connection can succeed while the server is unresponsive, so ping with its own deadline.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection. Failures are logged,
// not fatal: the service works without them, only slower.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) {
	ensure := map[string][]mongo.IndexModel{
		profileCollectionName:   profileIndexes(),
		clientCollectionName:    clientIndexes(),
		programCollectionName:   programIndexes(),
		mesocycleCollectionName: mesocycleIndexes(),
		dayCollectionName:       dayIndexes(),
		blockCollectionName:     blockIndexes(),
		exerciseCollectionName:  exerciseIndexes(),
	}
	for name, models := range ensure {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			log.Warn("failed to create indexes", zap.String("collection", name), zap.Error(err))
		}
	}
}

func insertedID(result *mongo.InsertOneResult) (primitive.ObjectID, error) {
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return id, nil
}

// mapInsertErr turns unique-index violations into repository.ErrDuplicate.
func mapInsertErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}

// exactFold matches s exactly, ignoring case.
func exactFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}

// containsFold matches s anywhere, ignoring case.
func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}
