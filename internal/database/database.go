package database

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const defaultMongoDatabase = "nutrameter"

// ConnectMongo creates a client and pings it. A failed ping is logged, not
// returned: the driver reconnects on its own and the store gateway serves
// from the fallback store until it does.
func ConnectMongo(ctx context.Context, mongoURI string, timeout time.Duration, logger *zap.Logger) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(mongoURI)
	// Keep server selection inside the per-operation budget so an unreachable
	// cluster surfaces as a timeout instead of hanging the request.
	clientOptions.SetServerSelectionTimeout(timeout)
	clientOptions.SetConnectTimeout(timeout)

	logger.Info("connecting to MongoDB")
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		logger.Warn("MongoDB ping failed, continuing with fallback store available", zap.Error(err))
		return client, nil
	}

	logger.Info("connected to MongoDB")
	return client, nil
}

// MongoDatabaseName returns name when set, otherwise the database path of the
// connection string, otherwise "nutrameter".
func MongoDatabaseName(mongoURI, name string) string {
	if name != "" {
		return name
	}
	// Format: mongodb://host/database_name?options
	rest := mongoURI
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	slash := strings.Index(rest, "/")
	if slash < 0 {
		return defaultMongoDatabase
	}
	db := strings.Split(rest[slash+1:], "?")[0]
	if db == "" {
		return defaultMongoDatabase
	}
	return db
}

// EnsureMongoIndexes creates the indexes the stores rely on. Safe to run
// repeatedly.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = db.Collection("meals").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "meal_type", Value: 1}}},
	})
	if err != nil {
		return err
	}
	_, err = db.Collection("progress").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}},
	})
	return err
}

func DisconnectMongo(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}
