// Package mongo stores quizzes, scores and users in MongoDB using the
// collection layout of the original document schema: quizzes, scores, users.
package mongo

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	quizzesCollection = "quizzes"
	scoresCollection  = "scores"
	usersCollection   = "users"
)

// Connect opens a pooled client and verifies the connection with a ping.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(100).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(60 * time.Second).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.Printf("connected to MongoDB database %s", database)
	return client, client.Database(database), nil
}

// Disconnect closes the client, waiting at most 10s for in-flight operations.
func Disconnect(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Printf("disconnect mongo: %v", err)
	}
}

// EnsureIndexes creates the unique account indexes and the score lookup indexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	userIndexes := []mongo.IndexModel{
		{Keys: ascending("username"), Options: options.Index().SetUnique(true)},
		{Keys: ascending("email"), Options: options.Index().SetUnique(true)},
	}
	if _, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	scoreIndexes := []mongo.IndexModel{
		{Keys: ascending("userId")},
		{Keys: ascending("quizId")},
		{Keys: ascending("completedAt")},
	}
	if _, err := db.Collection(scoresCollection).Indexes().CreateMany(ctx, scoreIndexes); err != nil {
		return fmt.Errorf("failed to create score indexes: %w", err)
	}
	return nil
}
