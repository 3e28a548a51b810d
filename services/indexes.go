package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the services rely on. The unique grant
// index is what makes the upsert in Grant race-safe; the unique token index
// guards against the astronomically unlikely token collision.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("grants").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "resource_type", Value: 1},
			{Key: "resource_id", Value: 1},
			{Key: "grantee_email", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create grant index: %w", err)
	}

	_, err = db.Collection("grants").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "grantee_email", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create grantee index: %w", err)
	}

	_, err = db.Collection("links").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "token", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create link token index: %w", err)
	}

	_, err = db.Collection("folders").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "parent_id", Value: 1},
			{Key: "is_deleted", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create folder parent index: %w", err)
	}

	_, err = db.Collection("files").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "folder_id", Value: 1},
			{Key: "is_deleted", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create file folder index: %w", err)
	}

	_, err = db.Collection("files").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "owner_email", Value: 1},
			{Key: "is_deleted", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create file owner index: %w", err)
	}

	return nil
}
