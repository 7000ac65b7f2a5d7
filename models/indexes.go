package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	// StructuresCollName holds FormStructure documents
	StructuresCollName = "structures"

	// SubmissionsCollName holds Submission documents
	SubmissionsCollName = "submissions"

	// APIUsageCollName holds APIUsage documents
	APIUsageCollName = "api_usage"
)

// EnsureIndexes creates the indexes the stores rely on. Safe to call on
// every start, MongoDB treats existing identical indexes as a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	trueVal := true

	_, err := db.Collection(StructuresCollName).Indexes().CreateOne(ctx,
		mongo.IndexModel{
			Keys: bson.D{{"form_id", 1}},
			Options: &options.IndexOptions{
				Unique: &trueVal,
			},
		})
	if err != nil {
		return fmt.Errorf("failed to create structures form_id index: %s",
			err.Error())
	}

	submissionIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{"submission_id", 1}},
			Options: &options.IndexOptions{
				Unique: &trueVal,
			},
		},
		{Keys: bson.D{{"form_id", 1}}},
		{Keys: bson.D{{"status", 1}}},
		{Keys: bson.D{{"created_at", 1}}},
	}

	_, err = db.Collection(SubmissionsCollName).Indexes().CreateMany(ctx,
		submissionIndexes)
	if err != nil {
		return fmt.Errorf("failed to create submissions indexes: %s", err.Error())
	}

	return nil
}
