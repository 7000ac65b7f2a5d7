package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound indicates a lookup missed. Returned by stores so handlers can
// tell a missing record apart from a store failure.
var ErrNotFound = errors.New("not found")

// FormStructure is the cached description of a form's fields, pushed by the
// backend and served to the frontend. At most one active structure exists
// per form ID, writes replace the prior document wholesale.
type FormStructure struct {
	// FormID uniquely identifies the form the structure describes
	FormID string `bson:"form_id" json:"form_id"`

	// Structure is the opaque pushed document. Its shape is never
	// interpreted by the relay, only stored and served back.
	Structure map[string]interface{} `bson:"structure" json:"structure"`

	// Version is an advisory counter incremented on every save
	Version int64 `bson:"version" json:"version"`

	// CreatedAt is when the structure was first pushed
	CreatedAt time.Time `bson:"created_at" json:"created_at"`

	// UpdatedAt is when the structure was last overwritten
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// StructureStore saves and retrieves form structures by form ID
type StructureStore interface {
	// Save upserts a structure document under formID. Any prior value is
	// overwritten unconditionally, last write wins.
	Save(ctx context.Context, formID string, structure map[string]interface{}) error

	// Get returns the structure stored under formID, or ErrNotFound
	Get(ctx context.Context, formID string) (*FormStructure, error)
}

// MongoStructureStore implements StructureStore on a MongoDB collection
type MongoStructureStore struct {
	// Coll is the structures collection
	Coll *mongo.Collection
}

// Save implements StructureStore.Save
func (s MongoStructureStore) Save(ctx context.Context, formID string, structure map[string]interface{}) error {
	now := time.Now().UTC()

	_, err := s.Coll.UpdateOne(ctx,
		bson.D{{"form_id", formID}},
		bson.D{
			{"$set", bson.D{
				{"structure", structure},
				{"updated_at", now},
			}},
			{"$setOnInsert", bson.D{
				{"created_at", now},
			}},
			{"$inc", bson.D{
				{"version", int64(1)},
			}},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert structure for form %s: %s",
			formID, err.Error())
	}

	return nil
}

// Get implements StructureStore.Get
func (s MongoStructureStore) Get(ctx context.Context, formID string) (*FormStructure, error) {
	var structure FormStructure

	err := s.Coll.FindOne(ctx, bson.D{{"form_id", formID}}).Decode(&structure)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to find structure for form %s: %s",
			formID, err.Error())
	}

	return &structure, nil
}
