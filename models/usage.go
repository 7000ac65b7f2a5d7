package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// APIUsage is one record of an API request, persisted for offline debugging
// of API usage. Growth is unbounded, pruning is an operator concern.
type APIUsage struct {
	// Method is the request HTTP method
	Method string `bson:"method" json:"method"`

	// Path is the request path
	Path string `bson:"path" json:"path"`

	// StatusCode is the response HTTP status code
	StatusCode int `bson:"status_code" json:"status_code"`

	// CallerIP is the IP the request came from
	CallerIP string `bson:"caller_ip" json:"caller_ip"`

	// UserAgent is the request's User-Agent header value
	UserAgent string `bson:"user_agent" json:"user_agent"`

	// Timestamp is when the request was received
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// UsageStore persists API usage records
type UsageStore interface {
	// Record stores one usage record
	Record(ctx context.Context, usage APIUsage) error
}

// MongoUsageStore implements UsageStore on a MongoDB collection
type MongoUsageStore struct {
	// Coll is the api_usage collection
	Coll *mongo.Collection
}

// Record implements UsageStore.Record
func (s MongoUsageStore) Record(ctx context.Context, usage APIUsage) error {
	if _, err := s.Coll.InsertOne(ctx, usage); err != nil {
		return fmt.Errorf("failed to insert API usage record: %s", err.Error())
	}

	return nil
}
