package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SubStatusT is a type which valid values for Submission.Status are
// represented as
type SubStatusT string

// SubmissionStatusPending indicates the submission is queued and has not been
// picked up by the polling collector yet
const SubmissionStatusPending SubStatusT = "pending"

// SubmissionStatusProcessing indicates the polling collector has picked the
// submission up and delivery is in flight
const SubmissionStatusProcessing SubStatusT = "processing"

// SubmissionStatusSent indicates the submission was delivered
const SubmissionStatusSent SubStatusT = "sent"

// SubmissionStatusFailed indicates a delivery attempt failed. The collector
// may re-queue the submission explicitly, the relay never retries on its own.
const SubmissionStatusFailed SubStatusT = "failed"

// ValidSubmissionStatus tells if a string is one of the recognized
// submission status values
func ValidSubmissionStatus(s SubStatusT) bool {
	return s == SubmissionStatusPending ||
		s == SubmissionStatusProcessing ||
		s == SubmissionStatusSent ||
		s == SubmissionStatusFailed
}

// ErrInvalidStatus indicates a status transition was requested with a value
// outside the recognized set. The record is never mutated in this case.
var ErrInvalidStatus = errors.New("invalid submission status")

// Submission is one user supplied payload queued for the polling collector
type Submission struct {
	// SubmissionID uniquely identifies the submission. Assigned server side
	// in the format {form_id}_{epoch_millis}_{random_suffix}.
	SubmissionID string `bson:"submission_id" json:"submission_id"`

	// FormID is the form the submission belongs to
	FormID string `bson:"form_id" json:"form_id"`

	// Data is the opaque user supplied document
	Data map[string]interface{} `bson:"data" json:"data"`

	// Status is the delivery state of the submission
	Status SubStatusT `bson:"status" json:"status"`

	// RetryCount is the number of failed delivery attempts recorded so far
	RetryCount int `bson:"retry_count" json:"retry_count"`

	// ErrorMessage holds the reason reported with the last failed transition
	ErrorMessage string `bson:"error_message,omitempty" json:"error_message,omitempty"`

	// CreatedAt is assigned by the server when the submission is enqueued.
	// Caller supplied values are never trusted for this field.
	CreatedAt time.Time `bson:"created_at" json:"created_at"`

	// SentAt is set when the submission transitions to sent
	SentAt *time.Time `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
}

// NewSubmissionID builds a submission ID from the form ID, the creation time
// in milliseconds since the epoch, and a random suffix. Globally unique with
// overwhelming probability.
func NewSubmissionID(formID string, createdAt time.Time) string {
	suffix := strings.Split(uuid.New().String(), "-")[0]

	return fmt.Sprintf("%s_%d_%s", formID,
		createdAt.UnixNano()/int64(time.Millisecond), suffix)
}

// SubmissionFilters narrow a submission list query. Zero values mean the
// dimension is not filtered on. Filters combine conjunctively.
type SubmissionFilters struct {
	// Status restricts results to one delivery state
	Status SubStatusT

	// FormID restricts results to one form
	FormID string

	// From restricts results to submissions created at or after this time
	From time.Time

	// To restricts results to submissions created before this time
	To time.Time
}

// SubmissionStore queues and tracks submissions
type SubmissionStore interface {
	// Enqueue stores data as a new pending submission for formID. The
	// submission ID and creation timestamp are assigned server side.
	Enqueue(ctx context.Context, formID string, data map[string]interface{}) (*Submission, error)

	// DrainPending returns up to limit pending submissions in ascending
	// creation order. Pure read, submissions stay pending until a status
	// transition acknowledges them. Two collectors draining concurrently
	// can observe overlapping sets, delivery is at least once.
	DrainPending(ctx context.Context, limit int64) ([]Submission, error)

	// SetStatus transitions a submission's delivery state and returns the
	// updated record. Transitioning to sent records the sent time,
	// transitioning to failed increments the retry count and stores
	// errorMessage. Returns ErrInvalidStatus for unrecognized status values
	// without mutating anything, ErrNotFound for an unknown ID.
	SetStatus(ctx context.Context, id string, status SubStatusT, errorMessage string) (*Submission, error)

	// Filtered returns submissions matching filters in reverse
	// chronological order, for operational visibility
	Filtered(ctx context.Context, filters SubmissionFilters) ([]Submission, error)
}

// MongoSubmissionStore implements SubmissionStore on a MongoDB collection
type MongoSubmissionStore struct {
	// Coll is the submissions collection
	Coll *mongo.Collection
}

// Enqueue implements SubmissionStore.Enqueue
func (s MongoSubmissionStore) Enqueue(ctx context.Context, formID string, data map[string]interface{}) (*Submission, error) {
	now := time.Now().UTC()

	submission := Submission{
		SubmissionID: NewSubmissionID(formID, now),
		FormID:       formID,
		Data:         data,
		Status:       SubmissionStatusPending,
		RetryCount:   0,
		CreatedAt:    now,
	}

	if _, err := s.Coll.InsertOne(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to insert submission for form %s: %s",
			formID, err.Error())
	}

	return &submission, nil
}

// DrainPending implements SubmissionStore.DrainPending
func (s MongoSubmissionStore) DrainPending(ctx context.Context, limit int64) ([]Submission, error) {
	findOpts := options.Find().
		SetSort(bson.D{{"created_at", 1}}).
		SetLimit(limit)

	cursor, err := s.Coll.Find(ctx,
		bson.D{{"status", SubmissionStatusPending}}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending submissions: %s", err.Error())
	}

	return decodeSubmissions(ctx, cursor)
}

// SetStatus implements SubmissionStore.SetStatus
func (s MongoSubmissionStore) SetStatus(ctx context.Context, id string, status SubStatusT, errorMessage string) (*Submission, error) {
	if !ValidSubmissionStatus(status) {
		return nil, ErrInvalidStatus
	}

	set := bson.D{{"status", status}}
	update := bson.D{}

	switch status {
	case SubmissionStatusSent:
		set = append(set, bson.E{"sent_at", time.Now().UTC()})
	case SubmissionStatusFailed:
		set = append(set, bson.E{"error_message", errorMessage})
		update = append(update, bson.E{"$inc", bson.D{{"retry_count", 1}}})
	}

	update = append(update, bson.E{"$set", set})

	updateOpts := options.FindOneAndUpdate().
		SetReturnDocument(options.After)

	var submission Submission

	err := s.Coll.FindOneAndUpdate(ctx,
		bson.D{{"submission_id", id}}, update, updateOpts).Decode(&submission)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to update status of submission %s: %s",
			id, err.Error())
	}

	return &submission, nil
}

// Filtered implements SubmissionStore.Filtered
func (s MongoSubmissionStore) Filtered(ctx context.Context, filters SubmissionFilters) ([]Submission, error) {
	query := bson.D{}

	if filters.Status != "" {
		query = append(query, bson.E{"status", filters.Status})
	}

	if filters.FormID != "" {
		query = append(query, bson.E{"form_id", filters.FormID})
	}

	createdRange := bson.D{}
	if !filters.From.IsZero() {
		createdRange = append(createdRange, bson.E{"$gte", filters.From})
	}
	if !filters.To.IsZero() {
		createdRange = append(createdRange, bson.E{"$lt", filters.To})
	}
	if len(createdRange) > 0 {
		query = append(query, bson.E{"created_at", createdRange})
	}

	findOpts := options.Find().
		SetSort(bson.D{{"created_at", -1}})

	cursor, err := s.Coll.Find(ctx, query, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %s", err.Error())
	}

	return decodeSubmissions(ctx, cursor)
}

// decodeSubmissions drains a cursor into a submissions slice
func decodeSubmissions(ctx context.Context, cursor *mongo.Cursor) ([]Submission, error) {
	submissions := []Submission{}

	for cursor.Next(ctx) {
		var submission Submission

		if err := cursor.Decode(&submission); err != nil {
			return nil, fmt.Errorf("failed to decode submission: %s", err.Error())
		}

		submissions = append(submissions, submission)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("submissions cursor failed: %s", err.Error())
	}

	return submissions, nil
}
