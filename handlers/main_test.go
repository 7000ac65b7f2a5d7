package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/formrelay/webform-relay-api/config"
	"github.com/formrelay/webform-relay-api/metrics"
	"github.com/formrelay/webform-relay-api/models"

	"github.com/Noah-Huppert/golog"
)

// testMetrics is shared by all tests in the package. Prometheus collectors
// can only be registered once per process.
var testMetrics = metrics.NewMetrics()

// newTestBaseHandler builds a BaseHandler wired to in memory stores
func newTestBaseHandler(structures models.StructureStore, submissions models.SubmissionStore) BaseHandler {
	return BaseHandler{
		Ctx:         context.Background(),
		Logger:      golog.NewStdLogger("test"),
		Cfg:         &config.Config{},
		Metrics:     testMetrics,
		Structures:  structures,
		Submissions: submissions,
	}
}

// memStructureStore implements models.StructureStore in memory for tests
type memStructureStore struct {
	mu         sync.Mutex
	structures map[string]*models.FormStructure
}

func newMemStructureStore() *memStructureStore {
	return &memStructureStore{
		structures: map[string]*models.FormStructure{},
	}
}

// Save implements models.StructureStore.Save
func (s *memStructureStore) Save(ctx context.Context, formID string, structure map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	existing, ok := s.structures[formID]
	if !ok {
		s.structures[formID] = &models.FormStructure{
			FormID:    formID,
			Structure: structure,
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return nil
	}

	existing.Structure = structure
	existing.Version++
	existing.UpdatedAt = now

	return nil
}

// Get implements models.StructureStore.Get
func (s *memStructureStore) Get(ctx context.Context, formID string) (*models.FormStructure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	structure, ok := s.structures[formID]
	if !ok {
		return nil, models.ErrNotFound
	}

	copied := *structure

	return &copied, nil
}

// memSubmissionStore implements models.SubmissionStore in memory for tests
type memSubmissionStore struct {
	mu          sync.Mutex
	clock       time.Time
	submissions []*models.Submission
}

func newMemSubmissionStore() *memSubmissionStore {
	return &memSubmissionStore{
		clock: time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Enqueue implements models.SubmissionStore.Enqueue
func (s *memSubmissionStore) Enqueue(ctx context.Context, formID string, data map[string]interface{}) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Tick a fake clock so creation order is unambiguous
	s.clock = s.clock.Add(time.Millisecond)

	submission := &models.Submission{
		SubmissionID: models.NewSubmissionID(formID, s.clock),
		FormID:       formID,
		Data:         data,
		Status:       models.SubmissionStatusPending,
		CreatedAt:    s.clock,
	}

	s.submissions = append(s.submissions, submission)

	copied := *submission

	return &copied, nil
}

// DrainPending implements models.SubmissionStore.DrainPending
func (s *memSubmissionStore) DrainPending(ctx context.Context, limit int64) ([]models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := []models.Submission{}

	for _, submission := range s.submissions {
		if submission.Status == models.SubmissionStatusPending {
			pending = append(pending, *submission)
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})

	if int64(len(pending)) > limit {
		pending = pending[:limit]
	}

	return pending, nil
}

// SetStatus implements models.SubmissionStore.SetStatus
func (s *memSubmissionStore) SetStatus(ctx context.Context, id string, status models.SubStatusT, errorMessage string) (*models.Submission, error) {
	if !models.ValidSubmissionStatus(status) {
		return nil, models.ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, submission := range s.submissions {
		if submission.SubmissionID != id {
			continue
		}

		submission.Status = status

		switch status {
		case models.SubmissionStatusSent:
			sentAt := time.Now().UTC()
			submission.SentAt = &sentAt
		case models.SubmissionStatusFailed:
			submission.RetryCount++
			submission.ErrorMessage = errorMessage
		}

		copied := *submission

		return &copied, nil
	}

	return nil, models.ErrNotFound
}

// Filtered implements models.SubmissionStore.Filtered
func (s *memSubmissionStore) Filtered(ctx context.Context, filters models.SubmissionFilters) ([]models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := []models.Submission{}

	for _, submission := range s.submissions {
		if filters.Status != "" && submission.Status != filters.Status {
			continue
		}
		if filters.FormID != "" && submission.FormID != filters.FormID {
			continue
		}
		if !filters.From.IsZero() && submission.CreatedAt.Before(filters.From) {
			continue
		}
		if !filters.To.IsZero() && !submission.CreatedAt.Before(filters.To) {
			continue
		}

		matched = append(matched, *submission)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[j].CreatedAt.Before(matched[i].CreatedAt)
	})

	return matched, nil
}
