package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/formrelay/webform-relay-api/models"
)

// RecordUsageJob persists one API usage record off the request path.
// Expects the data passed to Do() to be a models.APIUsage in JSON form.
type RecordUsageJob struct {
	// Ctx is the application context
	Ctx context.Context

	// Usage is used to persist API usage records
	Usage models.UsageStore
}

// Do implements Job
func (j RecordUsageJob) Do(data []byte) error {
	var usage models.APIUsage

	if err := json.Unmarshal(data, &usage); err != nil {
		return fmt.Errorf("failed to unmarshal data as models.APIUsage: %s",
			err.Error())
	}

	if err := j.Usage.Record(j.Ctx, usage); err != nil {
		return fmt.Errorf("failed to record API usage: %s", err.Error())
	}

	return nil
}
