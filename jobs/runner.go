package jobs

import (
	"context"

	"github.com/formrelay/webform-relay-api/metrics"
	"github.com/formrelay/webform-relay-api/models"

	"github.com/Noah-Huppert/golog"
	"github.com/prometheus/client_golang/prometheus"
)

// JobTypeT is used to specify what type of job to start
type JobTypeT string

// JobTypeRecordUsage identifies a job of type RecordUsage
var JobTypeRecordUsage JobTypeT = "record_usage"

// JobStartRequest provides informtion required to start a job
type JobStartRequest struct {
	// Type of job to start
	Type JobTypeT

	// Data required to start job
	Data []byte
}

// JobRunner manages starting jobs and shutting down gracefully
type JobRunner struct {
	// queue is a channel to which requests to start jobs are sent
	queue chan JobStartRequest

	// jobInstances holds jobs which can be run
	jobInstances map[JobTypeT]Job

	// Ctx is the application context
	Ctx context.Context

	// Logger logs job activity
	Logger golog.Logger

	// Metrics holds internal metrics recorders
	Metrics metrics.Metrics

	// Usage is used to persist API usage records
	Usage models.UsageStore
}

// Init initializes a JobRunner. The Submit() and Run() methods will not work properly
// unless this method is called.
func (r *JobRunner) Init() {
	r.queue = make(chan JobStartRequest)

	r.jobInstances = map[JobTypeT]Job{}
	r.jobInstances[JobTypeRecordUsage] = RecordUsageJob{
		Ctx:   r.Ctx,
		Usage: r.Usage,
	}
}

// Submit new job
func (r JobRunner) Submit(jobType JobTypeT, data []byte) {
	r.Metrics.JobsSubmittedTotal.With(prometheus.Labels{
		"job_type": string(jobType),
	}).Inc()

	r.queue <- JobStartRequest{
		Type: jobType,
		Data: data,
	}
}

// Run reads requests off the queue and runs the matching jobs.
// If the JobRunner.Ctx is canceled JobRunner will stop accepting jobs.
// Should be run in a goroutine b/c this method blocks to run jobs.
func (r JobRunner) Run() {
	for {
		select {
		case <-r.Ctx.Done():
			return

		case req := <-r.queue:
			job, ok := r.jobInstances[req.Type]
			if !ok {
				r.Logger.Fatalf("cannot handle job type: %s", req.Type)
			}

			durationTimer := r.Metrics.StartTimer()
			successful := "1"

			if err := job.Do(req.Data); err != nil {
				successful = "0"
				r.Logger.Errorf("failed to run %s job: %s",
					req.Type, err.Error())
			}

			durationTimer.Finish(r.Metrics.JobsRunDurationsMilliseconds.
				With(prometheus.Labels{
					"job_type":   string(req.Type),
					"successful": successful,
				}))
		}
	}
}
