package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/formrelay/webform-relay-api/jobs"
	"github.com/formrelay/webform-relay-api/metrics"
	"github.com/formrelay/webform-relay-api/models"
)

// ReqLoggerHandler logs every request and submits a job to persist an API
// usage record for it off the request path.
type ReqLoggerHandler struct {
	BaseHandler

	// Handler to actually handle requests
	Handler http.Handler

	// JobRunner is used to run usage recording jobs. Can be nil, in which
	// case requests are only logged.
	JobRunner *jobs.JobRunner
}

// ServeHTTP implements http.Handler
func (h ReqLoggerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Logger.Debugf("%s %s", r.Method, r.URL.String())

	// Capture response status for the usage record
	respCode := http.StatusOK

	metricsW := metrics.MetricsResponseWriter{
		ResponseWriter: w,
		OnWriteHeader: func(code int) {
			respCode = code
		},
	}

	// Handle
	h.Handler.ServeHTTP(metricsW, r)

	if h.JobRunner == nil {
		return
	}

	// Operational endpoints would drown out the interesting records
	if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
		return
	}

	usage := models.APIUsage{
		Method:     r.Method,
		Path:       r.URL.Path,
		StatusCode: respCode,
		CallerIP:   CallerIP(r),
		UserAgent:  r.Header.Get("User-Agent"),
		Timestamp:  time.Now().UTC(),
	}

	usageBytes, err := json.Marshal(usage)
	if err != nil {
		panic(fmt.Errorf("failed to marshal API usage record into JSON: %s",
			err.Error()))
	}

	h.JobRunner.Submit(jobs.JobTypeRecordUsage, usageBytes)
}
