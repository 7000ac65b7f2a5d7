package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDefaults ensures configuration loads with sensible development
// defaults when no environment variables are set
func TestDefaults(t *testing.T) {
	os.Clearenv()

	cfg, err := NewConfig()
	assert.Nil(t, err, "NewConfig should have responded with no error")

	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, "localhost", cfg.DbHost)
	assert.Equal(t, 27017, cfg.DbPort)
	assert.Equal(t, 100, cfg.RateLimitMaxRequests)
	assert.Equal(t, 60, cfg.RateLimitWindowSeconds)
	assert.False(t, cfg.AllowAnonymous)
	assert.Empty(t, cfg.StructureAPIToken)
	assert.Empty(t, cfg.SubmissionAPIToken)
}

// TestEnvOverrides ensures APP_ prefixed environment variables override the
// defaults
func TestEnvOverrides(t *testing.T) {
	os.Clearenv()

	env := map[string]string{
		"APP_HTTP_ADDR":                 ":8080",
		"APP_STRUCTURE_API_TOKEN":       "push-secret",
		"APP_SUBMISSION_API_TOKEN":      "pull-secret",
		"APP_RATE_LIMIT_MAX_REQUESTS":   "5",
		"APP_RATE_LIMIT_WINDOW_SECONDS": "30",
		"APP_ALLOW_ANONYMOUS":           "true",
	}

	for key, value := range env {
		err := os.Setenv(key, value)
		assert.NoErrorf(t, err, "failed to set \"%s\" key for test", key)
	}

	cfg, err := NewConfig()
	assert.Nil(t, err, "NewConfig should have responded with no error")

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "push-secret", cfg.StructureAPIToken)
	assert.Equal(t, "pull-secret", cfg.SubmissionAPIToken)
	assert.Equal(t, 5, cfg.RateLimitMaxRequests)
	assert.Equal(t, 30, cfg.RateLimitWindowSeconds)
	assert.True(t, cfg.AllowAnonymous)
}

// TestStringRedactsSecrets ensures the log safe form never contains secret
// values
func TestStringRedactsSecrets(t *testing.T) {
	cfg := Config{
		DbPassword:         "db-secret",
		StructureAPIToken:  "push-secret",
		SubmissionAPIToken: "pull-secret",
	}

	s, err := cfg.String()
	assert.Nil(t, err, "String should have responded with no error")

	assert.NotContains(t, s, "db-secret")
	assert.NotContains(t, s, "push-secret")
	assert.NotContains(t, s, "pull-secret")
	assert.Contains(t, s, "REDACTED_NOT_EMPTY")
}
