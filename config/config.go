package config

import (
	"encoding/json"
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	// HTTPAddr is the HTTP server's bind address
	HTTPAddr string `default:":5000" split_words:"true" required:"true"`

	// DbHost is the MongoDB server host
	DbHost string `default:"localhost" split_words:"true" required:"true"`

	// DbPort is the MongoDB server port
	DbPort int `default:"27017" split_words:"true" required:"true"`

	// DbUser is the MongoDB user
	DbUser string `default:"formrelay-dev" split_words:"true" required:"true"`

	// DbPassword is the MongoDB password
	DbPassword string `default:"secretpassword" split_words:"true" required:"true"`

	// DbName is the database to connect to inside MongoDB
	DbName string `default:"webform-relay-api-dev" split_words:"true" required:"true"`

	// StructureAPIToken is the shared secret which gates the structure push
	// endpoint and the submission drain / status endpoints used by the
	// polling collector
	StructureAPIToken string `split_words:"true"`

	// SubmissionAPIToken is the shared secret which gates the submission
	// create endpoint
	SubmissionAPIToken string `split_words:"true"`

	// AllowAnonymous permits a token field above to be empty. An empty token
	// disables authentication for that endpoint group entirely. Without this
	// explicit opt out the server refuses to start if a token is empty.
	AllowAnonymous bool `default:"false" split_words:"true"`

	// RateLimitMaxRequests is the number of requests a single caller IP may
	// make within one rate limit window
	RateLimitMaxRequests int `default:"100" split_words:"true" required:"true"`

	// RateLimitWindowSeconds is the length of one rate limit window in seconds
	RateLimitWindowSeconds int `default:"60" split_words:"true" required:"true"`
}

// NewConfig loads configuration values from environment variables
func NewConfig() (*Config, error) {
	var config Config

	if err := envconfig.Process("app", &config); err != nil {
		return nil, fmt.Errorf("error loading values from environment variables: %s",
			err.Error())
	}

	return &config, nil
}

// String returns a log safe version of Config in string form. Redacts any sensative fields.
func (c Config) String() (string, error) {
	if c.DbPassword != "" {
		c.DbPassword = "REDACTED_NOT_EMPTY"
	}

	if c.StructureAPIToken != "" {
		c.StructureAPIToken = "REDACTED_NOT_EMPTY"
	}

	if c.SubmissionAPIToken != "" {
		c.SubmissionAPIToken = "REDACTED_NOT_EMPTY"
	}

	configBytes, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to convert configuration into JSON: %s", err.Error())
	}

	return string(configBytes), nil
}
