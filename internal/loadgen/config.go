package loadgen

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned by Run when the configuration cannot drive a run.
var ErrInvalidConfig = errors.New("invalid load configuration")

// Config holds configuration for a load run
type Config struct {
	BaseURL    string        // Base URL of the service
	NumRecords int           // Number of valid records to submit
	NumInvalid int           // Number of malformed payloads to submit
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Seed       uint64        // Seed for the record generator
	Verbose    bool          // Enable verbose logging
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	}
	if c.NumRecords < 0 || c.NumInvalid < 0 {
		return fmt.Errorf("%w: record counts must be non-negative", ErrInvalidConfig)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Payload is a request body for /model-construct. Values are numbers or
// numeric strings, matching what browser forms send.
type Payload map[string]any

// ConstructResponse is the success body of /model-construct.
type ConstructResponse struct {
	Message string           `json:"message"`
	DataOut []map[string]any `json:"data_out"`
	Status  string           `json:"status"`
}

// Stats holds run statistics
type Stats struct {
	RunID            string
	RecordsGenerated int
	InvalidGenerated int
	Submitted        int
	Accepted         int
	Rejected         int
	Unexpected       int
	Failed           int
	StoredRecords    int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
