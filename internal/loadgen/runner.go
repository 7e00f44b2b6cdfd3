package loadgen

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/okian/basal/internal/domain/model"
	"github.com/okian/basal/internal/domain/normalize"
	"github.com/okian/basal/pkg/logger"
)

// Run executes a complete load run and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	stats := &Stats{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	}
	seed := config.Seed
	if seed == 0 {
		seed = uint64(stats.StartTime.UnixNano())
	}

	log := logger.Get().With(logger.String("run_id", stats.RunID))
	log.Info(ctx, "starting basal load run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("records", config.NumRecords),
		logger.Int("invalid", config.NumInvalid),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Any("seed", seed))

	client := newHTTPClient(config.BaseURL, stats.RunID, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Start from an empty session log
	if err := resetService(ctx, client); err != nil {
		return stats, fmt.Errorf("reset failed: %w", err)
	}

	// Step 3: Generate payloads
	jobs, expected, err := generateJobs(config, seed, stats)
	if err != nil {
		return stats, fmt.Errorf("payload generation failed: %w", err)
	}

	// Step 4: Submit concurrently
	submitPayloads(ctx, config, client, jobs, stats)
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("run interrupted: %w", err)
	}

	// Step 5: Verify the session log
	if err := verifyResults(ctx, client, expected, stats); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	log.Info(ctx, "load run completed successfully")
	return stats, nil
}

// generateJobs builds the valid and invalid payloads in submission order,
// together with the records the service should store for the valid ones.
func generateJobs(config *Config, seed uint64, stats *Stats) ([]job, []model.MetricRecord, error) {
	gen := NewGenerator(seed)
	jobs := make([]job, 0, config.NumRecords+config.NumInvalid)
	expected := make([]model.MetricRecord, 0, config.NumRecords)

	for i := range config.NumRecords {
		p := gen.Valid()
		rec, err := normalize.Payload(p)
		if err != nil {
			return nil, nil, fmt.Errorf("generated record %d does not normalize: %w", i, err)
		}
		expected = append(expected, rec)
		jobs = append(jobs, job{index: i, payload: p, valid: true})
	}
	for i := range config.NumInvalid {
		jobs = append(jobs, job{index: config.NumRecords + i, payload: gen.Invalid(i)})
	}

	// Interleave invalid payloads with valid ones.
	gen.rnd.Shuffle(len(jobs), func(a, b int) { jobs[a], jobs[b] = jobs[b], jobs[a] })

	stats.RecordsGenerated = config.NumRecords
	stats.InvalidGenerated = config.NumInvalid
	return jobs, expected, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	resp, err := client.Get(ctx, pathHealth)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

// resetService clears the session log on the server.
func resetService(ctx context.Context, client *HTTPClient) error {
	resp, err := client.Post(ctx, pathReset, nil)
	if err != nil {
		return err
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeResponse(resp, &body); err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK || body.Status != "success" {
		return fmt.Errorf("reset returned status %d (%q)", resp.StatusCode, body.Status)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate, requestsPerSecond float64

	if stats.Submitted > 0 {
		successRate = float64(stats.Accepted+stats.Rejected) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("recordsGenerated", stats.RecordsGenerated),
		logger.Int("invalidGenerated", stats.InvalidGenerated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("rejected", stats.Rejected),
		logger.Int("unexpected", stats.Unexpected),
		logger.Int("failed", stats.Failed),
		logger.Int("storedRecords", stats.StoredRecords),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
