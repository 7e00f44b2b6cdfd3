package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/basal/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// HTTPClient wraps http.Client with timeout and run-scoped request IDs.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	runID   string
	seq     atomic.Int64
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(baseURL, runID string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		runID:   runID,
	}
}

// Get performs a GET request against path.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

// Post performs a POST request with a JSON body; a nil body sends none.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) (*http.Response, error) {
	req.Header.Set(requestIDHeader, c.runID+"-"+strconv.FormatInt(c.seq.Add(1), 10))
	return c.client.Do(req)
}

// decodeResponse decodes a JSON body into v and closes it.
func decodeResponse(resp *http.Response, v any) error {
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type outcome int

const (
	outcomeAccepted outcome = iota
	outcomeRejected
	outcomeUnexpected
	outcomeFailed
)

type job struct {
	index   int
	payload Payload
	valid   bool
}

// submitPayloads posts every job to /model-construct using a worker pool.
func submitPayloads(ctx context.Context, config *Config, client *HTTPClient, jobs []job, stats *Stats) {
	log := logger.Get()
	log.Info(ctx, "submitting payloads",
		logger.Int("payloads", len(jobs)),
		logger.Int("workers", config.Workers))

	var accepted, rejected, unexpected, failed, submitted atomic.Int64

	jobChan := make(chan job, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for range config.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobChan {
				if ctx.Err() != nil {
					continue
				}
				submitted.Add(1)
				switch submitSingle(ctx, client, j) {
				case outcomeAccepted:
					accepted.Add(1)
				case outcomeRejected:
					rejected.Add(1)
				case outcomeUnexpected:
					unexpected.Add(1)
				default:
					failed.Add(1)
				}
			}
		}()
	}

	go func() {
		defer close(jobChan)
		for _, j := range jobs {
			select {
			case <-ctx.Done():
				return
			case jobChan <- j:
			}
		}
	}()

	wg.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Accepted = int(accepted.Load())
	stats.Rejected = int(rejected.Load())
	stats.Unexpected = int(unexpected.Load())
	stats.Failed = int(failed.Load())

	log.Info(ctx, "payload submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("rejected", stats.Rejected),
		logger.Int("unexpected", stats.Unexpected),
		logger.Int("failed", stats.Failed))
}

// submitSingle posts one payload and classifies the response against what
// the payload should produce.
func submitSingle(ctx context.Context, client *HTTPClient, j job) outcome {
	resp, err := client.Post(ctx, pathConstruct, j.payload)
	if err != nil {
		logger.Get().Debug(ctx, "submit failed", logger.Int("index", j.index), logger.Error(err))
		return outcomeFailed
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case j.valid && resp.StatusCode == http.StatusOK:
		return outcomeAccepted
	case !j.valid && resp.StatusCode == http.StatusBadRequest:
		return outcomeRejected
	default:
		logger.Get().Debug(ctx, "unexpected status",
			logger.Int("index", j.index),
			logger.Bool("valid", j.valid),
			logger.Int("status", resp.StatusCode))
		return outcomeUnexpected
	}
}
