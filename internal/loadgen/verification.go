package loadgen

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/basal/internal/domain/model"
	"github.com/okian/basal/pkg/logger"
)

// ErrVerification is returned when the service state does not match the run.
var ErrVerification = errors.New("verification failed")

// verifyResults checks response classification and the stored session log.
func verifyResults(ctx context.Context, client *HTTPClient, expected []model.MetricRecord, stats *Stats) error {
	logger.Get().Info(ctx, "verifying results")

	if stats.Failed > 0 || stats.Unexpected > 0 {
		return fmt.Errorf("%w: %d failed and %d unexpected responses",
			ErrVerification, stats.Failed, stats.Unexpected)
	}
	if stats.Rejected != stats.InvalidGenerated {
		return fmt.Errorf("%w: %d of %d invalid payloads rejected",
			ErrVerification, stats.Rejected, stats.InvalidGenerated)
	}

	resp, err := client.Get(ctx, pathData)
	if err != nil {
		return fmt.Errorf("fetch data: %w", err)
	}
	var stored []model.MetricRecord
	if err := decodeResponse(resp, &stored); err != nil {
		return err
	}
	stats.StoredRecords = len(stored)

	if len(stored) != stats.Accepted {
		return fmt.Errorf("%w: session log holds %d records, %d accepted",
			ErrVerification, len(stored), stats.Accepted)
	}
	return compareRecords(expected, stored)
}

// compareRecords reports whether got holds exactly the records of want,
// in any order.
func compareRecords(want, got []model.MetricRecord) error {
	counts := make(map[model.MetricRecord]int, len(want))
	for _, r := range want {
		counts[r]++
	}
	for _, r := range got {
		if counts[r] == 0 {
			return fmt.Errorf("%w: unexpected stored record %+v", ErrVerification, r)
		}
		counts[r]--
	}
	for r, n := range counts {
		if n != 0 {
			return fmt.Errorf("%w: record %+v missing from session log", ErrVerification, r)
		}
	}
	return nil
}
