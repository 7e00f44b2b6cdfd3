// Package repository defines the session log store interface.
package repository

import (
	"context"

	"github.com/okian/basal/internal/domain/model"
)

// Store holds the index-aligned history of submitted records and their
// computed results. Record i always corresponds to result i.
type Store interface {
	// Append adds one record/result pair and returns a copy of the output
	// history as it was immediately after the append.
	Append(ctx context.Context, rec model.MetricRecord, res model.Result) []model.Result

	// Inputs returns a copy of the stored records in submission order.
	Inputs(ctx context.Context) []model.MetricRecord

	// Outputs returns a copy of the stored results in submission order.
	Outputs(ctx context.Context) []model.Result

	// Clear empties both sequences. Clearing an empty store is a no-op.
	Clear(ctx context.Context)

	// Len returns the number of stored pairs.
	Len(ctx context.Context) int
}
