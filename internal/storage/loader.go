// This file implements the generic batched loader used by the load stage:
// it slices a fully transformed row set into batches and drives the
// backend's Append for each one, logging per-batch progress.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// LoadError marks a destination connectivity, authentication, or write
// failure. Rows committed before the failure remain in the destination; no
// automatic rollback is attempted across batches.
type LoadError struct {
	Table string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load into %s: %v", e.Table, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load writes rows into repo in batches of batchSize. Under ModeOverwrite it
// truncates the destination first; under ModeAppend existing rows are never
// touched. It returns the number of rows the backend reported inserted.
func Load(
	ctx context.Context,
	log *zap.Logger,
	repo Repository,
	cfg Config,
	mode Mode,
	columns []string,
	rows [][]any,
	batchSize int,
) (int64, error) {
	if batchSize <= 0 {
		return 0, &LoadError{Table: cfg.Table, Err: fmt.Errorf("batch size must be > 0, got %d", batchSize)}
	}

	if mode == ModeOverwrite {
		if err := repo.Truncate(ctx); err != nil {
			return 0, &LoadError{Table: cfg.Table, Err: fmt.Errorf("truncate: %w", err)}
		}
	}

	var total, batches int64
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		n, err := repo.Append(ctx, columns, rows[start:end])
		total += n
		if err != nil {
			return total, &LoadError{Table: cfg.Table, Err: err}
		}
		batches++
		log.Debug("batch appended",
			zap.Int64("batch", batches),
			zap.Int64("rows", n),
			zap.Int64("total", total),
		)
	}
	return total, nil
}
