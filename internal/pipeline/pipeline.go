// Package pipeline orchestrates a batch ingest run: extract raw rows from a
// CSV file, drop records with malformed emails, transform the survivors into
// typed users, and load them into a storage backend. The run is modeled as
// an explicit state machine so tests (and operators reading logs) can see
// exactly which stage a run was in when it stopped.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"useringest/internal/extract"
	"useringest/internal/metrics"
	"useringest/internal/storage"
	"useringest/internal/transform"
	"useringest/pkg/records"
)

// Summary reports what a completed run did. On failure the counters cover
// the stages that did complete and FailedStage names the stage that did not.
type Summary struct {
	RunID       string
	Extracted   int           // data rows read from the source file
	Dropped     int           // rows removed by email validation
	Transformed int           // rows converted to typed users
	Loaded      int64         // rows the backend reported inserted
	Duration    time.Duration // wall time of the whole run
	FailedStage string        // stage name on failure, empty on success
}

// defaultBatchSize is used when a Runner is configured with no positive
// BatchSize, matching the configuration default.
const defaultBatchSize = 1000

// Runner executes one ingest run. Configure the exported fields, then call
// Run exactly once; a Runner is not reusable.
type Runner struct {
	Log     *zap.Logger
	Storage storage.Config
	Mode    storage.Mode

	InputPath        string
	BatchSize        int
	TransformWorkers int

	// newRepository is a seam for tests; nil means storage.New.
	newRepository func(ctx context.Context, cfg storage.Config) (storage.Repository, error)

	mu    sync.Mutex
	state State
}

// State returns the run's current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// advance moves the run to next, enforcing the forward-only lifecycle.
func (r *Runner) advance(next State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.state.canTransition(next) {
		return fmt.Errorf("pipeline: illegal transition %s -> %s", r.state, next)
	}
	r.state = next
	return nil
}

// fail marks the run Failed, records which stage broke in the summary, and
// returns err unchanged.
func (r *Runner) fail(log *zap.Logger, sum *Summary, stage State, err error) error {
	r.mu.Lock()
	if !r.state.Terminal() {
		r.state = StateFailed
	}
	r.mu.Unlock()
	sum.FailedStage = stage.String()
	log.Error("run failed", zap.String("stage", sum.FailedStage), zap.Error(err))
	return err
}

// Run executes the full extract/validate/transform/load sequence. The
// returned Summary is valid even on failure, covering the stages that did
// complete.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	sum := Summary{RunID: runID}

	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("run_id", runID))

	newRepo := r.newRepository
	if newRepo == nil {
		newRepo = storage.New
	}
	batchSize := r.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	log.Info("run starting",
		zap.String("input", r.InputPath),
		zap.String("backend", r.Storage.Kind),
		zap.String("table", r.Storage.Table),
		zap.Stringer("mode", r.Mode),
	)

	// Extract.
	if err := r.advance(StateExtracting); err != nil {
		return sum, err
	}
	extractStart := time.Now()
	raws, err := extract.ReadFile(r.InputPath)
	metrics.RecordStage(runID, "extract", err, time.Since(extractStart))
	if err != nil {
		err = r.fail(log, &sum, StateExtracting, err)
		return sum, err
	}
	sum.Extracted = len(raws)
	metrics.RecordRows(runID, "extracted", int64(len(raws)))
	log.Info("extract complete", zap.Int("rows", len(raws)))

	// Validate. Malformed emails are dropped, never fatal.
	if err := r.advance(StateValidating); err != nil {
		return sum, err
	}
	validateStart := time.Now()
	valid := transform.FilterValid(raws, func(rec records.Raw) {
		log.Warn("dropping record with invalid email",
			zap.Int("line", rec.Line),
			zap.String("user_id", rec.UserID),
			zap.String("email", rec.Email),
		)
	})
	metrics.RecordStage(runID, "validate", nil, time.Since(validateStart))
	sum.Dropped = len(raws) - len(valid)
	metrics.RecordRows(runID, "dropped_invalid_email", int64(sum.Dropped))
	log.Info("validate complete",
		zap.Int("kept", len(valid)),
		zap.Int("dropped", sum.Dropped),
	)

	// Transform. Any conversion failure aborts the run.
	if err := r.advance(StateTransforming); err != nil {
		return sum, err
	}
	transformStart := time.Now()
	users, err := transform.Apply(ctx, valid, r.TransformWorkers)
	metrics.RecordStage(runID, "transform", err, time.Since(transformStart))
	if err != nil {
		err = r.fail(log, &sum, StateTransforming, err)
		return sum, err
	}
	sum.Transformed = len(users)
	metrics.RecordRows(runID, "transformed", int64(len(users)))
	log.Info("transform complete", zap.Int("rows", len(users)))

	// Load.
	if err := r.advance(StateLoading); err != nil {
		return sum, err
	}
	loadStart := time.Now()
	loaded, err := r.load(ctx, log, newRepo, users, batchSize)
	metrics.RecordStage(runID, "load", err, time.Since(loadStart))
	sum.Loaded = loaded
	if err != nil {
		err = r.fail(log, &sum, StateLoading, err)
		return sum, err
	}
	metrics.RecordRows(runID, "loaded", loaded)
	if len(users) > 0 {
		metrics.RecordBatches(runID, int64((len(users)+batchSize-1)/batchSize))
	}

	if err := r.advance(StateCompleted); err != nil {
		return sum, err
	}
	sum.Duration = time.Since(start)
	log.Info("run completed",
		zap.Int("extracted", sum.Extracted),
		zap.Int("dropped", sum.Dropped),
		zap.Int64("loaded", sum.Loaded),
		zap.Duration("duration", sum.Duration),
	)
	return sum, nil
}

func (r *Runner) load(
	ctx context.Context,
	log *zap.Logger,
	newRepo func(context.Context, storage.Config) (storage.Repository, error),
	users []records.User,
	batchSize int,
) (int64, error) {
	repo, err := newRepo(ctx, r.Storage)
	if err != nil {
		return 0, &storage.LoadError{Table: r.Storage.Table, Err: err}
	}
	defer repo.Close()

	return storage.Load(ctx, log, repo, r.Storage, r.Mode, records.SinkColumns(), records.Rows(users), batchSize)
}
