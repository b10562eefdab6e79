package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"useringest/internal/extract"
	"useringest/internal/storage"
	"useringest/internal/transform"
	"useringest/pkg/records"
)

// fakeRepo is an in-memory storage.Repository shared across runs so tests
// can observe accumulation.
type fakeRepo struct {
	columns   []string
	rows      [][]any
	appendErr error
	closed    int
}

func (f *fakeRepo) Append(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if f.appendErr != nil {
		return 0, f.appendErr
	}
	f.columns = columns
	f.rows = append(f.rows, rows...)
	return int64(len(rows)), nil
}

func (f *fakeRepo) Truncate(ctx context.Context) error {
	f.rows = nil
	return nil
}

func (f *fakeRepo) Close() { f.closed++ }

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newRunner(repo *fakeRepo, input string) *Runner {
	return &Runner{
		Log:              zap.NewNop(),
		Storage:          storage.Config{Kind: "fake", Table: "users"},
		Mode:             storage.ModeAppend,
		InputPath:        input,
		BatchSize:        100,
		TransformWorkers: 2,
		newRepository: func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
			return repo, nil
		},
	}
}

const mixedCSV = `user_id,name,email,signup_date
1,Alice Smith,alice@example.com,1700000000
2,Bob Jones,not-an-email,1700000000
3,Carol Lee,carol@example.org,1672531200.25
4,Dan Poe,dan@@broken.com,1700000000
5,Eve Ray,eve@mail.example.net,0
`

// TestRunHappyPath drives a full run: two malformed emails are dropped, the
// other three records are typed and loaded, and the run completes.
func TestRunHappyPath(t *testing.T) {
	repo := &fakeRepo{}
	r := newRunner(repo, writeCSV(t, mixedCSV))

	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got, want := r.State(), StateCompleted; got != want {
		t.Errorf("state = %v, want %v", got, want)
	}
	if got, want := sum.Extracted, 5; got != want {
		t.Errorf("Extracted = %d, want %d", got, want)
	}
	if got, want := sum.Dropped, 2; got != want {
		t.Errorf("Dropped = %d, want %d", got, want)
	}
	if got, want := sum.Loaded, int64(3); got != want {
		t.Errorf("Loaded = %d, want %d", got, want)
	}
	if sum.RunID == "" {
		t.Error("RunID is empty")
	}
	if sum.FailedStage != "" {
		t.Errorf("FailedStage = %q, want empty on success", sum.FailedStage)
	}
	if got, want := repo.closed, 1; got != want {
		t.Errorf("repo.closed = %d, want %d", got, want)
	}

	wantCols := records.SinkColumns()
	if len(repo.columns) != len(wantCols) {
		t.Fatalf("columns = %v, want %v", repo.columns, wantCols)
	}
	for i := range wantCols {
		if repo.columns[i] != wantCols[i] {
			t.Fatalf("columns = %v, want %v", repo.columns, wantCols)
		}
	}

	// Spot-check the first loaded row: id, name, email, date, domain.
	row := repo.rows[0]
	if got, want := row[0].(int64), int64(1); got != want {
		t.Errorf("row[0] = %d, want %d", got, want)
	}
	if got, want := row[4].(string), "example.com"; got != want {
		t.Errorf("domain = %q, want %q", got, want)
	}
	wantDate := time.Date(2023, time.November, 14, 0, 0, 0, 0, time.UTC)
	if got := row[3].(time.Time); !got.Equal(wantDate) {
		t.Errorf("signup_date = %v, want %v", got, wantDate)
	}
}

// TestRunAppendIsNotIdempotent loads the same file twice into the same
// destination and expects the row count to double.
func TestRunAppendIsNotIdempotent(t *testing.T) {
	repo := &fakeRepo{}
	input := writeCSV(t, mixedCSV)

	for i := 0; i < 2; i++ {
		if _, err := newRunner(repo, input).Run(context.Background()); err != nil {
			t.Fatalf("Run #%d: %v", i+1, err)
		}
	}
	if got, want := len(repo.rows), 6; got != want {
		t.Errorf("rows in destination = %d, want %d", got, want)
	}
}

// TestRunExtractFailure fails during extraction on a missing file: the run
// ends Failed and storage is never opened.
func TestRunExtractFailure(t *testing.T) {
	opened := false
	r := newRunner(&fakeRepo{}, filepath.Join(t.TempDir(), "absent.csv"))
	r.newRepository = func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		opened = true
		return &fakeRepo{}, nil
	}

	sum, err := r.Run(context.Background())
	var xerr *extract.ExtractError
	if !errors.As(err, &xerr) {
		t.Fatalf("error type = %T, want *extract.ExtractError", err)
	}
	if got, want := r.State(), StateFailed; got != want {
		t.Errorf("state = %v, want %v", got, want)
	}
	if got, want := sum.FailedStage, "extracting"; got != want {
		t.Errorf("FailedStage = %q, want %q", got, want)
	}
	if opened {
		t.Error("storage was opened despite extract failure")
	}
}

// TestRunTransformFailure aborts on an unparseable user_id after validation
// passed it through.
func TestRunTransformFailure(t *testing.T) {
	input := writeCSV(t, "user_id,name,email,signup_date\nabc,X Y,x@y.co,0\n")
	r := newRunner(&fakeRepo{}, input)

	sum, err := r.Run(context.Background())
	var terr *transform.TransformError
	if !errors.As(err, &terr) {
		t.Fatalf("error type = %T, want *transform.TransformError", err)
	}
	if got, want := r.State(), StateFailed; got != want {
		t.Errorf("state = %v, want %v", got, want)
	}
	if got, want := sum.FailedStage, "transforming"; got != want {
		t.Errorf("FailedStage = %q, want %q", got, want)
	}
}

// TestRunLoadFailure surfaces backend write errors as LoadError and ends
// Failed.
func TestRunLoadFailure(t *testing.T) {
	repo := &fakeRepo{appendErr: errors.New("connection refused")}
	r := newRunner(repo, writeCSV(t, mixedCSV))

	sum, err := r.Run(context.Background())
	var lerr *storage.LoadError
	if !errors.As(err, &lerr) {
		t.Fatalf("error type = %T, want *storage.LoadError", err)
	}
	if got, want := r.State(), StateFailed; got != want {
		t.Errorf("state = %v, want %v", got, want)
	}
	if got, want := sum.FailedStage, "loading"; got != want {
		t.Errorf("FailedStage = %q, want %q", got, want)
	}
	if got, want := repo.closed, 1; got != want {
		t.Errorf("repo.closed = %d, want %d", got, want)
	}
}

// TestRunUnsetBatchSize falls back to the default batch size instead of
// turning a configuration gap into a load failure.
func TestRunUnsetBatchSize(t *testing.T) {
	repo := &fakeRepo{}
	r := newRunner(repo, writeCSV(t, mixedCSV))
	r.BatchSize = 0

	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, want := sum.Loaded, int64(3); got != want {
		t.Errorf("Loaded = %d, want %d", got, want)
	}
	if got, want := r.State(), StateCompleted; got != want {
		t.Errorf("state = %v, want %v", got, want)
	}
}

// TestRunnerIsSingleUse rejects a second Run on the same Runner.
func TestRunnerIsSingleUse(t *testing.T) {
	repo := &fakeRepo{}
	r := newRunner(repo, writeCSV(t, mixedCSV))

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if _, err := r.Run(context.Background()); err == nil {
		t.Fatal("second Run: got nil error")
	}
}
