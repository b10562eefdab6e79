package transform

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"useringest/pkg/records"
)

// domainPattern captures everything after '@' composed of letters, digits,
// dot, or hyphen. The leading '@' is excluded from the capture.
var domainPattern = regexp.MustCompile(`@([A-Za-z0-9.-]+)`)

// TransformError marks a record that passed shape validation but could not
// be coerced or derived. It is fatal to the run; no per-record skipping
// happens at this stage.
type TransformError struct {
	Line  int
	Field string
	Err   error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform line %d field %s: %v", e.Line, e.Field, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// Apply converts a validated record set into its typed form:
//
//   - signup_date is parsed as epoch seconds (float-compatible, per the
//     historical producer) and truncated to a UTC calendar date,
//   - domain is derived from the email address,
//   - user_id is coerced to a signed integer.
//
// Apply is a pure function of its input: output order matches input order
// and calling it twice yields identical sets. Records are independent, so
// the set is partitioned across workers; the first failure cancels the rest
// and aborts the call. workers <= 0 means one worker per CPU.
func Apply(ctx context.Context, in []records.Raw, workers int) ([]records.User, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(in) {
		workers = len(in)
	}
	out := make([]records.User, len(in))
	if len(in) == 0 {
		return out, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(in) + workers - 1) / workers
	for start := 0; start < len(in); start += chunk {
		end := start + chunk
		if end > len(in) {
			end = len(in)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				u, err := one(in[i])
				if err != nil {
					return err
				}
				out[i] = u
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// one transforms a single record. Kept separate so the field rules read as a
// unit and tests can target them without goroutines.
func one(rec records.Raw) (records.User, error) {
	id, err := strconv.ParseInt(rec.UserID, 10, 64)
	if err != nil {
		return records.User{}, &TransformError{Line: rec.Line, Field: "user_id",
			Err: fmt.Errorf("%q is not an integer", rec.UserID)}
	}

	// The producing tool writes float-valued timestamps; accept the full
	// numeric form and truncate to whole seconds.
	epoch, err := strconv.ParseFloat(rec.SignupDate, 64)
	if err != nil {
		return records.User{}, &TransformError{Line: rec.Line, Field: "signup_date",
			Err: fmt.Errorf("%q is not numeric", rec.SignupDate)}
	}

	m := domainPattern.FindStringSubmatch(rec.Email)
	if m == nil {
		// The validator guarantees a well-shaped email, so reaching this
		// indicates upstream inconsistency.
		return records.User{}, &TransformError{Line: rec.Line, Field: "email",
			Err: fmt.Errorf("no domain in %q", rec.Email)}
	}

	t := time.Unix(int64(epoch), 0).UTC()
	return records.User{
		UserID:     id,
		Name:       rec.Name,
		Email:      rec.Email,
		SignupDate: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
		Domain:     m[1],
	}, nil
}
