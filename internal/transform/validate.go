// Package transform applies the per-record business rules of the pipeline:
// email shape filtering, date conversion, domain derivation, and identifier
// coercion.
//
// The two halves have deliberately different failure postures. FilterValid
// guards against noisy external input and silently drops non-conforming
// records. Apply runs after that guard, so any failure there means a record
// the filter accepted cannot be processed: an internal contract violation
// that aborts the whole run rather than silently losing data.
package transform

import (
	"regexp"

	"useringest/pkg/records"
)

// emailShape accepts local-part@domain where both parts are non-empty and
// the domain carries a dot-separated suffix. Structural only: no DNS or
// mailbox verification.
var emailShape = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// RejectFunc receives each record dropped by FilterValid. Optional sink for
// counting and debug logging.
type RejectFunc func(rec records.Raw)

// FilterValid returns a new record set containing only records whose email
// matches the shape rule. Dropped records are reported to reject when it is
// non-nil; they are never an error. The operation is idempotent: filtering
// an already-filtered set returns an equal set.
func FilterValid(in []records.Raw, reject RejectFunc) []records.Raw {
	out := make([]records.Raw, 0, len(in))
	for _, rec := range in {
		if emailShape.MatchString(rec.Email) {
			out = append(out, rec)
			continue
		}
		if reject != nil {
			reject(rec)
		}
	}
	return out
}
