// Package records defines the record types that flow through the ingest
// pipeline and the canonical column orders shared by the extractor, the
// transformer, the storage sinks, and the test-data generator.
//
// A record set is a plain slice; it is created fresh for each pipeline run
// and never outlives it.
package records

import "time"

// DateLayout is the calendar-date form signup dates take after
// transformation (day granularity, UTC).
const DateLayout = "2006-01-02"

// SourceColumns is the exact header the input CSV must declare, in order.
func SourceColumns() []string {
	return []string{"user_id", "name", "email", "signup_date"}
}

// SinkColumns is the destination table column order used for every append.
func SinkColumns() []string {
	return []string{"user_id", "name", "email", "signup_date", "domain"}
}

// Raw is one user record exactly as extracted: all fields are text and no
// business rule has been applied yet. Line is the 1-based source line the
// record came from (the header occupies line 1).
type Raw struct {
	Line       int
	UserID     string
	Name       string
	Email      string
	SignupDate string
}

// User is one user record after transformation: the identifier is numeric,
// the signup date is a UTC calendar date, and the domain has been derived
// from the email address.
type User struct {
	UserID     int64
	Name       string
	Email      string
	SignupDate time.Time
	Domain     string
}

// Row returns the record's values aligned to SinkColumns order, ready to be
// handed to a storage backend.
func (u User) Row() []any {
	return []any{u.UserID, u.Name, u.Email, u.SignupDate, u.Domain}
}

// Rows converts a transformed record set into sink-aligned value rows.
func Rows(users []User) [][]any {
	out := make([][]any, len(users))
	for i, u := range users {
		out[i] = u.Row()
	}
	return out
}
