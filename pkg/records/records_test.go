package records

import (
	"reflect"
	"testing"
	"time"
)

// TestColumns pins the source and sink column contracts; storage backends
// and the extractor both rely on these exact names and order.
func TestColumns(t *testing.T) {
	if want := []string{"user_id", "name", "email", "signup_date"}; !reflect.DeepEqual(SourceColumns(), want) {
		t.Errorf("SourceColumns() = %v, want %v", SourceColumns(), want)
	}
	if want := []string{"user_id", "name", "email", "signup_date", "domain"}; !reflect.DeepEqual(SinkColumns(), want) {
		t.Errorf("SinkColumns() = %v, want %v", SinkColumns(), want)
	}
}

// TestRowAlignment keeps User.Row aligned with SinkColumns.
func TestRowAlignment(t *testing.T) {
	u := User{
		UserID:     7,
		Name:       "Alice",
		Email:      "alice@example.com",
		SignupDate: time.Date(2023, time.November, 14, 0, 0, 0, 0, time.UTC),
		Domain:     "example.com",
	}
	row := u.Row()
	if got, want := len(row), len(SinkColumns()); got != want {
		t.Fatalf("len(Row()) = %d, want %d", got, want)
	}
	if row[0] != int64(7) || row[2] != "alice@example.com" || row[4] != "example.com" {
		t.Errorf("Row() = %v, misaligned with %v", row, SinkColumns())
	}

	rows := Rows([]User{u, u})
	if got, want := len(rows), 2; got != want {
		t.Errorf("len(Rows) = %d, want %d", got, want)
	}
}
