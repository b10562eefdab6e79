package mysql

import (
	"testing"
	"time"
)

// TestQuoteIdent backtick-quotes identifiers, escaping embedded backticks
// and quoting dotted schema.table names part by part.
func TestQuoteIdent(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"users", "`users`"},
		{"app.users", "`app`.`users`"},
		{"odd`name", "`odd``name`"},
		{"a.b.c", "`a`.`b`.`c`"},
	}
	for _, c := range cases {
		if got := quoteIdent(c.in); got != c.want {
			t.Errorf("quoteIdent(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

// TestBindValues formats calendar dates as DATE text and passes everything
// else through untouched.
func TestBindValues(t *testing.T) {
	date := time.Date(2023, time.November, 14, 0, 0, 0, 0, time.UTC)
	got := bindValues([]any{int64(1), "Alice", date, nil})

	if got[0] != int64(1) || got[1] != "Alice" || got[3] != nil {
		t.Errorf("non-date values changed: %v", got)
	}
	if want := "2023-11-14"; got[2] != want {
		t.Errorf("date bound as %v, want %q", got[2], want)
	}
}
