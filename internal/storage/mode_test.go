package storage

import "testing"

// TestParseMode maps the two accepted spellings and rejects everything else.
func TestParseMode(t *testing.T) {
	cases := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"append", ModeAppend, true},
		{"overwrite", ModeOverwrite, true},
		{"APPEND", ModeAppend, true},
		{" overwrite ", ModeOverwrite, true},
		{"", 0, false},
		{"upsert", 0, false},
	}
	for _, c := range cases {
		got, err := ParseMode(c.in)
		if (err == nil) != c.ok {
			t.Errorf("ParseMode(%q): err = %v, want ok = %v", c.in, err, c.ok)
			continue
		}
		if c.ok && got != c.want {
			t.Errorf("ParseMode(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

// TestModeString round-trips the known modes through their names.
func TestModeString(t *testing.T) {
	if got, want := ModeAppend.String(), "append"; got != want {
		t.Errorf("ModeAppend.String() = %q, want %q", got, want)
	}
	if got, want := ModeOverwrite.String(), "overwrite"; got != want {
		t.Errorf("ModeOverwrite.String() = %q, want %q", got, want)
	}
}
