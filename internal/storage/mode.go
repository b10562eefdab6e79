package storage

import (
	"fmt"
	"strings"
)

// Mode selects what happens to pre-existing destination rows before a load.
//
// The pipeline's default contract is append-only; ModeOverwrite (truncate,
// then append) must be requested explicitly.
type Mode int

const (
	// ModeAppend adds rows without touching existing data. Re-running the
	// same input produces duplicate rows by design.
	ModeAppend Mode = iota

	// ModeOverwrite removes all existing rows first, then appends.
	ModeOverwrite
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeAppend:
		return "append"
	case ModeOverwrite:
		return "overwrite"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a textual mode into a Mode value. Matching is
// case-insensitive and ignores surrounding space.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "append":
		return ModeAppend, nil
	case "overwrite":
		return ModeOverwrite, nil
	default:
		return ModeAppend, fmt.Errorf("storage: unknown write mode %q", s)
	}
}
