// Package extract reads the delimited input file into a raw record set.
//
// Extraction is deliberately dumb: every field is read as text, no business
// rule is applied, and any structural problem (unreadable file, empty file,
// header mismatch, inconsistent column count) is fatal to the run. Typing
// and per-record tolerance belong to the later stages.
package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"useringest/pkg/records"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\ufeff"

// ExtractError marks a structurally invalid or unreadable input file.
// It always aborts the run; nothing has been written at this point.
type ExtractError struct {
	Path string
	Err  error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// ReadFile opens path and parses it into a raw record set. The header row
// must declare exactly the expected column names, in order; every data row
// must carry exactly that many fields.
func ReadFile(path string) ([]records.Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ExtractError{Path: path, Err: err}
	}
	defer f.Close()

	recs, err := Read(f)
	if err != nil {
		return nil, &ExtractError{Path: path, Err: err}
	}
	return recs, nil
}

// Read parses CSV content from r. Callers normally use ReadFile; Read exists
// so tests and future non-file sources can feed arbitrary readers.
func Read(r io.Reader) ([]records.Raw, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(records.SourceColumns())
	cr.ReuseRecord = true

	hdr, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(hdr); err != nil {
		return nil, err
	}

	var out []records.Raw
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Inconsistent column counts surface here via FieldsPerRecord.
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, records.Raw{
			Line:       line,
			UserID:     strings.TrimSpace(row[0]),
			Name:       strings.TrimSpace(row[1]),
			Email:      strings.TrimSpace(row[2]),
			SignupDate: strings.TrimSpace(row[3]),
		})
	}
	return out, nil
}

// checkHeader enforces the exact expected header, in order. Extra columns
// already fail the FieldsPerRecord check; this catches renames and
// reorderings.
func checkHeader(hdr []string) error {
	want := records.SourceColumns()
	for i, h := range hdr {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		if h != want[i] {
			return fmt.Errorf("header column %d is %q, want %q (expected header: %s)",
				i+1, h, want[i], strings.Join(want, ","))
		}
	}
	return nil
}
