// Package gen produces synthetic user CSV files for exercising the ingest
// pipeline. Output matches the source contract the extractor expects: the
// exact four-column header, sequential user IDs from 1, and signup dates as
// fractional epoch seconds.
package gen

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// Options configures one generation run.
type Options struct {
	Count     int      // number of data rows to produce
	Locales   []string // e.g. {"en_US", "fr_FR"}; empty means en_US
	StartDate string   // earliest signup bound, e.g. "-5y" (default)
	EndDate   string   // latest signup bound, e.g. "now" (default)
	Seed      int64    // 0 means time-seeded
}

// Generate writes opts.Count synthetic user rows as CSV to w, header
// included. Emails are unique within one run. It returns the number of data
// rows written.
func Generate(w io.Writer, opts Options) (int, error) {
	if opts.Count < 0 {
		return 0, fmt.Errorf("gen: count must be >= 0, got %d", opts.Count)
	}

	data, err := resolveLocales(opts.Locales)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	startBound := opts.StartDate
	if startBound == "" {
		startBound = "-5y"
	}
	endBound := opts.EndDate
	if endBound == "" {
		endBound = "now"
	}
	start, err := ParseDateBound(startBound, now)
	if err != nil {
		return 0, err
	}
	end, err := ParseDateBound(endBound, now)
	if err != nil {
		return 0, err
	}
	if !start.Before(end) {
		return 0, fmt.Errorf("gen: start date %s is not before end date %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	seed := opts.Seed
	if seed == 0 {
		seed = now.UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"user_id", "name", "email", "signup_date"}); err != nil {
		return 0, fmt.Errorf("gen: write header: %w", err)
	}

	seen := make(map[string]struct{}, opts.Count)
	span := end.Sub(start).Seconds()
	for id := 1; id <= opts.Count; id++ {
		loc := data[rng.Intn(len(data))]
		first := loc.firstNames[rng.Intn(len(loc.firstNames))]
		last := loc.lastNames[rng.Intn(len(loc.lastNames))]
		name := first + " " + last
		email := uniqueEmail(first, last, loc.domains[rng.Intn(len(loc.domains))], rng, seen)

		epoch := float64(start.Unix()) + rng.Float64()*span
		row := []string{
			strconv.Itoa(id),
			name,
			email,
			strconv.FormatFloat(epoch, 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return id - 1, fmt.Errorf("gen: write row %d: %w", id, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return opts.Count, fmt.Errorf("gen: flush: %w", err)
	}
	return opts.Count, nil
}

// uniqueEmail builds an ASCII mailbox address from a name and keeps
// appending digits until it has not been used in this run.
func uniqueEmail(first, last, domain string, rng *rand.Rand, seen map[string]struct{}) string {
	local := asciiLower(first) + "." + asciiLower(last)
	email := local + "@" + domain
	for {
		if _, dup := seen[email]; !dup {
			seen[email] = struct{}{}
			return email
		}
		email = fmt.Sprintf("%s%d@%s", local, rng.Intn(10000), domain)
	}
}

// asciiLower lowercases a name part and strips it down to the characters
// that belong in a mailbox local part.
func asciiLower(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'ä':
			b.WriteString("ae")
		case r == 'ö':
			b.WriteString("oe")
		case r == 'ü':
			b.WriteString("ue")
		case r == 'ß':
			b.WriteString("ss")
		case r == 'é', r == 'è', r == 'ê':
			b.WriteByte('e')
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}
