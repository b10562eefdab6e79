package gen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativePattern = regexp.MustCompile(`^([+-])(\d+)([dmy])$`)

// ParseDateBound resolves a signup-date bound relative to now. Accepted
// forms:
//
//	"now"        the current moment
//	"-5y" "+2m"  offset in years (y), months (m), or days (d)
//	"2021-06-01" an absolute calendar date, midnight UTC
func ParseDateBound(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("gen: empty date bound")
	}
	if strings.EqualFold(s, "now") {
		return now, nil
	}

	if m := relativePattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return time.Time{}, fmt.Errorf("gen: date bound %q: %w", s, err)
		}
		if m[1] == "-" {
			n = -n
		}
		switch m[3] {
		case "d":
			return now.AddDate(0, 0, n), nil
		case "m":
			return now.AddDate(0, n, 0), nil
		case "y":
			return now.AddDate(n, 0, 0), nil
		}
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("gen: date bound %q: want \"now\", an offset like \"-5y\", or YYYY-MM-DD", s)
}
