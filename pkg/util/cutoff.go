package util

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var relativeCutoff = regexp.MustCompile(`^(\d+)([dw])$`)

var cutoffLayouts = []string{
	"2006-01-02",
	"02-01-06",
	"02-01-2006",
}

// ParseCutoff converts a date filter into epoch milliseconds. Accepted forms are absolute
// dates (YYYY-MM-DD, DD-MM-YY, DD-MM-YYYY, "/" accepted for "-") and offsets back from
// midnight UTC today (Nd days, Nw weeks; 0d is midnight today).
func ParseCutoff(value string, now time.Time) (int64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(value), "/", "-")
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if m := relativeCutoff.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, errors.Wrapf(err, "invalid cutoff %q", value)
		}
		days := n
		if m[2] == "w" {
			days = n * 7
		}
		return midnight.AddDate(0, 0, -days).UnixMilli(), nil
	}

	for _, layout := range cutoffLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, errors.Errorf("unsupported time format %s", value)
}
