package timetag

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the reference-time rendering of the timestamp embedded in backup
// file names: _YYYY-MM-DD_HH-MM, UTC, minute resolution. It is shared by the
// formatter and the parser so the two can never drift apart; both take the
// layout as an explicit argument so tests can substitute other patterns.
const Layout = "_2006-01-02_15-04"

// ErrMalformedName marks file names that do not carry a parseable timestamp.
// Bulk scans treat it as skip-and-warn; single-file lookups treat it as fatal.
var ErrMalformedName = errors.New("file name does not match naming convention")

// Format renders t using layout, in UTC.
func Format(layout string, t time.Time) string {
	return t.UTC().Format(layout)
}

// Parse extracts the timestamp embedded in fileName. The name must start with
// prefix; the tag is the remainder up to the first dot (or the whole remainder
// when there is none). All malformed shapes wrap ErrMalformedName.
func Parse(layout, prefix, fileName string) (time.Time, error) {
	rest, ok := strings.CutPrefix(fileName, prefix)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s does not start with %q", ErrMalformedName, fileName, prefix)
	}

	tag, _, _ := strings.Cut(rest, ".")
	t, err := time.Parse(layout, tag)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrMalformedName, fileName)
	}

	return t, nil
}
