package timetag_test

import (
	"testing"
	"time"

	"github.com/mongobak/mongobak/timetag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	instant := time.Date(2024, 2, 29, 8, 5, 0, 0, time.UTC)
	assert.Equal(t, "_2024-02-29_08-05", timetag.Format(timetag.Layout, instant))
}

func TestFormatConvertsToUTC(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	instant := time.Date(2024, 6, 1, 12, 30, 0, 0, zone)
	assert.Equal(t, "_2024-06-01_10-30", timetag.Format(timetag.Layout, instant))
}

func TestParseRoundTrip(t *testing.T) {
	instants := []time.Time{
		time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC),
		time.Date(2031, 7, 15, 4, 44, 0, 0, time.UTC),
	}

	for _, instant := range instants {
		name := "backup" + timetag.Format(timetag.Layout, instant) + ".tbz"
		parsed, err := timetag.Parse(timetag.Layout, "backup", name)
		require.NoError(t, err)
		assert.True(t, parsed.Equal(instant), "expected %s, got %s", instant, parsed)
	}
}

func TestParseWithoutExtension(t *testing.T) {
	parsed, err := timetag.Parse(timetag.Layout, "backup", "backup_2024-01-01_00-00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), parsed)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		prefix   string
	}{
		{name: "no time tag", fileName: "backup_bad.tbz", prefix: "backup"},
		{name: "wrong prefix", fileName: "other_2024-01-01_00-00.tbz", prefix: "backup"},
		{name: "empty name", fileName: "", prefix: "backup"},
		{name: "prefix only", fileName: "backup.tbz", prefix: "backup"},
		{name: "truncated tag", fileName: "backup_2024-01.tbz", prefix: "backup"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := timetag.Parse(timetag.Layout, tc.prefix, tc.fileName)
			assert.ErrorIs(t, err, timetag.ErrMalformedName)
		})
	}
}

func TestParseAlternateLayout(t *testing.T) {
	const layout = "2006-01-02"
	parsed, err := timetag.Parse(layout, "dump-", "dump-2024-05-20.tbz")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), parsed)
}
