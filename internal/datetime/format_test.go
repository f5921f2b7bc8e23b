package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_BlankPatternUsesDefault(t *testing.T) {
	ts := time.Date(2024, 5, 1, 14, 30, 15, 0, time.UTC)

	assert.Equal(t, ts.Format(DefaultLayout), Format(ts, ""))
	assert.Equal(t, ts.Format(DefaultLayout), Format(ts, " "))
	assert.Equal(t, "5/1/2024 2:30:15 PM", Format(ts, " "))
}

func TestLayout(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"M/d/yyyy h:mm tt", "1/2/2006 3:04 PM"},
		{"dd.MM.yyyy HH:mm", "02.01.2006 15:04"},
		{"yyyy-MM-dd HH:mm:ss.fff", "2006-01-02 15:04:05.000"},
		{"dddd, MMMM d, yyyy", "Monday, January 2, 2006"},
		{"ddd d MMM yy", "Mon 2 Jan 06"},
		{"yyyy-MM-dd'T'HH:mm", "2006-01-02T15:04"},
		{"HH:mm zzz", "15:04 -07:00"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, Layout(tt.pattern))
		})
	}
}

func TestFormat_UnpaddedHourAndSingleLetterDesignator(t *testing.T) {
	morning := time.Date(2024, 5, 1, 9, 5, 0, 0, time.UTC)
	afternoon := time.Date(2024, 5, 1, 14, 5, 0, 0, time.UTC)

	assert.Equal(t, "1.5.2024 9.05", Format(morning, "d.M.yyyy H.mm"))
	assert.Equal(t, "9:05", Format(morning, "H:mm"))
	assert.Equal(t, "14:05", Format(afternoon, "H:mm"))
	assert.Equal(t, "09:05", Format(morning, "HH:mm"))
	assert.Equal(t, "9:05 A", Format(morning, "h:mm t"))
	assert.Equal(t, "2:05 P", Format(afternoon, "h:mm t"))
	assert.Equal(t, "2:05 PM", Format(afternoon, "h:mm tt"))
}

func TestFormat_QuotedTextIsLiteral(t *testing.T) {
	ts := time.Date(2024, 5, 1, 9, 5, 0, 0, time.UTC)

	assert.Equal(t, "Jan 1", Format(ts, "'Jan' d"))
	assert.Equal(t, "MST 2024", Format(ts, "\"MST\" yyyy"))
	assert.Equal(t, "1 at 9", Format(ts, "d 'at' H"))
	assert.Equal(t, "2024-05-01T09:05", Format(ts, "yyyy-MM-dd\\THH:mm"))
	assert.Equal(t, "09:05:00.000", Format(ts, "HH:mm:ss.fff"))
}

func TestFormat_RoundTrip(t *testing.T) {
	ts := time.Date(2024, 11, 23, 9, 5, 0, 0, time.UTC)
	patterns := []string{
		"M/d/yyyy h:mm tt",
		"dd.MM.yyyy HH:mm",
		"yyyy-MM-dd HH:mm",
		"d MMMM yyyy hh:mm tt",
		"d.M.yyyy H.mm",
	}
	for _, p := range patterns {
		t.Run(p, func(t *testing.T) {
			out := Format(ts, p)
			back, err := Parse(out, p, time.UTC)
			require.NoError(t, err)
			assert.True(t, ts.Equal(back), "got %s from %q", back, out)
		})
	}
}

func TestFormat_RoundTripDefault(t *testing.T) {
	ts := time.Date(2024, 11, 23, 21, 5, 7, 0, time.UTC)
	back, err := Parse(Format(ts, ""), "", time.UTC)
	require.NoError(t, err)
	assert.True(t, ts.Equal(back))
}

func TestParseInput(t *testing.T) {
	loc, err := ResolveZone("America/Chicago")
	require.NoError(t, err)
	want := time.Date(2024, 5, 1, 14, 30, 0, 0, loc)

	for _, in := range []string{
		"2024-05-01 14:30",
		"2024-05-01T14:30",
		"2024-05-01T14:30:00",
		"5/1/2024 2:30 PM",
		"5/1/2024 14:30",
		" May 1, 2024 2:30 PM ",
	} {
		got, err := ParseInput(in, loc)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%q parsed as %s", in, got)
	}

	_, err = ParseInput("next tuesday", loc)
	assert.Error(t, err)
	_, err = ParseInput("", loc)
	assert.Error(t, err)
}

func TestParseGraph(t *testing.T) {
	got, err := ParseGraph("2024-05-01T09:30:00.0000000")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC), got)

	got, err = ParseGraph("2024-05-01T09:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC), got)

	_, err = ParseGraph("garbage")
	assert.Error(t, err)

	assert.Equal(t, "2024-05-01T09:30:00", GraphDateTime(got))
}
