package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekWindow_WednesdayFixedZone(t *testing.T) {
	// Wednesday, May 1 2024. Tokyo has no DST.
	today := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	w, err := WeekWindow(today, "Asia/Tokyo")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 4, 27, 15, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 5, 4, 15, 0, 0, 0, time.UTC), w.End)
	assert.Equal(t, 7*24*time.Hour, w.End.Sub(w.Start))
}

func TestWeekWindow_SundayHasZeroOffset(t *testing.T) {
	today := time.Date(2024, 4, 28, 0, 0, 0, 0, time.UTC)
	loc, err := ResolveZone("America/Chicago")
	require.NoError(t, err)

	w, err := WeekWindow(today, "America/Chicago")
	require.NoError(t, err)

	local := w.Start.In(loc)
	assert.Equal(t, time.Sunday, local.Weekday())
	assert.Equal(t, 28, local.Day())
	assert.Equal(t, time.Date(2024, 4, 28, 5, 0, 0, 0, time.UTC), w.Start)
}

func TestWeekWindow_StartIsSundayMidnightEveryDay(t *testing.T) {
	zones := []string{"America/Chicago", "Europe/Berlin", "Australia/Sydney", "Asia/Kolkata", "Pacific Standard Time"}
	for _, zone := range zones {
		loc, err := ResolveZone(zone)
		require.NoError(t, err)

		for i := 0; i < 60; i++ {
			today := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
			w, err := WeekWindow(today, zone)
			require.NoError(t, err)

			local := w.Start.In(loc)
			assert.Equal(t, time.Sunday, local.Weekday(), "%s %s", zone, today)
			h, m, s := local.Clock()
			assert.Equal(t, [3]int{0, 0, 0}, [3]int{h, m, s}, "%s %s", zone, today)
			assert.Equal(t, 7*24*time.Hour, w.End.Sub(w.Start))
			assert.False(t, w.Start.After(today.Add(24*time.Hour)))
		}
	}
}

func TestWeekWindow_WindowsZoneName(t *testing.T) {
	today := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	byWindows, err := WeekWindow(today, "Central Standard Time")
	require.NoError(t, err)
	byIANA, err := WeekWindow(today, "America/Chicago")
	require.NoError(t, err)

	assert.Equal(t, byIANA, byWindows)
	assert.Equal(t, time.Date(2024, 1, 7, 6, 0, 0, 0, time.UTC), byWindows.Start)
}

func TestWeekWindow_UnknownZone(t *testing.T) {
	_, err := WeekWindow(time.Now(), "Not/AZone")
	assert.Error(t, err)
}

func TestLocalToUTC_MidnightGap(t *testing.T) {
	// Brazil moved clocks from 00:00 to 01:00 on Sunday, November 4 2018.
	loc, err := ResolveZone("America/Sao_Paulo")
	require.NoError(t, err)

	got := LocalToUTC(time.Date(2018, 11, 4, 0, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, time.Date(2018, 11, 4, 3, 0, 0, 0, time.UTC), got)

	w, err := WeekWindow(time.Date(2018, 11, 7, 0, 0, 0, 0, time.UTC), "America/Sao_Paulo")
	require.NoError(t, err)
	assert.Equal(t, got, w.Start)
}

func TestLocalToUTC_MidnightOverlapPrefersStandardTime(t *testing.T) {
	// Cuba set clocks back from 01:00 to 00:00 on Sunday, November 3 2019.
	loc, err := ResolveZone("America/Havana")
	require.NoError(t, err)

	got := LocalToUTC(time.Date(2019, 11, 3, 0, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, time.Date(2019, 11, 3, 5, 0, 0, 0, time.UTC), got)
	assert.False(t, got.In(loc).IsDST())
}

func TestResolveZone(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"America/Chicago", "America/Chicago"},
		{"Eastern Standard Time", "America/New_York"},
		{"W. Europe Standard Time", "Europe/Berlin"},
		{"  Tokyo Standard Time ", "Asia/Tokyo"},
		{"tzone://Microsoft/Utc", "UTC"},
		{"UTC", "Etc/UTC"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			loc, err := ResolveZone(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, loc.String())
		})
	}

	_, err := ResolveZone("")
	assert.Error(t, err)
}

func TestLocalZoneName(t *testing.T) {
	t.Setenv("TZ", ":Europe/Paris")
	assert.Equal(t, "Europe/Paris", LocalZoneName())

	t.Setenv("TZ", "")
	assert.NotEmpty(t, LocalZoneName())
}
