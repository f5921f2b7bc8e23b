package datetime

import "time"

// Window is a half-open UTC time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// WeekWindow returns the UTC bounds of the calendar week containing today,
// as observed in the zone named by tzID. Weeks start on Sunday at local
// midnight and last seven days.
//
// Only the calendar date of today is used. When local midnight is ambiguous
// the standard-time instant wins; when it does not exist the offset in force
// before the transition is applied.
func WeekWindow(today time.Time, tzID string) (Window, error) {
	loc, err := ResolveZone(tzID)
	if err != nil {
		return Window{}, err
	}

	y, m, d := today.Date()
	diff := int(time.Sunday - today.Weekday())
	sunday := time.Date(y, m, d+diff, 0, 0, 0, 0, time.UTC)

	start := LocalToUTC(sunday, loc)
	return Window{Start: start, End: start.AddDate(0, 0, 7)}, nil
}

// LocalToUTC interprets the wall clock of naive (its zone is ignored) in loc
// and returns the matching UTC instant, resolving DST gaps and overlaps as
// described on WeekWindow.
func LocalToUTC(naive time.Time, loc *time.Location) time.Time {
	y, mo, d := naive.Date()
	h, mi, s := naive.Clock()
	wall := time.Date(y, mo, d, h, mi, s, naive.Nanosecond(), time.UTC)

	_, before := wall.Add(-24 * time.Hour).In(loc).Zone()
	_, after := wall.Add(24 * time.Hour).In(loc).Zone()

	var valid []time.Time
	for _, off := range []int{before, after} {
		c := wall.Add(-time.Duration(off) * time.Second)
		if sameWall(c.In(loc), wall) && (len(valid) == 0 || !valid[0].Equal(c)) {
			valid = append(valid, c)
		}
	}

	switch len(valid) {
	case 0:
		return wall.Add(-time.Duration(before) * time.Second).UTC()
	case 1:
		return valid[0].UTC()
	}
	for _, c := range valid {
		if !c.In(loc).IsDST() {
			return c.UTC()
		}
	}
	return valid[0].UTC()
}

func sameWall(t, wall time.Time) bool {
	y1, m1, d1 := t.Date()
	y2, m2, d2 := wall.Date()
	h1, i1, s1 := t.Clock()
	h2, i2, s2 := wall.Clock()
	return y1 == y2 && m1 == m2 && d1 == d2 && h1 == h2 && i1 == i2 && s1 == s2 &&
		t.Nanosecond() == wall.Nanosecond()
}
