package heatmap

import "time"

// Week is seven consecutive days, Sunday first.
type Week [7]time.Time

// Grid returns the Sunday-to-Saturday weeks covering Jan 1 through Dec 31 of year,
// padded with days of the adjacent years to complete the first and last week.
// All dates are midnight UTC.
func Grid(year int) []Week {
	first, last := gridBounds(year)

	weeks := make([]Week, 0, 54)
	for d := first; !d.After(last); {
		var w Week
		for i := range w {
			w[i] = d
			d = d.AddDate(0, 0, 1)
		}
		weeks = append(weeks, w)
	}
	return weeks
}

// gridBounds returns the Sunday on or before Jan 1 and the Saturday on or after Dec 31.
func gridBounds(year int) (time.Time, time.Time) {
	first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	first = first.AddDate(0, 0, -int(first.Weekday()))

	last := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	last = last.AddDate(0, 0, int(time.Saturday-last.Weekday()))

	return first, last
}
