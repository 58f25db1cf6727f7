package query

import "time"

// GridCells is the fixed 6x7 cell count of a month calendar grid.
const GridCells = 42

// MonthGrid returns the 42 consecutive days shown for a month, anchored to
// the Sunday on or before the 1st. It depends only on (year, month), never
// on the record set.
func MonthGrid(year int, month time.Month) []time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	start := first.AddDate(0, 0, -int(first.Weekday()))

	days := make([]time.Time, 0, GridCells)
	for i := 0; i < GridCells; i++ {
		days = append(days, start.AddDate(0, 0, i))
	}
	return days
}
