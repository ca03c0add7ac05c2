package weather

import "time"

// SeasonWindow is an inclusive month/day range within a single calendar year.
type SeasonWindow struct {
	StartMonth int `json:"start_month"`
	StartDay   int `json:"start_day"`
	EndMonth   int `json:"end_month"`
	EndDay     int `json:"end_day"`
}

// DefaultSeason is the Northern Hemisphere growing season, April 1 to October 31.
var DefaultSeason = SeasonWindow{StartMonth: 4, StartDay: 1, EndMonth: 10, EndDay: 31}

// Valid reports whether the window has in-range fields and does not end
// before it starts. Windows that cross New Year are not valid.
func (w SeasonWindow) Valid() bool {
	if w.StartMonth < 1 || w.StartMonth > 12 || w.EndMonth < 1 || w.EndMonth > 12 {
		return false
	}
	if w.StartDay < 1 || w.StartDay > 31 || w.EndDay < 1 || w.EndDay > 31 {
		return false
	}
	return ordinal(w.EndMonth, w.EndDay) >= ordinal(w.StartMonth, w.StartDay)
}

// Resolve returns w, or DefaultSeason when w is not valid. The boolean reports
// whether the default was substituted.
func (w SeasonWindow) Resolve() (SeasonWindow, bool) {
	if w.Valid() {
		return w, false
	}
	return DefaultSeason, true
}

// Contains reports whether month/day falls inside the window, boundaries included.
func (w SeasonWindow) Contains(month time.Month, day int) bool {
	o := ordinal(int(month), day)
	return o >= ordinal(w.StartMonth, w.StartDay) && o <= ordinal(w.EndMonth, w.EndDay)
}

// StartDate returns the first day of the window in year.
func (w SeasonWindow) StartDate(year int) time.Time {
	return clampedDate(year, w.StartMonth, w.StartDay)
}

// EndDate returns the last day of the window in year. Days past the end of
// the month are clamped, so Feb 29 becomes Feb 28 in common years.
func (w SeasonWindow) EndDate(year int) time.Time {
	return clampedDate(year, w.EndMonth, w.EndDay)
}

func ordinal(month, day int) int {
	return month*100 + day
}

func clampedDate(year, month, day int) time.Time {
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
