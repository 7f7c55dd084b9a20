// Package calendar provides calendar arithmetic shared by the SHEF date/time
// engine: leap-year rules, month lengths, and the month-based CalendarDelta
// used by DR (relative date) operators and duration-variable handling.
package calendar

import "fmt"

// IsLeapYear reports whether year is a leap year under the standard
// Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

var daysInMonth = [...]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the number of days in the given month (1-12) of year.
func DaysInMonth(year, month int) int {
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return daysInMonth[month-1]
}

// IsLastDayOfMonth reports whether day is the last day of month in year.
func IsLastDayOfMonth(year, month, day int) bool {
	return day == DaysInMonth(year, month)
}

// NextDay returns the calendar date following (year, month, day).
func NextDay(year, month, day int) (int, int, int) {
	if day < DaysInMonth(year, month) {
		return year, month, day + 1
	}
	if month == 12 {
		return year + 1, 1, 1
	}
	return year, month + 1, 1
}

// PrevDay returns the calendar date preceding (year, month, day).
func PrevDay(year, month, day int) (int, int, int) {
	if day > 1 {
		return year, month, day - 1
	}
	if month == 1 {
		return year - 1, 12, 31
	}
	prevMonth := month - 1
	return year, prevMonth, DaysInMonth(year, prevMonth)
}

// Delta is a signed month offset with an end-of-month mode, applied to a
// calendar date by a DR[SNHDMYE] relative operator or a .B pending header
// delta.
//
// When EOM is true the result is forced to the last day of the target
// month; the source date must itself be a last-day-of-month date, otherwise
// Add returns an error. When EOM is false the result clamps to the target
// month's last day if the source day-of-month does not exist there (e.g.
// Jan 31 + 1 month clamps to Feb 28/29).
type Delta struct {
	Months int
	EOM    bool
}

// Add applies the delta to (year, month, day) and returns the resulting
// calendar date.
func (d Delta) Add(year, month, day int) (int, int, int, error) {
	if d.EOM && !IsLastDayOfMonth(year, month, day) {
		return 0, 0, 0, fmt.Errorf("calendar: end-of-month delta requires a last-day-of-month source, got %04d-%02d-%02d", year, month, day)
	}

	total := (year*12 + (month - 1)) + d.Months
	ny := total / 12
	nm := total % 12
	if nm < 0 {
		nm += 12
		ny--
	}
	nm++ // back to 1-12

	if d.EOM {
		return ny, nm, DaysInMonth(ny, nm), nil
	}

	nd := day
	if last := DaysInMonth(ny, nm); nd > last {
		nd = last
	}
	return ny, nm, nd, nil
}

// Negate returns the inverse delta used to check the calendar delta law
// (D + k months) - k months == D for D.day <= 28.
func (d Delta) Negate() Delta {
	return Delta{Months: -d.Months, EOM: d.EOM}
}
