package tz

import (
	"fmt"
	"time"

	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/calendar"
)

// DateTime is a calendar-aware instant carrying its own timezone model. It
// preserves the legacy "24:00:00" rendering of a day's final instant: such
// a value is stored internally as 00:00:00 of the following day with
// adjusted set, so that arithmetic works on an ordinary midnight while the
// accessors still report hour 24 on the original day. The only mutation
// path is Replace; every other operation returns a fresh value.
type DateTime struct {
	year, month, day          int
	hour, minute, second      int
	adjusted                  bool
	z                         Tz
}

// New constructs a DateTime. hour may be 24 only when minute and second are
// both 0, per §3; the instant is then stored as the following midnight with
// adjusted set. Construction rejects a civil instant that falls in the
// local spring-forward gap.
func New(year, month, day, hour, minute, second int, z Tz) (DateTime, error) {
	if hour == 24 {
		if minute != 0 || second != 0 {
			return DateTime{}, fmt.Errorf("tz: hour 24 requires minute=second=0, got 24:%02d:%02d", minute, second)
		}
		year, month, day = calendar.NextDay(year, month, day)
		dt := DateTime{year: year, month: month, day: day, adjusted: true, z: z}
		return dt, nil
	}

	if err := validateFields(year, month, day, hour, minute, second); err != nil {
		return DateTime{}, err
	}

	dt := DateTime{year: year, month: month, day: day, hour: hour, minute: minute, second: second, z: z}
	if z.model == ModernModel {
		// time.Date normalizes a civil time inside a gap to a different hour.
		if z.loc != nil && time.Date(year, time.Month(month), day, hour, minute, second, 0, z.loc).Hour() != hour {
			return DateTime{}, ErrSpringForwardGap
		}
	} else if z.isDSTEligible() && isSpringForwardGap(year, month, day, hour, minute) {
		return DateTime{}, ErrSpringForwardGap
	}
	return dt, nil
}

func validateFields(year, month, day, hour, minute, second int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("tz: month out of range: %d", month)
	}
	if day < 1 || day > calendar.DaysInMonth(year, month) {
		return fmt.Errorf("tz: day out of range for %04d-%02d: %d", year, month, day)
	}
	if hour < 0 || hour > 23 {
		return fmt.Errorf("tz: hour out of range: %d", hour)
	}
	if minute < 0 || minute > 59 {
		return fmt.Errorf("tz: minute out of range: %d", minute)
	}
	if second < 0 || second > 59 {
		return fmt.Errorf("tz: second out of range: %d", second)
	}
	return nil
}

// isAt2400 reports whether dt represents a stored-as-next-midnight 24:00:00 instant.
func (dt DateTime) isAt2400() bool {
	return dt.adjusted && dt.hour == 0 && dt.minute == 0 && dt.second == 0
}

// Year returns the year component, honoring the 24:00 rule.
func (dt DateTime) Year() int { y, _, _ := dt.logicalDate(); return y }

// Month returns the month component, honoring the 24:00 rule.
func (dt DateTime) Month() int { _, m, _ := dt.logicalDate(); return m }

// Day returns the day component, honoring the 24:00 rule.
func (dt DateTime) Day() int { _, _, d := dt.logicalDate(); return d }

// Hour returns 24 for a preserved 24:00:00 instant, else the stored hour.
func (dt DateTime) Hour() int {
	if dt.isAt2400() {
		return 24
	}
	return dt.hour
}

// Minute returns the minute component.
func (dt DateTime) Minute() int { return dt.minute }

// Second returns the second component.
func (dt DateTime) Second() int { return dt.second }

// Tz returns the timezone model this instant was constructed with.
func (dt DateTime) Tz() Tz { return dt.z }

func (dt DateTime) logicalDate() (int, int, int) {
	if dt.isAt2400() {
		return calendar.PrevDay(dt.year, dt.month, dt.day)
	}
	return dt.year, dt.month, dt.day
}

// UTC resolves this instant to a UTC time.Time, for comparisons and for
// calendar-delta/interval arithmetic. Comparisons must always be performed
// in UTC per §3.
func (dt DateTime) UTC() (time.Time, error) {
	off, err := dt.z.offsetSeconds(dt.year, dt.month, dt.day, dt.hour, dt.minute, dt.second)
	if err != nil {
		return time.Time{}, err
	}
	local := time.Date(dt.year, time.Month(dt.month), dt.day, dt.hour, dt.minute, dt.second, 0, time.UTC)
	return local.Add(-time.Duration(off) * time.Second), nil
}

// Equal, Before, and After compare two DateTimes in UTC, regardless of
// their own timezone model (comparisons are always performed in UTC,
// per §3; mixing models is fine for comparison even though arithmetic
// rejects it).
func (dt DateTime) Equal(other DateTime) (bool, error) {
	a, err := dt.UTC()
	if err != nil {
		return false, err
	}
	b, err := other.UTC()
	if err != nil {
		return false, err
	}
	return a.Equal(b), nil
}

func (dt DateTime) Before(other DateTime) (bool, error) {
	a, err := dt.UTC()
	if err != nil {
		return false, err
	}
	b, err := other.UTC()
	if err != nil {
		return false, err
	}
	return a.Before(b), nil
}

func (dt DateTime) After(other DateTime) (bool, error) {
	a, err := dt.UTC()
	if err != nil {
		return false, err
	}
	b, err := other.UTC()
	if err != nil {
		return false, err
	}
	return a.After(b), nil
}

// Add applies a clock-based offset (a DR operator in hours/minutes/seconds,
// or an .E interval) and returns a fresh DateTime in the same Tz. Any
// result that does not land exactly on midnight clears the adjusted flag,
// per §4.2.
func (dt DateTime) Add(d time.Duration) (DateTime, error) {
	u, err := dt.UTC()
	if err != nil {
		return DateTime{}, err
	}
	u = u.Add(d)
	return fromUTC(u, dt.z)
}

// AddCalendar applies a month-based CalendarDelta (a DR[MY] relative
// operator, or a duration-variable month shift) to the logical calendar
// date, preserving the time-of-day (including a 24:00 rendering).
func (dt DateTime) AddCalendar(delta calendar.Delta) (DateTime, error) {
	y, m, d := dt.logicalDate()
	ny, nm, nd, err := delta.Add(y, m, d)
	if err != nil {
		return DateTime{}, err
	}
	return New(ny, nm, nd, dt.Hour(), dt.minute, dt.second, dt.z)
}

// fromUTC converts a UTC instant into the local civil fields of the given
// Tz. For the legacy model this requires resolving the standard offset
// first, checking DST against the resulting candidate local time, and
// re-resolving if the zone is in its daylight season -- mirroring the
// single-pass legacy conversion described in §4.2.
func fromUTC(u time.Time, z Tz) (DateTime, error) {
	switch z.Model() {
	case ModernModel:
		local := u.In(z.loc)
		return New(local.Year(), int(local.Month()), local.Day(), local.Hour(), local.Minute(), local.Second(), z)
	case LegacyModel:
		base := baseLetter(z.legacy)
		std := standardOffsetMinutes[base]
		candidate := u.Add(time.Duration(std) * time.Minute)
		offMin := std
		if daylightSuffixed(z.legacy) {
			offMin = std + 60
		} else if !standardSuffixed(z.legacy) && !noDST[base] && floating[base] {
			if IsSummerTime(candidate.Year(), int(candidate.Month()), candidate.Day(), candidate.Hour(), candidate.Minute()) {
				offMin = std + 60
			}
		}
		local := u.Add(time.Duration(offMin) * time.Minute)
		return New(local.Year(), int(local.Month()), local.Day(), local.Hour(), local.Minute(), local.Second(), z)
	default:
		return DateTime{}, fmt.Errorf("tz: unknown model")
	}
}

// To converts dt into another Tz of the SAME model. Mixed-model conversion
// is rejected (§4.2).
func (dt DateTime) To(target Tz) (DateTime, error) {
	if dt.z.Model() != target.Model() {
		return DateTime{}, ErrMixedModel
	}
	u, err := dt.UTC()
	if err != nil {
		return DateTime{}, err
	}
	return fromUTC(u, target)
}

// Fields selects which components Replace overrides; a nil pointer leaves
// the corresponding component unchanged.
type Fields struct {
	Year, Month, Day, Hour, Minute, Second *int
	Tz                                     *Tz
}

// Replace returns a new DateTime with the selected fields overridden. This
// is the sole explicit "mutation" operation permitted on a DateTime; it
// never mutates dt itself.
func (dt DateTime) Replace(f Fields) (DateTime, error) {
	y, mo, d, h, mi, s := dt.Year(), dt.Month(), dt.Day(), dt.Hour(), dt.Minute(), dt.Second()
	z := dt.z
	if f.Year != nil {
		y = *f.Year
	}
	if f.Month != nil {
		mo = *f.Month
	}
	if f.Day != nil {
		d = *f.Day
	}
	if f.Hour != nil {
		h = *f.Hour
	}
	if f.Minute != nil {
		mi = *f.Minute
	}
	if f.Second != nil {
		s = *f.Second
	}
	if f.Tz != nil {
		z = *f.Tz
	}
	return New(y, mo, d, h, mi, s, z)
}

// String renders the instant as "YYYY-MM-DD HH:MM:SS", honoring 24:00.
func (dt DateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", dt.Year(), dt.Month(), dt.Day(), dt.Hour(), dt.Minute(), dt.Second())
}
