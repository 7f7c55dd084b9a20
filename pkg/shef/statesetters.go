package shef

import (
	"fmt"
	"strconv"
	"time"

	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/calendar"
	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/tz"
)

func calendarPrevDay(year, month, day int) (int, int, int) {
	return calendar.PrevDay(year, month, day)
}

// applyAbsoluteDateToken applies a D[SNHDMYJT]\d+ operator to ctx.obsTime
// and records it as the new lastExplicit time (§4.6: "the first absolute
// operator after series start resets last_explicit_time"). Each field
// letter's operand cascades into the finer components to its right when
// given extra digit pairs -- DY takes 2/4/6/8 digits (yy/yymm/yymmdd/
// yymmddhh), DM takes 2/4/6 (mm/mmdd/mmddhh), DD and DH take 2/4
// (dd/ddhh, hh/hhmm), and DJ's day-of-year takes an optional trailing
// hour pair -- the same cascading-width convention DT already uses for
// its full hhmmss pack.
func applyAbsoluteDateToken(ctx *parserContext, tok Token) error {
	digits := tok.Digits
	if digits == "" {
		digits = strconv.Itoa(tok.Number)
	}

	var dt tz.DateTime
	var err error

	atoi := func(s string) int { v, _ := strconv.Atoi(s); return v }

	switch tok.Field {
	case 'S':
		v := atoi(digits)
		dt, err = ctx.obsTime.Replace(tz.Fields{Second: &v})
	case 'N':
		v := atoi(digits)
		dt, err = ctx.obsTime.Replace(tz.Fields{Minute: &v})
	case 'H':
		f := tz.Fields{}
		switch len(digits) {
		case 1, 2:
			h := atoi(digits)
			f.Hour = &h
		case 3, 4:
			for len(digits) < 4 {
				digits = "0" + digits
			}
			h, mi := atoi(digits[0:2]), atoi(digits[2:4])
			f.Hour, f.Minute = &h, &mi
		default:
			return fmt.Errorf("DH operand %q has an unsupported length", tok.Digits)
		}
		dt, err = ctx.obsTime.Replace(f)
	case 'D':
		f := tz.Fields{}
		switch len(digits) {
		case 1, 2:
			d := atoi(digits)
			f.Day = &d
		case 3, 4:
			for len(digits) < 4 {
				digits = "0" + digits
			}
			d, h := atoi(digits[0:2]), atoi(digits[2:4])
			f.Day, f.Hour = &d, &h
		default:
			return fmt.Errorf("DD operand %q has an unsupported length", tok.Digits)
		}
		dt, err = ctx.obsTime.Replace(f)
	case 'M':
		f := tz.Fields{}
		switch len(digits) {
		case 1, 2:
			mo := atoi(digits)
			f.Month = &mo
		case 3, 4:
			for len(digits) < 4 {
				digits = "0" + digits
			}
			mo, d := atoi(digits[0:2]), atoi(digits[2:4])
			f.Month, f.Day = &mo, &d
		case 5, 6:
			for len(digits) < 6 {
				digits = "0" + digits
			}
			mo, d, h := atoi(digits[0:2]), atoi(digits[2:4]), atoi(digits[4:6])
			f.Month, f.Day, f.Hour = &mo, &d, &h
		default:
			return fmt.Errorf("DM operand %q has an unsupported length", tok.Digits)
		}
		dt, err = ctx.obsTime.Replace(f)
	case 'Y':
		f := tz.Fields{}
		switch len(digits) {
		case 1, 2:
			y := expandYearDigits(atoi(digits))
			f.Year = &y
		case 3, 4:
			for len(digits) < 4 {
				digits = "0" + digits
			}
			y, mo := expandYearDigits(atoi(digits[0:2])), atoi(digits[2:4])
			f.Year, f.Month = &y, &mo
		case 5, 6:
			for len(digits) < 6 {
				digits = "0" + digits
			}
			y, mo, d := expandYearDigits(atoi(digits[0:2])), atoi(digits[2:4]), atoi(digits[4:6])
			f.Year, f.Month, f.Day = &y, &mo, &d
		case 7, 8:
			for len(digits) < 8 {
				digits = "0" + digits
			}
			y, mo, d, h := expandYearDigits(atoi(digits[0:2])), atoi(digits[2:4]), atoi(digits[4:6]), atoi(digits[6:8])
			f.Year, f.Month, f.Day, f.Hour = &y, &mo, &d, &h
		default:
			return fmt.Errorf("DY operand %q has an unsupported length", tok.Digits)
		}
		dt, err = ctx.obsTime.Replace(f)
	case 'J':
		doy := tok.Number
		hasHour := false
		hour := 0
		if len(digits) >= 5 {
			hour = atoi(digits[len(digits)-2:])
			doy = atoi(digits[:len(digits)-2])
			hasHour = true
		}
		month, day := dayOfYearToMonthDay(ctx.obsTime.Year(), doy)
		f := tz.Fields{Month: &month, Day: &day}
		if hasHour {
			f.Hour = &hour
		}
		dt, err = ctx.obsTime.Replace(f)
	case 'T':
		h, mi, s, perr := splitPackedTime(tok.Number)
		if perr != nil {
			return perr
		}
		dt, err = ctx.obsTime.Replace(tz.Fields{Hour: &h, Minute: &mi, Second: &s})
	default:
		return fmt.Errorf("unsupported absolute date field %q", string(tok.Field))
	}
	if err != nil {
		return err
	}
	ctx.obsTime = dt
	ctx.lastExplicit = dt
	ctx.hasLastExplicit = true
	return nil
}

// applyRelativeDateToken applies a DR[SNHDMYE][+-]?\d{1,2} operator
// immediately to ctx.obsTime, as §4.6 requires for .A/.E (a .B header
// instead holds the delta pending via relativeDeltaFor).
func applyRelativeDateToken(ctx *parserContext, tok Token) error {
	if tok.Number > 99 {
		return fmt.Errorf("relative date magnitude %d exceeds 99", tok.Number)
	}
	ctx.usedRelativeOperator = true
	if fieldIsCalendar(tok.Field) {
		delta := calendarDeltaFor(tok.Field, tok.Sign, tok.Number)
		dt, err := ctx.obsTime.AddCalendar(delta)
		if err != nil {
			return err
		}
		ctx.obsTime = dt
		return nil
	}
	d := fieldDuration(tok.Field, tok.Number)
	dt, err := ctx.obsTime.Add(time.Duration(tok.Sign) * d)
	if err != nil {
		return err
	}
	ctx.obsTime = dt
	return nil
}

func expandYearDigits(n int) int {
	if n < 100 {
		return 2000 + n // SHEF traffic post-dates 2000 overwhelmingly; matches the header 6-digit century rule's spirit
	}
	return n
}

func dayOfYearToMonthDay(year, doy int) (int, int) {
	monthLen := []int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
		monthLen[1] = 29
	}
	m := 1
	for _, ml := range monthLen {
		if doy <= ml {
			return m, doy
		}
		doy -= ml
		m++
	}
	return 12, monthLen[11]
}

// applyCreateTimeToken sets ctx.createTime from a DC operand, per the
// length->shape table documented on parseCreateDigits.
func applyCreateTimeToken(ctx *parserContext, tok Token) error {
	year, month, day, hour, minute, second, err := parseCreateDigits(tok.ValueText, ctx.obsTime.Year())
	if err != nil {
		return err
	}
	dt, err := tz.New(year, month, day, hour, minute, second, ctx.zone)
	if err != nil {
		return err
	}
	ctx.createTime = dt
	ctx.hasCreateTime = true
	return nil
}

// parseCreateDigits decodes a DC operand's digit string per its length
// (§4.4: length in {4,6,8,10,12}). 4/6/8-digit forms carry a date only,
// against obsYear when the digit string itself omits a year; 10/12-digit
// forms add an hour or hour+minute component.
func parseCreateDigits(digits string, obsYear int) (year, month, day, hour, minute, second int, err error) {
	atoi := func(s string) int { v, _ := strconv.Atoi(s); return v }
	switch len(digits) {
	case 4:
		return obsYear, atoi(digits[0:2]), atoi(digits[2:4]), 0, 0, 0, nil
	case 6:
		yy := atoi(digits[0:2])
		return 2000 + yy, atoi(digits[2:4]), atoi(digits[4:6]), 0, 0, 0, nil
	case 8:
		return atoi(digits[0:4]), atoi(digits[4:6]), atoi(digits[6:8]), 0, 0, 0, nil
	case 10:
		return atoi(digits[0:4]), atoi(digits[4:6]), atoi(digits[6:8]), atoi(digits[8:10]), 0, 0, nil
	case 12:
		return atoi(digits[0:4]), atoi(digits[4:6]), atoi(digits[6:8]), atoi(digits[8:10]), atoi(digits[10:12]), 0, nil
	}
	return 0, 0, 0, 0, 0, 0, fmt.Errorf("create-time operand %q has unsupported length %d", digits, len(digits))
}

// applySendCodePrev7am applies the §4.6 "previous 7am" rule for send codes
// flagged UsePrev7am (QY, HY, PY, and any SHEFPARM-added code carrying the
// flag): obsTime becomes the previous local 07:00:00 when its current hour
// is before 7, else today's local 07:00:00. It is illegal to combine this
// rule with a UTC (Z) zone or with any DR operator already applied to the
// message.
func applySendCodePrev7am(ctx *parserContext) error {
	if ctx.zoneCode == "Z" {
		return fmt.Errorf("send code with previous-7am rule cannot be combined with zone Z")
	}
	if ctx.usedRelativeOperator {
		return fmt.Errorf("send code with previous-7am rule cannot be combined with a DR operator")
	}
	hour := ctx.obsTime.Hour()
	year, month, day := ctx.obsTime.Year(), ctx.obsTime.Month(), ctx.obsTime.Day()
	if hour < 7 {
		year, month, day = calendarPrevDay(year, month, day)
	}
	h := 7
	zero := 0
	dt, err := ctx.obsTime.Replace(tz.Fields{Year: &year, Month: &month, Day: &day, Hour: &h, Minute: &zero, Second: &zero})
	if err != nil {
		return err
	}
	ctx.obsTime = dt
	return nil
}

// splitPackedTime decodes a DT operand's hh[mm[ss]] packed digits.
func splitPackedTime(n int) (int, int, int, error) {
	s := strconv.Itoa(n)
	switch len(s) {
	case 1, 2:
		h, _ := strconv.Atoi(s)
		return h, 0, 0, nil
	case 3, 4:
		for len(s) < 4 {
			s = "0" + s
		}
		h, _ := strconv.Atoi(s[0:2])
		mi, _ := strconv.Atoi(s[2:4])
		return h, mi, 0, nil
	case 5, 6:
		for len(s) < 6 {
			s = "0" + s
		}
		h, _ := strconv.Atoi(s[0:2])
		mi, _ := strconv.Atoi(s[2:4])
		sec, _ := strconv.Atoi(s[4:6])
		return h, mi, sec, nil
	}
	return 0, 0, 0, fmt.Errorf("DT operand %q has an unsupported length", s)
}
