package shef

import (
	"fmt"
	"strconv"
	"time"

	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/tz"
)

// positionalHeader is the parsed `.X[R] LOCATION DATE [ZONE]` prefix shared
// by all three message types (§4.4, §4.6).
type positionalHeader struct {
	Type     MessageType
	Revised  bool
	Location string
	Year, Month, Day int
	ZoneText string // empty when omitted
	Rest     string // remainder of the line after the positional fields
}

// parsePositional splits the header line's positional fields from its
// trailing body/continuation text. The date/zone portion is re-tokenized
// by the caller via SplitFields/ClassifyField since it may itself carry
// slash-delimited state-setter operators immediately after the zone.
func parsePositional(line string, now time.Time, legacyMode bool) (positionalHeader, error) {
	m := rePositionalLoose.FindStringSubmatch(line)
	if m == nil {
		return positionalHeader{}, fmt.Errorf("malformed positional header: %q", line)
	}
	hdr := positionalHeader{
		Type:     parseMessageType(m[1]),
		Revised:  m[2] != "",
		Location: m[3],
		ZoneText: m[5],
		Rest:     m[6],
	}
	y, mo, d, err := resolveHeaderDate(m[4], now, legacyMode)
	if err != nil {
		return positionalHeader{}, err
	}
	hdr.Year, hdr.Month, hdr.Day = y, mo, d
	return hdr, nil
}

// resolveHeaderDate implements §4.6's header-date-length rules. legacyMode
// selects the "closest year by month distance" rule for a 4-digit date;
// the modern rule instead picks whichever of this-year/last-year is
// strictly closer by elapsed time.
func resolveHeaderDate(digits string, now time.Time, legacyMode bool) (int, int, int, error) {
	switch len(digits) {
	case 4:
		month, err := strconv.Atoi(digits[0:2])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("header date: bad month in %q", digits)
		}
		day, err := strconv.Atoi(digits[2:4])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("header date: bad day in %q", digits)
		}
		year := closestYear(now, month, day, legacyMode)
		if err := validateDate(year, month, day); err != nil {
			return 0, 0, 0, err
		}
		return year, month, day, nil

	case 6:
		yy, err := strconv.Atoi(digits[0:2])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("header date: bad year in %q", digits)
		}
		month, err := strconv.Atoi(digits[2:4])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("header date: bad month in %q", digits)
		}
		day, err := strconv.Atoi(digits[4:6])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("header date: bad day in %q", digits)
		}
		century := (now.Year() / 100) * 100
		year := century + yy
		if year-now.Year() > 10 {
			year -= 100
		}
		if err := validateDate(year, month, day); err != nil {
			return 0, 0, 0, err
		}
		return year, month, day, nil

	case 8:
		year, err := strconv.Atoi(digits[0:4])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("header date: bad year in %q", digits)
		}
		month, err := strconv.Atoi(digits[4:6])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("header date: bad month in %q", digits)
		}
		day, err := strconv.Atoi(digits[6:8])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("header date: bad day in %q", digits)
		}
		if err := validateDate(year, month, day); err != nil {
			return 0, 0, 0, err
		}
		return year, month, day, nil
	}
	return 0, 0, 0, fmt.Errorf("header date: unexpected length %d in %q", len(digits), digits)
}

func validateDate(year, month, day int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("header date: month out of range: %d", month)
	}
	daysInMonth := []int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	max := daysInMonth[month-1]
	if month == 2 && ((year%4 == 0 && year%100 != 0) || year%400 == 0) {
		max = 29
	}
	if day < 1 || day > max {
		return fmt.Errorf("header date: day out of range for %04d-%02d: %d", year, month, day)
	}
	return nil
}

// closestYear picks the year for a 4-digit mmdd header date. legacyMode
// picks by month distance from now's month; the modern rule compares
// elapsed wall-clock time between the this-year and last-year candidates
// and picks whichever is strictly closer (§4.6).
func closestYear(now time.Time, month, day int, legacyMode bool) int {
	thisYear := now.Year()
	if legacyMode {
		delta := month - int(now.Month())
		if delta > 6 {
			return thisYear - 1
		}
		if delta < -6 {
			return thisYear + 1
		}
		return thisYear
	}

	cand := time.Date(thisYear, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	candLastYear := time.Date(thisYear-1, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if abs(now.Sub(candLastYear)) < abs(now.Sub(cand)) {
		return thisYear - 1
	}
	return thisYear
}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// modernIANAZone maps each wire zone code to the well-defined modern
// source (§3(i)): an IANA zone name for the floating zones (so DST is
// resolved by the Go tzdata rules instead of the legacy table) or a fixed
// UTC offset for the standard/daylight-pinned variants.
var modernIANAZone = map[tz.LegacyZone]string{
	tz.Z: "UTC",
	tz.N: "America/St_Johns", tz.NS: "", tz.ND: "",
	tz.A: "America/Halifax", tz.AS: "", tz.AD: "",
	tz.E: "America/New_York", tz.ES: "", tz.ED: "",
	tz.C: "America/Chicago", tz.CS: "", tz.CD: "",
	tz.M: "America/Denver", tz.MS: "", tz.MD: "",
	tz.P: "America/Los_Angeles", tz.PS: "", tz.PD: "",
	tz.Y: "America/Anchorage", tz.YS: "", tz.YD: "",
	tz.L: "Pacific/Honolulu", tz.LS: "", tz.LD: "",
	tz.H: "Pacific/Honolulu", tz.HS: "", tz.HD: "",
	tz.B: "", tz.BS: "", tz.BD: "",
	tz.J: "",
}

// modernFixedOffsetMinutes covers the S/D-suffixed wire codes plus B and J,
// which have no IANA zone in modernIANAZone; their modern representation is
// a fixed UTC offset (§3(i) "a zone identifier or fixed UTC offset").
var modernFixedOffsetMinutes = map[tz.LegacyZone]int{
	tz.NS: -210, tz.ND: -150,
	tz.AS: -240, tz.AD: -180,
	tz.ES: -300, tz.ED: -240,
	tz.CS: -360, tz.CD: -300,
	tz.MS: -420, tz.MD: -360,
	tz.PS: -480, tz.PD: -420,
	tz.YS: -540, tz.YD: -480,
	tz.LS: -600, tz.LD: -540,
	tz.HS: -600, tz.HD: -540,
	tz.B: -660, tz.BS: -660, tz.BD: -600,
	tz.J: 540,
}

// buildZone constructs a tz.Tz for the header's optional zone text. An
// empty zoneText defaults to UTC.
func buildZone(zoneText string, legacyMode, shefitBugs bool, modernLoc *time.Location) (tz.Tz, error) {
	code := tz.LegacyZone("Z")
	if zoneText != "" {
		code = tz.LegacyZone(zoneText)
	}
	if !tz.ValidLegacyZone(code) {
		return tz.Tz{}, fmt.Errorf("header zone: unknown zone code %q", zoneText)
	}

	if legacyMode {
		return tz.LegacyTz(code, shefitBugs)
	}

	if modernLoc != nil {
		return tz.ModernZone(modernLoc), nil
	}
	if ianaName, ok := modernIANAZone[code]; ok && ianaName != "" {
		loc, err := time.LoadLocation(ianaName)
		if err == nil {
			return tz.ModernZone(loc), nil
		}
		// fall through to fixed offset if tzdata is unavailable
	}
	if off, ok := modernFixedOffsetMinutes[code]; ok {
		return tz.ModernFixedOffset(string(code), off*60), nil
	}
	return tz.ModernZone(time.UTC), nil
}
