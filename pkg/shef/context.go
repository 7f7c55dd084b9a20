package shef

import (
	"time"

	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/calendar"
	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/config"
	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/tz"
)

// parserContext carries the running state a .A/.E/.B message parser needs
// -- current defaults, running observation time, pending relative deltas,
// current parameter code, unit system, qualifier -- as an explicit value
// threaded through the three message parsers. There is no hidden mutable
// global: the Decoder owns one context and passes it to each parser call, per the REDESIGN FLAGS
// guidance to eliminate the original's dynamic "current value" loader
// state.
type parserContext struct {
	defaults *config.Defaults

	legacyMode bool
	shefitBugs bool
	modernLoc  *time.Location
	now        time.Time

	zone     tz.Tz
	zoneCode tz.LegacyZone

	obsTime         tz.DateTime
	lastExplicit    tz.DateTime
	hasLastExplicit bool

	createTime    tz.DateTime
	hasCreateTime bool

	english   bool // true = English units (DU E), false = SI (DU S)
	qualifier byte

	durVar DurationVariable

	pendingDelta *RelativeDelta

	location string
	revised  bool

	// usedRelativeOperator records whether any DR operator has been
	// applied to this message, so a later use_prev_7am send code can be
	// rejected per §4.6's "illegal to combine" rule.
	usedRelativeOperator bool
}

// newParserContext returns a parserContext seeded with the Decoder's
// static configuration. obsTime/zone/location are filled in per-message by
// each message parser once the positional header has been resolved.
func newParserContext(defaults *config.Defaults, legacyMode, shefitBugs bool, modernLoc *time.Location, now time.Time) *parserContext {
	return &parserContext{
		defaults:   defaults,
		legacyMode: legacyMode,
		shefitBugs: shefitBugs,
		modernLoc:  modernLoc,
		now:        now,
		english:    true, // SHEF traffic is conventionally in English units until a DU S token says otherwise
		qualifier:  'Z',
	}
}

// fieldDuration converts an unsigned magnitude into a clock duration for
// the field letters S/N/H/D (seconds/minutes/hours/days). It returns 0 for
// the calendar fields M/Y/E, which calendarDeltaFor handles; callers apply
// the sign.
func fieldDuration(field byte, magnitude int) time.Duration {
	switch field {
	case 'S':
		return time.Duration(magnitude) * time.Second
	case 'N':
		return time.Duration(magnitude) * time.Minute
	case 'H':
		return time.Duration(magnitude) * time.Hour
	case 'D':
		return 24 * time.Duration(magnitude) * time.Hour
	default:
		return 0
	}
}

// fieldIsCalendar reports whether field selects a month-based (M/Y/E) rather
// than clock-based delta.
func fieldIsCalendar(field byte) bool {
	return field == 'M' || field == 'Y' || field == 'E'
}

func calendarDeltaFor(field byte, sign, magnitude int) calendar.Delta {
	switch field {
	case 'Y':
		return calendar.Delta{Months: sign * magnitude * 12}
	case 'M':
		return calendar.Delta{Months: sign * magnitude}
	case 'E':
		return calendar.Delta{Months: sign * magnitude, EOM: true}
	default:
		return calendar.Delta{}
	}
}
