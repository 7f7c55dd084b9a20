// Package tz implements the SHEF date/time engine's two timezone models:
// a modern model backed by *time.Location / fixed UTC offsets, and a
// legacy ("shefit") model backed by the closed set of single/double-letter
// zone codes and a table-driven DST rule. The two models are never mixed;
// Tz is a small tagged union enforcing that at the API boundary, following
// the REDESIGN FLAGS guidance to keep the two worlds separate at the
// parser construction site.
package tz

import (
	"fmt"
	"time"
)

// Model distinguishes the two interchangeable timezone representations a
// parser is constructed with.
type Model int

const (
	// ModernModel resolves offsets from a *time.Location or a fixed offset.
	ModernModel Model = iota
	// LegacyModel resolves offsets from the shefit zone table and DST rule.
	LegacyModel
)

// Tz is either a modern zone/offset or a legacy zone code, never both.
type Tz struct {
	model Model

	loc *time.Location // ModernModel only

	legacy     LegacyZone // LegacyModel only
	shefitBugs bool       // LegacyModel only: --shefit_times quirks enabled
}

// ModernZone builds a Tz from a named *time.Location (e.g. time.LoadLocation
// result) or a fixed UTC offset built with time.FixedZone.
func ModernZone(loc *time.Location) Tz {
	if loc == nil {
		loc = time.UTC
	}
	return Tz{model: ModernModel, loc: loc}
}

// ModernFixedOffset builds a modern Tz pinned to a fixed UTC offset in seconds.
func ModernFixedOffset(name string, offsetSeconds int) Tz {
	return Tz{model: ModernModel, loc: time.FixedZone(name, offsetSeconds)}
}

// LegacyTz builds a legacy Tz from one of the closed shefit zone codes.
// shefitBugs enables the bug-for-bug quirk of the bare zone Y under
// --shefit_times; it must be false for the modern model by
// construction (ModernZone/ModernFixedOffset never set it).
func LegacyTz(code LegacyZone, shefitBugs bool) (Tz, error) {
	if !ValidLegacyZone(code) {
		return Tz{}, errUnknownZone(code)
	}
	return Tz{model: LegacyModel, legacy: code, shefitBugs: shefitBugs}, nil
}

// Model reports which representation this Tz carries.
func (t Tz) Model() Model { return t.model }

// String renders the zone as it would appear in SHEF text: the IANA/fixed
// name for modern zones, the bare legacy code for legacy ones.
func (t Tz) String() string {
	if t.model == LegacyModel {
		return string(t.legacy)
	}
	return t.loc.String()
}

// offsetSeconds resolves the UTC offset in effect for the local civil
// instant (year, month, day, hour, minute, second) under this Tz.
func (t Tz) offsetSeconds(year, month, day, hour, minute, second int) (int, error) {
	switch t.model {
	case ModernModel:
		local := time.Date(year, time.Month(month), day, hour, minute, second, 0, t.loc)
		_, off := local.Zone()
		return off, nil
	case LegacyModel:
		mins, err := legacyOffsetMinutes(t.legacy, year, month, day, hour, minute, t.shefitBugs)
		if err != nil {
			return 0, err
		}
		return mins * 60, nil
	default:
		return 0, fmt.Errorf("tz: unknown model %d", t.model)
	}
}

// isDSTEligible reports whether this Tz's legacy zone is ever subject to
// the spring-forward gap check (§4.2: "other than Z, N, H").
func (t Tz) isDSTEligible() bool {
	if t.model != LegacyModel {
		return true // modern zones always rely on time.Location's own gap handling
	}
	return !noDST[baseLetter(t.legacy)]
}
