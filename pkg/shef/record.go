package shef

import (
	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/calendar"
	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/tz"
)

// TimeSeriesCode classifies an OutputRecord as a singleton or as part of a
// series produced by a single message (§3, GLOSSARY).
type TimeSeriesCode int

const (
	NotSeries TimeSeriesCode = iota
	SeriesFirst
	SeriesSubsequent
)

// DurationVariable pairs a duration-variable unit letter with its value,
// carried when a parameter code's duration position is 'V' (DV token,
// §4.4).
type DurationVariable struct {
	Unit  byte
	Value int
}

// OutputRecord is one emitted observation value (§3).
type OutputRecord struct {
	Location string

	ObsTime tz.DateTime

	HasCreateTime bool
	CreateTime    tz.DateTime

	ParameterCode string // resolved 7-char code
	OriginalCode  string // as typed in the message, before resolution
	FromSendCode  bool   // OriginalCode's leading 2 chars are a send code, not a PE

	Value float64

	Qualifier byte

	Revised bool

	DurationVariable DurationVariable

	Source string // message source: the .B header location; empty for .A/.E records

	TimeSeries TimeSeriesCode

	Comment string
}

// RelativeDelta is a pending DR offset: either a clock-based duration (for
// S/N/H/D operators) or a calendar delta (for M/Y/E-end-of-month
// operators), never both.
type RelativeDelta struct {
	Clock    *clockDelta
	Calendar *calendar.Delta
}

type clockDelta struct {
	seconds int64
}

// DotBHeaderParameterInfo is one parameter control slot declared in a .B
// header (§3). ObsTime is nil when a relative shift is still pending
// expansion against each body row.
type DotBHeaderParameterInfo struct {
	ParameterCode string
	OriginalCode  string
	FromSendCode  bool
	UsePrev7am    bool

	ObsTime      *tz.DateTime
	PendingDelta *RelativeDelta

	HasCreateTime bool
	CreateTime    tz.DateTime
	CreateTimeStr string

	English   bool
	Qualifier byte

	DurationVariable DurationVariable
}
