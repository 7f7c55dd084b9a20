package shef

import (
	"fmt"
	"strings"
	"sync"

	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/config"
)

var (
	displayDefaultsOnce sync.Once
	displayDefaults     *config.Defaults
)

// builtinDefaultsForDisplay returns the built-in program defaults for use
// by the formatter, lazily constructed once per process. Format 1/2's
// probability and duration columns always reflect the built-in tables,
// independent of any SHEFPARM overlay in effect for the run that produced
// the record (§4.7).
func builtinDefaultsForDisplay() *config.Defaults {
	displayDefaultsOnce.Do(func() {
		displayDefaults = config.NewDefaults()
	})
	return displayDefaults
}

// OutputFormat selects one of the two legacy shefit-compatible text
// formats (§4.7).
type OutputFormat int

const (
	FormatVerbose OutputFormat = 1 // Format 1: fixed-column, canonical (§6 regex contract)
	FormatCompact OutputFormat = 2 // Format 2: shefit -2 compact shape
)

var zeroDateTime = "0000-00-00 00:00:00"

// FormatRecord renders rec in the selected legacy format, matching the
// column widths and separators §4.7/§6 specify byte-for-byte.
func FormatRecord(rec OutputRecord, format OutputFormat) string {
	switch format {
	case FormatCompact:
		return formatCompact(rec)
	default:
		return formatVerbose(rec)
	}
}

// displayParameterCode returns the parameter code column as Format 1
// shows it: the full resolved code, except when the typed code was itself
// a send code substitution, in which case the canonical rendering keeps
// the resolved code's first 6 characters plus a trailing space (§4.7). A
// short but ordinary partial code (e.g. "HG") still displays the full
// 7-char resolved code -- only a send code gets the shortened rendering.
func displayParameterCode(rec OutputRecord) string {
	if rec.FromSendCode {
		return rec.ParameterCode[:6] + " "
	}
	return rec.ParameterCode
}

func formatVerbose(rec OutputRecord) string {
	obs := rec.ObsTime.String()
	cre := zeroDateTime
	if rec.HasCreateTime {
		cre = rec.CreateTime.String()
	}

	revised := 0
	if rec.Revised {
		revised = 1
	}

	comment := rec.Comment
	if comment == "" {
		comment = " "
	}

	return fmt.Sprintf("%-10s%s  %s  %s%15.4f %s%9.3f  %04d %d %d  %-8s  \"%s\"",
		padOrTruncate(rec.Location, 10),
		obs,
		cre,
		displayParameterCode(rec),
		rec.Value,
		string(rec.Qualifier),
		probabilityValue(rec.ParameterCode),
		durationValue(rec.ParameterCode),
		revised,
		int(rec.TimeSeries),
		padOrTruncate(rec.Source, 8),
		comment,
	)
}

func formatCompact(rec OutputRecord) string {
	obs := packDateTime(rec.ObsTime)
	cre := "00000000000000"
	if rec.HasCreateTime {
		cre = packDateTime(rec.CreateTime)
	}

	pe := rec.ParameterCode[0:2]
	dur := rec.ParameterCode[2:3]
	ts := rec.ParameterCode[3:5]
	ext := rec.ParameterCode[5:6]

	revised := 0
	if rec.Revised {
		revised = 1
	}

	line := fmt.Sprintf("%-8s%s%s%3s%2s%1s%1s%10.3f%2s%6.2f%5d %d %-8s%d",
		padOrTruncate(rec.Location, 8),
		obs, cre,
		pe, ts, ext, dur,
		rec.Value,
		string(rec.Qualifier),
		probabilityValue(rec.ParameterCode),
		durationCodeInt(rec.ParameterCode),
		revised,
		padOrTruncate(rec.Source, 8),
		int(rec.TimeSeries),
	)
	if rec.Comment != "" {
		line += "\n    \"" + rec.Comment + "\""
	}
	return line
}

func padOrTruncate(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat(" ", n-len(s))
}

func packDateTime(dt interface {
	Year() int
	Month() int
	Day() int
	Hour() int
	Minute() int
	Second() int
}) string {
	return fmt.Sprintf("%04d%02d%02d%02d%02d%02d", dt.Year(), dt.Month(), dt.Day(), dt.Hour(), dt.Minute(), dt.Second())
}

// probabilityValue and durationValue re-derive the display numbers from a
// resolved 7-char code's own positions using the built-in tables, since
// OutputRecord only carries the resolved code string rather than the
// Defaults used to resolve it. A record's probability/duration display
// always reflects the program defaults, matching shefit's own output
// behavior of never re-deriving these from a per-run SHEFPARM overlay at
// format time.
func probabilityValue(code string) float64 {
	d := builtinDefaultsForDisplay()
	if v, ok := d.Probability[string(code[6])]; ok {
		return v
	}
	return -1.0
}

func durationValue(code string) int {
	d := builtinDefaultsForDisplay()
	if v, ok := d.Duration[string(code[2])]; ok {
		return v
	}
	return 0
}

func durationCodeInt(code string) int {
	return durationValue(code)
}
