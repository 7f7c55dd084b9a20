package shef

import (
	"strings"
	"testing"

	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/config"
	"github.com/stretchr/testify/assert"
)

func collect(t *testing.T, input string, opt DecoderOptions) ([]OutputRecord, *Diagnostics, error) {
	t.Helper()
	diag := NewDiagnostics("test", 500)
	if opt.Defaults == nil {
		opt.Defaults = config.NewDefaults()
	}
	opt.LegacyMode = true // deterministic table-driven zones, no tzdata lookups
	dec := NewDecoder(strings.NewReader(input), diag, opt)
	var recs []OutputRecord
	err := dec.Run(func(r OutputRecord) { recs = append(recs, r) })
	return recs, diag, err
}

func TestDecoderA_SimpleObservation(t *testing.T) {
	assert := assert.New(t)
	recs, _, err := collect(t, ".A LOCA 20240501 Z DH12/HG 12.34\n", DecoderOptions{})
	assert.NoError(err)
	if assert.Len(recs, 1) {
		r := recs[0]
		assert.Equal("LOCA", r.Location)
		assert.Equal("HGIRZZZ", r.ParameterCode)
		assert.Equal(12.34, r.Value)
		assert.Equal(2024, r.ObsTime.Year())
		assert.Equal(5, r.ObsTime.Month())
		assert.Equal(1, r.ObsTime.Day())
		assert.Equal(12, r.ObsTime.Hour())
	}
}

func TestDecoderA_SendCodePrev7amBeforeSeven(t *testing.T) {
	assert := assert.New(t)
	recs, _, err := collect(t, ".A XYZ 20240615 E DH0330/QY 123.0\n", DecoderOptions{})
	assert.NoError(err)
	if assert.Len(recs, 1) {
		r := recs[0]
		assert.Equal("QRIRZZZ", r.ParameterCode)
		assert.Equal(123.0, r.Value)
		assert.Equal(2024, r.ObsTime.Year())
		assert.Equal(6, r.ObsTime.Month())
		assert.Equal(14, r.ObsTime.Day(), "hour before 7 rolls obs date back one day")
		assert.Equal(7, r.ObsTime.Hour())
		assert.Equal(0, r.ObsTime.Minute())
	}
}

func TestDecoderA_SendCodeRejectsUTCZone(t *testing.T) {
	assert := assert.New(t)
	recs, diag, err := collect(t, ".A XYZ 20240615 Z DH0330/QY 123.0\n", DecoderOptions{})
	assert.NoError(err, "a ParseError does not itself abort the run below max_err")
	assert.Empty(recs)
	assert.Equal(1, diag.DistinctErrCount)
}

func TestDecoderE_IntervalSeriesWithNullSlot(t *testing.T) {
	assert := assert.New(t)
	recs, _, err := collect(t, ".E LOC 20240101 Z DH06/HG/DIH1/5.0/6.0//8.0\n", DecoderOptions{})
	assert.NoError(err)
	if assert.Len(recs, 3) {
		assert.Equal(6, recs[0].ObsTime.Hour())
		assert.Equal(5.0, recs[0].Value)
		assert.Equal(SeriesFirst, recs[0].TimeSeries)

		assert.Equal(7, recs[1].ObsTime.Hour())
		assert.Equal(6.0, recs[1].Value)
		assert.Equal(SeriesSubsequent, recs[1].TimeSeries)

		assert.Equal(9, recs[2].ObsTime.Hour(), "the empty slot advances the series without emitting")
		assert.Equal(8.0, recs[2].Value)
	}
	assert.Equal("HGHRZZZ", recs[0].ParameterCode, "the hourly interval overrides the duration position")
}

func TestDecoderB_LocationFieldCarriesFirstColumnValue(t *testing.T) {
	assert := assert.New(t)
	input := ".B SOURCE 20240601 Z DH12/HG/QR\nLOC1 1.2/3.4\n.END\n"
	recs, _, err := collect(t, input, DecoderOptions{})
	assert.NoError(err)
	if assert.Len(recs, 2) {
		assert.Equal("LOC1", recs[0].Location)
		assert.Equal("HGIRZZZ", recs[0].ParameterCode)
		assert.Equal(1.2, recs[0].Value)

		assert.Equal("LOC1", recs[1].Location)
		assert.Equal("QRIRZZZ", recs[1].ParameterCode)
		assert.Equal(3.4, recs[1].Value)
	}
}

func TestDecoderB_LocationRemainderGluedOperatorRunShiftsObsDate(t *testing.T) {
	assert := assert.New(t)
	// DHDM0715 glues a dangling "DH" (no digits ever follow it before "DM"
	// begins, so it is recovered as unrecognized noise -- see
	// splitOperatorRun) with a real DM override (month=07, day=15). Spec's
	// own literal example digits ("DHDM0700") decode to day 00, which is
	// not a valid calendar day under the documented MMDD cascade, so a
	// calendar-valid day is substituted here to exercise the same
	// mechanism end to end.
	input := ".B SOURCE 20240601 Z DH12/HG/QR\nLOC1 1.2/3.4\nLOC2 DHDM0715/5.6/7.8\n.END\n"
	recs, _, err := collect(t, input, DecoderOptions{})
	assert.NoError(err)
	if assert.Len(recs, 4) {
		assert.Equal("LOC1", recs[0].Location)
		assert.Equal(6, recs[0].ObsTime.Month())
		assert.Equal(1, recs[0].ObsTime.Day())
		assert.Equal(1.2, recs[0].Value)

		assert.Equal("LOC1", recs[1].Location)
		assert.Equal(3.4, recs[1].Value)

		assert.Equal("LOC2", recs[2].Location)
		assert.Equal(7, recs[2].ObsTime.Month(), "the DM override shifts the month")
		assert.Equal(15, recs[2].ObsTime.Day(), "the DM override shifts the day")
		assert.Equal(12, recs[2].ObsTime.Hour(), "the DM override leaves the hour untouched")
		assert.Equal(5.6, recs[2].Value)

		assert.Equal("LOC2", recs[3].Location)
		assert.Equal(7, recs[3].ObsTime.Month())
		assert.Equal(15, recs[3].ObsTime.Day())
		assert.Equal(7.8, recs[3].Value)
	}
}

func TestDecoderB_PlainLocationSkipsNoColumn(t *testing.T) {
	assert := assert.New(t)
	input := ".B SOURCE 20240601 Z DH12/HG/QR\nLOC1/5.6/7.8\n.END\n"
	recs, _, err := collect(t, input, DecoderOptions{})
	assert.NoError(err)
	if assert.Len(recs, 2) {
		assert.Equal("HGIRZZZ", recs[0].ParameterCode)
		assert.Equal(5.6, recs[0].Value)
		assert.Equal("QRIRZZZ", recs[1].ParameterCode)
		assert.Equal(7.8, recs[1].Value)
	}
}

func TestDecoderB_MissingEndIsAppended(t *testing.T) {
	assert := assert.New(t)
	input := ".B SOURCE 20240601 Z DH12/HG\nLOC1 1.2\n"
	recs, diag, err := collect(t, input, DecoderOptions{})
	assert.NoError(err)
	if assert.Len(recs, 1) {
		assert.Equal("LOC1", recs[0].Location)
		assert.Equal(1.2, recs[0].Value)
	}
	assert.GreaterOrEqual(diag.WarnCount, 1, "a missing .END is reported as a warning, not an error")
}

func TestDecoderB_RejectProblematicPurgesWholeMessage(t *testing.T) {
	assert := assert.New(t)
	input := ".B SOURCE 20240601 Z DH12/HG\nLOC1 1.2\nLOC2 DH12345\n.END\n"
	recsKept, _, err := collect(t, input, DecoderOptions{RejectProblematic: false})
	assert.NoError(err)
	assert.NotEmpty(recsKept, "without reject_problematic, clean rows still survive a later row's error")

	recsPurged, _, err := collect(t, input, DecoderOptions{RejectProblematic: true})
	assert.NoError(err)
	assert.Empty(recsPurged, "reject_problematic purges every record once any row raised an error")
}

func TestDecoderAbortsOnMaxErrFromUnparseableLines(t *testing.T) {
	assert := assert.New(t)
	diag := NewDiagnostics("test", 2)
	input := "garbage one\ngarbage two\ngarbage three\ngarbage four\n"
	dec := NewDecoder(strings.NewReader(input), diag, DecoderOptions{Defaults: config.NewDefaults(), LegacyMode: true})
	err := dec.Run(func(OutputRecord) {})
	assert.ErrorIs(err, ErrMaxErrorsExceeded, "a run of lines that never assemble into a message must still trip max_err, not just per-message parse errors")
}

func TestDecoderSHEFPARMPartialSendCodeExpansionResolves(t *testing.T) {
	assert := assert.New(t)
	d := config.NewDefaults()
	_, err := config.LoadSHEFPARM(strings.NewReader("SHEFPARM\n*6\nPP PPD\n**\n500\n"), d)
	assert.NoError(err)

	recs, _, rerr := collect(t, ".A LOC 20240501 Z/PP 0.5\n", DecoderOptions{Defaults: d})
	assert.NoError(rerr)
	if assert.Len(recs, 1) {
		assert.Equal("PPDRZZZ", recs[0].ParameterCode, "a 3-char *6 expansion still pads/defaults through the resolver")
		assert.Equal(0.5, recs[0].Value)
	}
}

func TestDecoderSHEFPARMOverlayAppliesConversionFactor(t *testing.T) {
	assert := assert.New(t)
	d := config.NewDefaults()
	_, err := config.LoadSHEFPARM(strings.NewReader("SHEFPARM\n*1\nZZ 2.0\n**\n500\n"), d)
	assert.NoError(err)

	recs, _, rerr := collect(t, ".A LOC1 20240101 Z DUS/ZZ 10.0\n", DecoderOptions{Defaults: d})
	assert.NoError(rerr)
	if assert.Len(recs, 1) {
		assert.Equal(20.0, recs[0].Value, "the SHEFPARM-added PE factor is applied once DU S selects SI units")
		assert.Equal("ZZIRZZZ", recs[0].ParameterCode)
	}
}
