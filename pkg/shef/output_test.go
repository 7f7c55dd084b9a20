package shef

import (
	"strings"
	"testing"

	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/tz"
	"github.com/stretchr/testify/assert"
)

func sampleRecord(t *testing.T) OutputRecord {
	t.Helper()
	obs, err := tz.New(2024, 5, 1, 12, 0, 0, tz.ModernZone(nil))
	if err != nil {
		t.Fatal(err)
	}
	return OutputRecord{
		Location:      "LOCA",
		ObsTime:       obs,
		ParameterCode: "HGIRZZZ",
		OriginalCode:  "HG",
		Value:         12.34,
		Qualifier:     'Z',
		Source:        "LOCA",
		TimeSeries:    NotSeries,
	}
}

func TestDisplayParameterCodeShortensOnlySendCodes(t *testing.T) {
	assert := assert.New(t)
	rec := sampleRecord(t)
	assert.Equal("HGIRZZZ", displayParameterCode(rec), "a plain partial code like \"HG\" still displays the full resolved code, not a shortened one")

	rec.FromSendCode = true
	assert.Equal("HGIRZZ ", displayParameterCode(rec), "only a send-code substitution gets the shortened 6-char-plus-space rendering")
}

func TestFormatVerboseContainsCoreFields(t *testing.T) {
	assert := assert.New(t)
	rec := sampleRecord(t)
	line := formatVerbose(rec)
	assert.True(strings.HasPrefix(line, "LOCA"))
	assert.Contains(line, "2024-05-01 12:00:00")
	assert.Contains(line, "12.3400")
	assert.Contains(line, "-1.000", "HGIRZZZ's probability position is Z => -1.0")
}

func TestFormatCompactPacksDigitsAndPEParts(t *testing.T) {
	assert := assert.New(t)
	rec := sampleRecord(t)
	line := formatCompact(rec)
	assert.Contains(line, "20240501120000")
	assert.Contains(line, "HG")
}

func TestFormatCompactAppendsCommentLine(t *testing.T) {
	assert := assert.New(t)
	rec := sampleRecord(t)
	rec.Comment = "ice affected"
	line := formatCompact(rec)
	assert.Contains(line, "\n")
	assert.Contains(line, `"ice affected"`)
}

func TestFormatRecordDispatchesOnFormat(t *testing.T) {
	assert := assert.New(t)
	rec := sampleRecord(t)
	assert.Equal(formatVerbose(rec), FormatRecord(rec, FormatVerbose))
	assert.Equal(formatCompact(rec), FormatRecord(rec, FormatCompact))
}
