package shef

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePositionalEightDigitDate(t *testing.T) {
	assert := assert.New(t)
	hdr, err := parsePositional(".A LOCA 20240501 Z DH12/HG 12.34", time.Now(), false)
	assert.NoError(err)
	assert.Equal(MessageA, hdr.Type)
	assert.False(hdr.Revised)
	assert.Equal("LOCA", hdr.Location)
	assert.Equal(2024, hdr.Year)
	assert.Equal(5, hdr.Month)
	assert.Equal(1, hdr.Day)
	assert.Equal("Z", hdr.ZoneText)
	assert.Equal("DH12/HG 12.34", hdr.Rest)
}

func TestParsePositionalRevisedFlag(t *testing.T) {
	assert := assert.New(t)
	hdr, err := parsePositional(".AR LOCA 20240501 Z HG 12.34", time.Now(), false)
	assert.NoError(err)
	assert.True(hdr.Revised)
}

func TestParsePositionalOmittedZoneDefaultsEmpty(t *testing.T) {
	assert := assert.New(t)
	hdr, err := parsePositional(".A LOCA 20240501 HG 12.34", time.Now(), false)
	assert.NoError(err)
	assert.Equal("", hdr.ZoneText)
}

func TestParsePositionalRejectsMalformedHeader(t *testing.T) {
	assert := assert.New(t)
	_, err := parsePositional(".A LOCA", time.Now(), false)
	assert.Error(err)
}

func TestResolveHeaderDateSixDigitCentury(t *testing.T) {
	assert := assert.New(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	y, m, d, err := resolveHeaderDate("240615", now, false)
	assert.NoError(err)
	assert.Equal(2024, y)
	assert.Equal(6, m)
	assert.Equal(15, d)
}

func TestResolveHeaderDateEightDigit(t *testing.T) {
	assert := assert.New(t)
	y, m, d, err := resolveHeaderDate("20240615", time.Now(), false)
	assert.NoError(err)
	assert.Equal(2024, y)
	assert.Equal(6, m)
	assert.Equal(15, d)
}

func TestResolveHeaderDateRejectsInvalidDay(t *testing.T) {
	assert := assert.New(t)
	_, _, _, err := resolveHeaderDate("20240231", time.Now(), false)
	assert.Error(err)
}

func TestClosestYearLegacyPicksByMonthDistance(t *testing.T) {
	assert := assert.New(t)
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(2023, closestYear(now, 12, 1, true), "December header seen in January belongs to the prior year")
}

func TestBuildZoneLegacyModeAcceptsZ(t *testing.T) {
	assert := assert.New(t)
	z, err := buildZone("Z", true, false, nil)
	assert.NoError(err)
	assert.Equal("Z", z.String())
}

func TestBuildZoneRejectsUnknownCode(t *testing.T) {
	assert := assert.New(t)
	_, err := buildZone("QQ", true, false, nil)
	assert.Error(err)
}
