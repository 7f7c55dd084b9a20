package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultsDefaultDurationFor(t *testing.T) {
	assert := assert.New(t)
	d := NewDefaults()
	assert.Equal(byte('I'), d.DefaultDurationFor("HG"))
	assert.Equal(byte('D'), d.DefaultDurationFor("PP"))
	assert.Equal(byte('I'), d.DefaultDurationFor("ZZ"), "unknown PE falls back to instantaneous")
}

func TestCloneIsIndependent(t *testing.T) {
	assert := assert.New(t)
	d := NewDefaults()
	c := d.Clone()
	c.PEFactor["HG"] = 99.0
	c.MaxErr = 1

	assert.NotEqual(d.PEFactor["HG"], c.PEFactor["HG"])
	assert.NotEqual(d.MaxErr, c.MaxErr)
}

const sampleSHEFPARM = `SHEFPARM
*1
QN 1.0
*6
QN QNIRZZZ N
**
250
`

func TestLoadSHEFPARMAddsPEAndSendCode(t *testing.T) {
	assert := assert.New(t)
	d := NewDefaults()
	events, err := LoadSHEFPARM(strings.NewReader(sampleSHEFPARM), d)
	assert.NoError(err)
	assert.NotEmpty(events)

	assert.Equal(1.0, d.PEFactor["QN"])
	sc, ok := d.SendCodes["QN"]
	assert.True(ok)
	assert.Equal("QNIRZZZ", sc.Full)
	assert.False(sc.UsePrev7am)
	assert.Equal(250, d.MaxErr)
}

func TestLoadSHEFPARMRejectsBadQualifier(t *testing.T) {
	assert := assert.New(t)
	d := NewDefaults()
	bad := "SHEFPARM\n*7\nI\n"
	_, err := LoadSHEFPARM(strings.NewReader(bad), d)
	assert.Error(err, "I is reserved and must be rejected as a qualifier code")
}

func TestLoadSHEFPARMWarnsOnStandardOverride(t *testing.T) {
	assert := assert.New(t)
	d := NewDefaults()
	overlay := "SHEFPARM\n*1\nHG 99.0\n"
	events, err := LoadSHEFPARM(strings.NewReader(overlay), d)
	assert.NoError(err)
	assert.Len(events, 1)
	assert.Equal(Warn, events[0].Level)
	assert.Equal(99.0, d.PEFactor["HG"])
}
