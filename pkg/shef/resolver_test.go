package shef

import (
	"testing"

	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestResolveParameterCodePadsAndDefaultsDuration(t *testing.T) {
	assert := assert.New(t)
	d := config.NewDefaults()
	r, err := ResolveParameterCode("HG", d)
	assert.NoError(err)
	assert.Equal("HGIRZZZ", r.Code)
	assert.False(r.UsePrev7am)
	assert.False(r.FromSendCode, "HG is a PE code, not a send code")
}

func TestResolveParameterCodeSendCodeSubstitution(t *testing.T) {
	assert := assert.New(t)
	d := config.NewDefaults()
	r, err := ResolveParameterCode("QY", d)
	assert.NoError(err)
	assert.Equal("QRIRZZZ", r.Code)
	assert.True(r.UsePrev7am)
	assert.True(r.FromSendCode, "QY expands through a *6 send code table entry")
}

func TestResolveParameterCodeRejectsMismatchedSendCodeSuffix(t *testing.T) {
	assert := assert.New(t)
	d := config.NewDefaults()
	_, err := ResolveParameterCode("QYX", d)
	assert.Error(err)
}

func TestResolveParameterCodeRejectsInvalidTS(t *testing.T) {
	assert := assert.New(t)
	d := config.NewDefaults()
	_, err := ResolveParameterCode("HGIXX", d)
	assert.Error(err)
}

func TestResolveParameterCodeRejectsBadLength(t *testing.T) {
	assert := assert.New(t)
	d := config.NewDefaults()
	_, err := ResolveParameterCode("H", d)
	assert.Error(err)
	_, err = ResolveParameterCode("HGIRZZZZ", d)
	assert.Error(err)
}

func TestResolveParameterCodeFullySpecifiedPassesThrough(t *testing.T) {
	assert := assert.New(t)
	d := config.NewDefaults()
	r, err := ResolveParameterCode("PPDRZZZ", d)
	assert.NoError(err)
	assert.Equal("PPDRZZZ", r.Code)
}
