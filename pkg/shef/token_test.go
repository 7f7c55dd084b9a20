package shef

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyOneAbsoluteDateCascading(t *testing.T) {
	assert := assert.New(t)
	tok := classifyOne("DH0330")
	assert.Equal(TokObsAbs, tok.Kind)
	assert.Equal(byte('H'), tok.Field)
	assert.Equal("0330", tok.Digits)
}

func TestClassifyOneValueQualifierShapes(t *testing.T) {
	assert := assert.New(t)
	v := classifyOne("12.34G")
	assert.Equal(TokValue, v.Kind)
	assert.Equal("12.34", v.ValueText)
	assert.True(v.HasValQualifier)
	assert.Equal(byte('G'), v.ValQualifier)

	missing := classifyOne("M")
	assert.Equal(TokValue, missing.Kind)
	assert.True(missing.Missing)

	trace := classifyOne("T+")
	assert.Equal(TokValue, trace.Kind)
	assert.True(trace.Trace)
}

func TestClassifyOneParameterCode(t *testing.T) {
	assert := assert.New(t)
	tok := classifyOne("HG")
	assert.Equal(TokParamCode, tok.Kind)
	assert.Equal("HG", tok.Code)
}

func TestClassifyOneInterval(t *testing.T) {
	assert := assert.New(t)
	tok := classifyOne("DIH1")
	assert.Equal(TokInterval, tok.Kind)
	assert.Equal(byte('H'), tok.Field)
	assert.Equal(1, tok.Number)
	assert.Equal(1, tok.Sign)

	neg := classifyOne("DIH-6")
	assert.Equal(-1, neg.Sign)
}

func TestClassifyOneComment(t *testing.T) {
	assert := assert.New(t)
	tok := classifyOne(`"gage malfunction"`)
	assert.Equal(TokComment, tok.Kind)
	assert.Equal("gage malfunction", tok.Comment)
}

func TestGlueDateOperatorsJoinsAdjacentRun(t *testing.T) {
	assert := assert.New(t)
	fields := GlueDateOperators(SplitFields("DH12/DN30/HG/12.34"))
	assert.Equal([]string{"DH12@DN30", "HG", "12.34"}, fields)
}

func TestClassifyFieldSplitsCodeValueComment(t *testing.T) {
	assert := assert.New(t)
	toks := ClassifyField(protectQuoted(`HG 12.34G "ice"`))
	if assert.Len(toks, 3) {
		assert.Equal(TokParamCode, toks[0].Kind)
		assert.Equal(TokValue, toks[1].Kind)
		assert.Equal(TokComment, toks[2].Kind)
	}
}

func TestClassifyFieldFallsBackToOperatorRunSplit(t *testing.T) {
	assert := assert.New(t)
	toks := ClassifyField("DN30DS15")
	if assert.Len(toks, 2) {
		assert.Equal(TokObsAbs, toks[0].Kind)
		assert.Equal(byte('N'), toks[0].Field)
		assert.Equal(TokObsAbs, toks[1].Kind)
		assert.Equal(byte('S'), toks[1].Field)
	}
}

func TestSplitOperatorRunRecoversLaterOperatorPastUnrecognizedPrefix(t *testing.T) {
	assert := assert.New(t)
	toks := splitOperatorRun("DHDM0700")
	if assert.Len(toks, 1, "the leading \"DH\" never closes out (no digits follow it before \"DM\" begins), so it is skipped as noise") {
		assert.Equal(TokObsAbs, toks[0].Kind)
		assert.Equal(byte('M'), toks[0].Field)
		assert.Equal("0700", toks[0].Digits)
	}
}
