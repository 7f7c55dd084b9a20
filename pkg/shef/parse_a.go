package shef

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/tz"
)

// reContinuationTagFull strips a message's own header/continuation tag
// (".A", ".A1", ".AR3", ...) from the front of a physical line, leaving
// the field text that logically continues the body.
var reContinuationTagFull = regexp.MustCompile(`(?i)^\.[AEB]R?\d{0,2}\s*`)

// parseA implements the .A message parser (§4.6): a single location, data
// tokens shaped `PARAMCODE value [qualifier] ["comment"]` separated by
// '/', interleaved with state-setter operators. hadError reports whether
// any field in the message raised a ParseError, for the caller's
// reject_problematic purge decision; err is non-nil only when the abort
// threshold (max_err) was crossed.
func parseA(msg *AssembledMessage, ctx *parserContext, diag *Diagnostics) (records []OutputRecord, hadError bool, err error) {
	hdr, perr := parsePositional(msg.Lines[0], ctx.now, ctx.legacyMode)
	if perr != nil {
		err = diag.Error(msg.StartLine, msg.StartLine, "%s", perr)
		return nil, true, err
	}
	ctx.location = hdr.Location
	ctx.revised = hdr.Revised

	zoneCode := tz.LegacyZone("Z")
	if hdr.ZoneText != "" {
		zoneCode = tz.LegacyZone(hdr.ZoneText)
	}
	ctx.zoneCode = zoneCode

	zone, zerr := buildZone(hdr.ZoneText, ctx.legacyMode, ctx.shefitBugs, ctx.modernLoc)
	if zerr != nil {
		err = diag.Error(msg.StartLine, msg.StartLine, "%s", zerr)
		return nil, true, err
	}
	ctx.zone = zone

	obsTime, terr := tz.New(hdr.Year, hdr.Month, hdr.Day, 0, 0, 0, zone)
	if terr != nil {
		err = diag.Error(msg.StartLine, msg.StartLine, "%s", terr)
		return nil, true, err
	}
	ctx.obsTime = obsTime

	body := joinBodyLines(hdr.Rest, msg.Lines[1:])
	fields := GlueDateOperators(SplitFields(body))

	for _, field := range fields {
		toks := ClassifyField(field)
		rec, hasRec, ferr := applyDataField(ctx, toks, msg.StartLine, diag)
		if ferr != nil {
			hadError = true
			if aerr := diag.Error(msg.StartLine, msg.StartLine, "%s", ferr); aerr != nil {
				return records, true, aerr
			}
			continue
		}
		if !hasRec {
			continue
		}
		if rec.ParameterCode[3] == 'F' && !ctx.hasCreateTime {
			diag.Warning(msg.StartLine, "forecast parameter code %s has no creation time", rec.ParameterCode)
		}
		records = append(records, rec)
	}
	return records, hadError, nil
}

// applyDataField walks one field's classified tokens, applying any
// state-setter tokens to ctx and returning the OutputRecord a (paramcode,
// value) pair in the same field produces, if any. A field carrying only
// state-setter tokens returns hasRec=false. A parameter code with no
// accompanying value is a NULL field (§4.6) and is also skipped.
func applyDataField(ctx *parserContext, toks []Token, msgStartLine int, diag *Diagnostics) (OutputRecord, bool, error) {
	var codeTok, valTok, commentTok *Token
	for i := range toks {
		t := toks[i]
		switch t.Kind {
		case TokObsAbs:
			if err := applyAbsoluteDateToken(ctx, t); err != nil {
				return OutputRecord{}, false, err
			}
		case TokObsRel:
			if err := applyRelativeDateToken(ctx, t); err != nil {
				return OutputRecord{}, false, err
			}
		case TokCreate:
			if err := applyCreateTimeToken(ctx, t); err != nil {
				return OutputRecord{}, false, err
			}
		case TokUnit:
			ctx.english = t.English
		case TokQualifierOp:
			ctx.qualifier = t.Qualifier
		case TokDurVar:
			if t.DurReset {
				ctx.durVar = DurationVariable{}
			} else {
				ctx.durVar = DurationVariable{Unit: t.DurUnit, Value: t.DurValue}
			}
		case TokParamCode:
			codeTok = &toks[i]
		case TokValue:
			valTok = &toks[i]
		case TokComment:
			commentTok = &toks[i]
		}
	}

	if codeTok == nil {
		return OutputRecord{}, false, nil
	}
	if valTok == nil {
		return OutputRecord{}, false, nil // NULL field: parameter code with no value
	}

	resolved, err := ResolveParameterCode(codeTok.Code, ctx.defaults)
	if err != nil {
		return OutputRecord{}, false, err
	}

	if resolved.UsePrev7am {
		if err := applySendCodePrev7am(ctx); err != nil {
			return OutputRecord{}, false, err
		}
	}

	if valTok.Missing {
		return OutputRecord{}, false, nil
	}

	value, ferr := strconv.ParseFloat(valTok.ValueText, 64)
	if ferr != nil {
		if valTok.Trace {
			value = 0.0
		} else {
			return OutputRecord{}, false, ferr
		}
	}

	pe := resolved.Code[0:2]
	factor, known := ctx.defaults.PEFactor[pe]
	if !known {
		factor = 1.0
		diag.Warning(msgStartLine, "unknown physical element %q, value emitted untransformed", pe)
	} else if !ctx.english {
		value *= factor
	}

	qualifier := ctx.qualifier
	if valTok.HasValQualifier {
		qualifier = valTok.ValQualifier
	}

	comment := ""
	if commentTok != nil {
		comment = commentTok.Comment
	}

	rec := OutputRecord{
		Location:         ctx.location,
		ObsTime:          ctx.obsTime,
		HasCreateTime:    ctx.hasCreateTime,
		CreateTime:       ctx.createTime,
		ParameterCode:    resolved.Code,
		OriginalCode:     codeTok.Code,
		FromSendCode:     resolved.FromSendCode,
		Value:            value,
		Qualifier:        qualifier,
		Revised:          ctx.revised,
		DurationVariable: ctx.durVar,
		TimeSeries:       NotSeries,
		Comment:          comment,
	}
	return rec, true, nil
}

// joinBodyLines reassembles a message's logical body string from the
// header's trailing "Rest" text plus each continuation line with its own
// tag stripped, joined as if they had always been one '/'-delimited run.
func joinBodyLines(headerRest string, continuations []string) string {
	parts := make([]string, 0, len(continuations)+1)
	parts = append(parts, headerRest)
	for _, line := range continuations {
		parts = append(parts, stripContinuationTag(line))
	}
	return strings.Join(parts, "/")
}

func stripContinuationTag(line string) string {
	m := reContinuationTagFull.FindStringIndex(line)
	if m == nil {
		return line
	}
	return strings.TrimPrefix(line[m[1]:], "/")
}
