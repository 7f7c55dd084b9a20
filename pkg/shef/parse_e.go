package shef

import (
	"fmt"
	"strconv"
	"time"

	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/tz"
)

// parseE implements the .E message parser (§4.6): a single fixed
// parameter code declared once, a mandatory interval declared before the
// first value, and a run of slash-delimited value slots (each advancing
// obsTime by the interval, empty slots emitting no record -- the decision
// recorded for Open Question 1, exercised by S4).
func parseE(msg *AssembledMessage, ctx *parserContext, diag *Diagnostics) (records []OutputRecord, hadError bool, err error) {
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

	var (
		resolved      Resolved
		haveCode      bool
		originalCode  string
		interval      time.Duration
		intervalField byte
		intervalSign  int
		intervalNum   int
		haveInterval  bool
		seriesIndex   = 0
	)

	reportErr := func(e error) bool {
		hadError = true
		if aerr := diag.Error(msg.StartLine, msg.StartLine, "%s", e); aerr != nil {
			err = aerr
			return true
		}
		return false
	}

	// step advances obsTime by one interval: a calendar step for DIM/DIE/DIY,
	// a clock step otherwise.
	step := func() (tz.DateTime, error) {
		if fieldIsCalendar(intervalField) {
			return ctx.obsTime.AddCalendar(calendarDeltaFor(intervalField, intervalSign, intervalNum))
		}
		return ctx.obsTime.Add(interval)
	}

	for _, field := range fields {
		toks := ClassifyField(field)

		var valTok, commentTok *Token
		for i := range toks {
			t := toks[i]
			switch t.Kind {
			case TokObsAbs:
				if e := applyAbsoluteDateToken(ctx, t); e != nil {
					if reportErr(e) {
						return records, hadError, err
					}
				}
			case TokObsRel:
				if e := applyRelativeDateToken(ctx, t); e != nil {
					if reportErr(e) {
						return records, hadError, err
					}
				}
			case TokCreate:
				if e := applyCreateTimeToken(ctx, t); e != nil {
					if reportErr(e) {
						return records, hadError, err
					}
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
			case TokInterval:
				if haveInterval {
					if reportErr(fmt.Errorf("interval redeclared in .E message")) {
						return records, hadError, err
					}
					continue
				}
				if t.Number > 99 {
					if reportErr(fmt.Errorf("interval magnitude %d exceeds 99", t.Number)) {
						return records, hadError, err
					}
					continue
				}
				interval = time.Duration(t.Sign) * fieldDuration(t.Field, t.Number)
				intervalField = t.Field
				intervalSign, intervalNum = t.Sign, t.Number
				haveInterval = true
				if haveCode {
					resolved = applyIntervalDurationOverride(resolved, intervalField)
				}
			case TokParamCode:
				if haveCode {
					if reportErr(fmt.Errorf("parameter code redeclared in .E message")) {
						return records, hadError, err
					}
					continue
				}
				r, e := ResolveParameterCode(t.Code, ctx.defaults)
				if e != nil {
					if reportErr(e) {
						return records, hadError, err
					}
					continue
				}
				resolved = r
				originalCode = t.Code
				haveCode = true
				if haveInterval {
					resolved = applyIntervalDurationOverride(resolved, intervalField)
				}
			case TokValue:
				valTok = &toks[i]
			case TokComment:
				commentTok = &toks[i]
			}
		}

		if valTok == nil {
			// A field carrying no value is either a pure state-setter
			// (code/interval declaration) or an empty slot between
			// values; only the latter advances the series.
			emptySlot := len(toks) == 1 && toks[0].Kind == TokUnknown && toks[0].Raw == ""
			if emptySlot && haveCode && haveInterval && seriesIndex > 0 {
				dt, e := step()
				if e != nil {
					if reportErr(e) {
						return records, hadError, err
					}
				} else {
					ctx.obsTime = dt
				}
				seriesIndex++
			}
			continue
		}

		if !haveCode || !haveInterval {
			if reportErr(fmt.Errorf(".E value given before parameter code and interval were both declared")) {
				return records, hadError, err
			}
			continue
		}

		if seriesIndex > 0 {
			dt, e := step()
			if e != nil {
				if reportErr(e) {
					return records, hadError, err
				}
				continue
			}
			ctx.obsTime = dt
		}
		seriesIndex++

		if valTok.Missing {
			continue
		}

		value, ferr := strconv.ParseFloat(valTok.ValueText, 64)
		if ferr != nil {
			if valTok.Trace {
				value = 0.0
			} else {
				if reportErr(ferr) {
					return records, hadError, err
				}
				continue
			}
		}

		pe := resolved.Code[0:2]
		factor, known := ctx.defaults.PEFactor[pe]
		if !known {
			factor = 1.0
			diag.Warning(msg.StartLine, "unknown physical element %q, value emitted untransformed", pe)
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

		tsc := SeriesSubsequent
		if seriesIndex == 1 {
			tsc = SeriesFirst
		}
		rec := OutputRecord{
			Location:         ctx.location,
			ObsTime:          ctx.obsTime,
			HasCreateTime:    ctx.hasCreateTime,
			CreateTime:       ctx.createTime,
			ParameterCode:    resolved.Code,
			OriginalCode:     originalCode,
			FromSendCode:     resolved.FromSendCode,
			Value:            value,
			Qualifier:        qualifier,
			Revised:          ctx.revised,
			DurationVariable: ctx.durVar,
			TimeSeries:       tsc,
			Comment:          comment,
		}
		if rec.ParameterCode[3] == 'F' && !ctx.hasCreateTime {
			diag.Warning(msg.StartLine, "forecast parameter code %s has no creation time", rec.ParameterCode)
		}
		records = append(records, rec)
	}
	return records, hadError, nil
}

// applyIntervalDurationOverride replaces the resolved parameter code's
// duration position with the letter implied by the declared interval's
// field, per §4.6: "the interval implies a duration code that replaces
// the parameter's D position."
func applyIntervalDurationOverride(resolved Resolved, field byte) Resolved {
	letter := intervalFieldDurationLetter(field)
	if letter == 0 {
		return resolved
	}
	b := []byte(resolved.Code)
	b[2] = letter
	resolved.Code = string(b)
	return resolved
}

func intervalFieldDurationLetter(field byte) byte {
	switch field {
	case 'S':
		return 'U'
	case 'N':
		return 'U'
	case 'H':
		return 'H'
	case 'D':
		return 'D'
	case 'M':
		return 'N'
	case 'E':
		return 'N'
	default:
		return 0
	}
}
