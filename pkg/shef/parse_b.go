package shef

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/tz"
)

// parseB implements the .B message parser (§4.6): a multi-line header
// declaring an ordered list of parameter columns, and a body of rows each
// giving one location plus one '/'-delimited value per column in order.
func parseB(msg *AssembledMessage, ctx *parserContext, diag *Diagnostics) (records []OutputRecord, hadError bool, err error) {
	headerLines, bodyLines := splitBHeaderBody(msg.Lines)

	hdr, perr := parsePositional(headerLines[0], ctx.now, ctx.legacyMode)
	if perr != nil {
		err = diag.Error(msg.StartLine, msg.StartLine, "%s", perr)
		return nil, true, err
	}
	ctx.location = hdr.Location // the .B header's "location" is the message SOURCE
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

	columns, cerr := parseBHeaderColumns(hdr.Rest, headerLines[1:], ctx, diag, msg.StartLine)
	if cerr != nil {
		hadError = true
		if aerr := diag.Error(msg.StartLine, msg.StartLine, "%s", cerr); aerr != nil {
			return nil, true, aerr
		}
	}
	if len(columns) == 0 {
		return nil, hadError, nil
	}

	running := make([]tz.DateTime, len(columns))
	for i, c := range columns {
		if c.ObsTime != nil {
			running[i] = *c.ObsTime
		} else {
			running[i] = ctx.obsTime
		}
	}

	for _, bodyLine := range bodyLines {
		rowRecords, rowErr, rerr := parseBRow(bodyLine, ctx.location, columns, running, ctx, diag, msg.StartLine)
		if rerr != nil {
			return records, true, rerr
		}
		if rowErr {
			hadError = true
		}
		records = append(records, rowRecords...)
	}
	return records, hadError, nil
}

// splitBHeaderBody separates an assembled .B message's lines into header
// lines (the positional line plus its `.B\d{1,2}` continuations) and body
// lines, dropping the trailing `.END` sentinel.
func splitBHeaderBody(lines []string) (header, body []string) {
	header = append(header, lines[0])
	i := 1
	for i < len(lines) && reContinuationB.MatchString(lines[i]) {
		header = append(header, lines[i])
		i++
	}
	for i < len(lines) {
		if reEndLine.MatchString(lines[i]) {
			i++
			break
		}
		body = append(body, lines[i])
		i++
	}
	return header, body
}

// parseBHeaderColumns tokenizes the joined .B header string into an
// ordered list of declared parameter columns, threading the same running
// date/unit/qualifier/duration-variable state .A/.E use. A DR operator
// does not move ctx.obsTime directly in a .B header; it is instead
// attached as a PendingDelta to every column declared after it, applied
// when each body row is expanded (§4.6), until an absolute operator moves
// ctx.obsTime and clears the pending delta.
func parseBHeaderColumns(headerRest string, continuations []string, ctx *parserContext, diag *Diagnostics, msgStartLine int) ([]DotBHeaderParameterInfo, error) {
	body := joinBodyLines(headerRest, continuations)
	fields := GlueDateOperators(SplitFields(body))

	var columns []DotBHeaderParameterInfo
	var pending *RelativeDelta

	for _, field := range fields {
		for _, t := range ClassifyField(field) {
			switch t.Kind {
			case TokObsAbs:
				if err := applyAbsoluteDateToken(ctx, t); err != nil {
					return columns, err
				}
				pending = nil
			case TokObsRel:
				if t.Number > 99 {
					return columns, fmt.Errorf("relative date magnitude %d exceeds 99", t.Number)
				}
				pending = relativeDeltaFor(t)
			case TokCreate:
				if err := applyCreateTimeToken(ctx, t); err != nil {
					return columns, err
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
				resolved, err := ResolveParameterCode(t.Code, ctx.defaults)
				if err != nil {
					return columns, err
				}
				col := DotBHeaderParameterInfo{
					ParameterCode:    resolved.Code,
					OriginalCode:     t.Code,
					FromSendCode:     resolved.FromSendCode,
					UsePrev7am:       resolved.UsePrev7am,
					HasCreateTime:    ctx.hasCreateTime,
					CreateTime:       ctx.createTime,
					English:          ctx.english,
					Qualifier:        ctx.qualifier,
					DurationVariable: ctx.durVar,
				}
				if pending != nil {
					col.PendingDelta = pending
				} else {
					dt := ctx.obsTime
					col.ObsTime = &dt
				}
				columns = append(columns, col)
			}
		}
	}
	return columns, nil
}

func relativeDeltaFor(t Token) *RelativeDelta {
	if fieldIsCalendar(t.Field) {
		d := calendarDeltaFor(t.Field, t.Sign, t.Number)
		return &RelativeDelta{Calendar: &d}
	}
	d := fieldDuration(t.Field, t.Number)
	return &RelativeDelta{Clock: &clockDelta{seconds: int64(t.Sign) * int64(d.Seconds())}}
}

// parseBRow parses one .B body row: a location, optionally followed (in
// the same first slash-field) by row-level override tokens and/or
// column 0's value, then one '/'-delimited slot per remaining declared
// column, in order (§4.6, e.g. S5's "LOC1 1.2/3.4" where "1.2" is column
// 0's value in the location field, vs "LOC2 DHDM0700/5.6/7.8" where the
// location field carries only an override and column 0's value follows
// in the next slash-field). Excess value slots beyond len(columns) are a
// warning and truncate; a missing (empty) slot is a NULL field and
// simply advances past that column. running holds each column's current
// observation time, mutated in place as a relative PendingDelta is
// applied or a row-level absolute override replaces it for the rest of
// the row.
func parseBRow(line string, source string, columns []DotBHeaderParameterInfo, running []tz.DateTime, ctx *parserContext, diag *Diagnostics, msgStartLine int) ([]OutputRecord, bool, error) {
	fields := GlueDateOperators(SplitFields(line))
	if len(fields) == 0 {
		return nil, false, nil
	}

	locationField := RestoreProtected(fields[0])
	trimmed := strings.TrimLeft(locationField, " \t")
	sp := strings.IndexAny(trimmed, " \t")
	var location, firstFieldRemainder string
	if sp < 0 {
		location = trimmed
	} else {
		location = trimmed[:sp]
		firstFieldRemainder = strings.TrimLeft(trimmed[sp:], " \t")
	}
	if location == "" {
		if aerr := diag.Error(msgStartLine, msgStartLine, "body row has no location: %q", line); aerr != nil {
			return nil, true, aerr
		}
		return nil, true, nil
	}
	// Re-protect the remainder so ClassifyField's quote handling behaves
	// identically to every other row field. An empty remainder (plain
	// "LOC1/5.6/7.8") carries no override and no value, so it is dropped
	// entirely rather than treated as a NULL slot for column 0.
	var rowFields []string
	if firstFieldRemainder != "" {
		rowFields = append(rowFields, protectQuoted(firstFieldRemainder))
	}
	rowFields = append(rowFields, fields[1:]...)

	var rowObsTimeOverride *tz.DateTime
	var rowHasCreateTime bool
	var rowCreateTime tz.DateTime
	var rowEnglishSet, rowQualifierSet, rowDurVarSet bool
	var rowEnglish bool
	var rowQualifier byte
	var rowDurVar DurationVariable

	applyOverrideToken := func(t Token) error {
		switch t.Kind {
		case TokObsAbs:
			base := ctx.obsTime
			if rowObsTimeOverride != nil {
				base = *rowObsTimeOverride
			}
			saved := ctx.obsTime
			ctx.obsTime = base
			err := applyAbsoluteDateToken(ctx, t)
			dt := ctx.obsTime
			ctx.obsTime = saved
			if err != nil {
				return err
			}
			rowObsTimeOverride = &dt
		case TokCreate:
			year, month, day, hour, minute, second, err := parseCreateDigits(t.ValueText, ctx.obsTime.Year())
			if err != nil {
				return err
			}
			dt, err := tz.New(year, month, day, hour, minute, second, ctx.zone)
			if err != nil {
				return err
			}
			rowHasCreateTime = true
			rowCreateTime = dt
		case TokUnit:
			rowEnglishSet = true
			rowEnglish = t.English
		case TokQualifierOp:
			rowQualifierSet = true
			rowQualifier = t.Qualifier
		case TokDurVar:
			rowDurVarSet = true
			if t.DurReset {
				rowDurVar = DurationVariable{}
			} else {
				rowDurVar = DurationVariable{Unit: t.DurUnit, Value: t.DurValue}
			}
		}
		return nil
	}

	var records []OutputRecord
	var hadError bool
	colIdx := 0
	locRemainderPresent := firstFieldRemainder != ""

	for fi, field := range rowFields {
		isLocRemainder := fi == 0 && locRemainderPresent
		if !isLocRemainder && colIdx >= len(columns) {
			diag.Warning(msgStartLine, "body row %q has more values than declared header columns, truncating", line)
			break
		}
		var col DotBHeaderParameterInfo
		if colIdx < len(columns) {
			col = columns[colIdx]
		}

		toks := ClassifyField(field)
		var valTok, commentTok *Token
		for i := range toks {
			t := toks[i]
			switch t.Kind {
			case TokObsAbs, TokCreate, TokUnit, TokQualifierOp, TokDurVar:
				if err := applyOverrideToken(t); err != nil {
					hadError = true
					if aerr := diag.Error(msgStartLine, msgStartLine, "%s", err); aerr != nil {
						return records, true, aerr
					}
				}
			case TokValue:
				valTok = &toks[i]
			case TokComment:
				commentTok = &toks[i]
			}
		}

		if valTok == nil {
			if isLocRemainder {
				// Location-line overrides only (e.g. "DHDM0700"): this is
				// not a value slot, so it does not consume a column.
				continue
			}
			// NULL field: advances past this column without emitting.
			colIdx++
			continue
		}

		if col.PendingDelta != nil && rowObsTimeOverride == nil {
			dt, err := applyPendingDelta(running[colIdx], col.PendingDelta)
			if err != nil {
				hadError = true
				if aerr := diag.Error(msgStartLine, msgStartLine, "%s", err); aerr != nil {
					return records, true, aerr
				}
			} else {
				running[colIdx] = dt
			}
		}

		effObsTime := running[colIdx]
		if rowObsTimeOverride != nil {
			effObsTime = *rowObsTimeOverride
			running[colIdx] = effObsTime
		}

		effHasCreateTime, effCreateTime := col.HasCreateTime, col.CreateTime
		if rowHasCreateTime {
			effHasCreateTime, effCreateTime = true, rowCreateTime
		}
		effEnglish := col.English
		if rowEnglishSet {
			effEnglish = rowEnglish
		}
		effQualifier := col.Qualifier
		if rowQualifierSet {
			effQualifier = rowQualifier
		}
		effDurVar := col.DurationVariable
		if rowDurVarSet {
			effDurVar = rowDurVar
		}

		colIdx++

		if valTok.Missing {
			continue
		}

		value, ferr := strconv.ParseFloat(valTok.ValueText, 64)
		if ferr != nil {
			if valTok.Trace {
				value = 0.0
			} else {
				hadError = true
				if aerr := diag.Error(msgStartLine, msgStartLine, "%s", ferr); aerr != nil {
					return records, true, aerr
				}
				continue
			}
		}

		pe := col.ParameterCode[0:2]
		factor, known := ctx.defaults.PEFactor[pe]
		if !known {
			factor = 1.0
			diag.Warning(msgStartLine, "unknown physical element %q, value emitted untransformed", pe)
		} else if !effEnglish {
			value *= factor
		}

		qualifier := effQualifier
		if valTok.HasValQualifier {
			qualifier = valTok.ValQualifier
		}
		comment := ""
		if commentTok != nil {
			comment = commentTok.Comment
		}

		rec := OutputRecord{
			Location:         location,
			ObsTime:          effObsTime,
			HasCreateTime:    effHasCreateTime,
			CreateTime:       effCreateTime,
			ParameterCode:    col.ParameterCode,
			OriginalCode:     col.OriginalCode,
			FromSendCode:     col.FromSendCode,
			Value:            value,
			Qualifier:        qualifier,
			Revised:          ctx.revised,
			DurationVariable: effDurVar,
			Source:           source,
			TimeSeries:       NotSeries,
			Comment:          comment,
		}
		if rec.ParameterCode[3] == 'F' && !effHasCreateTime {
			diag.Warning(msgStartLine, "forecast parameter code %s has no creation time", rec.ParameterCode)
		}
		records = append(records, rec)
	}

	return records, hadError, nil
}

// applyPendingDelta advances base by a relative delta held on a .B
// header column (§4.6).
func applyPendingDelta(base tz.DateTime, d *RelativeDelta) (tz.DateTime, error) {
	if d.Calendar != nil {
		return base.AddCalendar(*d.Calendar)
	}
	if d.Clock != nil {
		return base.Add(time.Duration(d.Clock.seconds) * time.Second)
	}
	return base, nil
}
