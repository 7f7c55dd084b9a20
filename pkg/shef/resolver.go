package shef

import (
	"fmt"

	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/config"
)

// Resolved is the outcome of resolving a 2-7 character partial parameter
// code into a full 7-character PEDTSEP code (§4.5).
type Resolved struct {
	Code         string
	UsePrev7am   bool
	FromSendCode bool // the original 2-char prefix was a send code, not a PE
}

// ResolveParameterCode expands a partial parameter code into its full
// 7-character form, applying send codes and typed defaults, then validates
// every position against the live (possibly SHEFPARM-overlaid) tables.
func ResolveParameterCode(partial string, d *config.Defaults) (Resolved, error) {
	if len(partial) < 2 || len(partial) > 7 {
		return Resolved{}, fmt.Errorf("parameter code %q: length must be 2-7", partial)
	}

	usePrev7am := false
	code := partial
	fromSendCode := false

	// Step 1: send-code substitution.
	pe2 := partial[:2]
	if sc, ok := d.SendCodes[pe2]; ok {
		suffix := partial[2:]
		expectedSuffix := sc.Full[2:]
		if suffix != "" && suffix != expectedSuffix {
			return Resolved{}, fmt.Errorf("parameter code %q: send code %s suffix %q does not match expansion tail %q", partial, pe2, suffix, expectedSuffix)
		}
		code = sc.Full
		usePrev7am = sc.UsePrev7am
		fromSendCode = true
	}

	// Pad to 7 chars with PE(2) D(1) TS(2) X(1) P(1) positions.
	for len(code) < 7 {
		code += "Z"
	}
	codeBytes := []byte(code[:7])

	pe := string(codeBytes[0:2])

	// Step 2: duration 'Z' -> PE default duration, unless it came from a
	// send code (a send code's own duration position is authoritative).
	if codeBytes[2] == 'Z' && !fromSendCode {
		codeBytes[2] = d.DefaultDurationFor(pe)
	}

	// Step 3: type-and-source 'Z' in the first (type) position -> 'R'.
	if codeBytes[3] == 'Z' {
		codeBytes[3] = 'R'
	}
	// second TS position ('source') pads to 'Z' already via the loop above.

	resolved := string(codeBytes)

	if _, ok := d.Duration[string(resolved[2])]; !ok {
		return Resolved{}, fmt.Errorf("parameter code: invalid duration position %q", string(resolved[2]))
	}
	if err := validateTS(resolved[3:5], d); err != nil {
		return Resolved{}, err
	}
	if err := validatePosition("extremum", string(resolved[5]), d.Extremum); err != nil {
		return Resolved{}, err
	}
	if err := validateProbability(string(resolved[6]), d); err != nil {
		return Resolved{}, err
	}

	return Resolved{Code: resolved, UsePrev7am: usePrev7am, FromSendCode: fromSendCode}, nil
}

func validatePosition(name, code string, set map[string]bool) error {
	if !set[code] {
		return fmt.Errorf("parameter code: invalid %s position %q", name, code)
	}
	return nil
}

func validateTS(code string, d *config.Defaults) error {
	if !d.TS[code] {
		return fmt.Errorf("parameter code: invalid type-and-source position %q", code)
	}
	return nil
}

func validateProbability(code string, d *config.Defaults) error {
	if _, ok := d.Probability[code]; !ok {
		return fmt.Errorf("parameter code: invalid probability position %q", code)
	}
	return nil
}
