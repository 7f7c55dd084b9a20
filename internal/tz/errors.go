package tz

import "fmt"

// ErrMixedModel is returned when an operation is attempted between a
// Modern and a Legacy DateTime; the two timezone models are never
// interchangeable (§4.2 "Mixed models are rejected").
var ErrMixedModel = fmt.Errorf("tz: mixed timezone models")

// ErrSpringForwardGap is returned when a DateTime is constructed inside the
// 02:00:00-02:59:59 hole created by the local spring-forward transition.
var ErrSpringForwardGap = fmt.Errorf("tz: time falls in the spring-forward gap")

func errUnknownZone(code LegacyZone) error {
	return fmt.Errorf("tz: unknown legacy zone %q", string(code))
}
