package tz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLegacyOffsetMinutesShefitBugsDivergeForFloatingZoneY(t *testing.T) {
	assert := assert.New(t)

	// 2024-11-02 23:00 local zone Y sits one day before the Nov 3 fall-back
	// transition, so the correct (non-buggy) lookup reads it as still in
	// the DST window. Rebasing to UTC first (the documented shefit bug)
	// pushes the instant to 2024-11-03 08:00, past the 02:00 fall-back
	// instant, which reads as standard time instead.
	correct, err := legacyOffsetMinutes(Y, 2024, 11, 2, 23, 0, false)
	assert.NoError(err)
	assert.Equal(-480, correct, "non-buggy lookup is still in the DST window")

	buggy, err := legacyOffsetMinutes(Y, 2024, 11, 2, 23, 0, true)
	assert.NoError(err)
	assert.Equal(-540, buggy, "shefit_times rebases to UTC first and lands past the fall-back instant")

	assert.NotEqual(correct, buggy, "the legacy and modern paths must diverge for this instant")
}

func TestLegacyOffsetMinutesShefitBugsOnlyAffectsYAndN(t *testing.T) {
	assert := assert.New(t)

	// Zone E is floating but not in the shefitBugs set, so the flag is a
	// no-op for it regardless of how close to a transition the instant is.
	withoutBug, err := legacyOffsetMinutes(E, 2024, 11, 2, 23, 0, false)
	assert.NoError(err)
	withBug, err := legacyOffsetMinutes(E, 2024, 11, 2, 23, 0, true)
	assert.NoError(err)
	assert.Equal(withoutBug, withBug)
}
