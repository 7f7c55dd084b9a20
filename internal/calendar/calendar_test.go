package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLeapYear(t *testing.T) {
	assert := assert.New(t)
	assert.True(IsLeapYear(2000))
	assert.False(IsLeapYear(1900))
	assert.True(IsLeapYear(2024))
	assert.False(IsLeapYear(2023))
}

func TestDaysInMonth(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(29, DaysInMonth(2024, 2))
	assert.Equal(28, DaysInMonth(2023, 2))
	assert.Equal(31, DaysInMonth(2023, 1))
	assert.Equal(30, DaysInMonth(2023, 4))
}

func TestNextDayPrevDayRoundTrip(t *testing.T) {
	assert := assert.New(t)
	y, m, d := NextDay(2024, 2, 28)
	assert.Equal([3]int{2024, 2, 29}, [3]int{y, m, d})

	y, m, d = NextDay(2024, 2, 29)
	assert.Equal([3]int{2024, 3, 1}, [3]int{y, m, d})

	y, m, d = NextDay(2023, 12, 31)
	assert.Equal([3]int{2024, 1, 1}, [3]int{y, m, d})

	py, pm, pd := PrevDay(y, m, d)
	assert.Equal([3]int{2023, 12, 31}, [3]int{py, pm, pd})
}

func TestDeltaAddClamps(t *testing.T) {
	assert := assert.New(t)
	d := Delta{Months: 1}
	y, m, day, err := d.Add(2024, 1, 31)
	assert.NoError(err)
	assert.Equal(2024, y)
	assert.Equal(2, m)
	assert.Equal(29, day) // clamped to Feb 2024's last day
}

func TestDeltaAddEndOfMonth(t *testing.T) {
	assert := assert.New(t)
	d := Delta{Months: 1, EOM: true}
	y, m, day, err := d.Add(2024, 1, 31)
	assert.NoError(err)
	assert.Equal(2024, y)
	assert.Equal(2, m)
	assert.Equal(29, day)

	_, _, _, err = d.Add(2024, 1, 15)
	assert.Error(err, "EOM delta from a non-last-day source must fail")
}

func TestDeltaNegateLaw(t *testing.T) {
	assert := assert.New(t)
	d := Delta{Months: 5}
	y, m, day, err := d.Add(2023, 3, 15)
	assert.NoError(err)
	y2, m2, day2, err := d.Negate().Add(y, m, day)
	assert.NoError(err)
	assert.Equal([3]int{2023, 3, 15}, [3]int{y2, m2, day2})
}

func TestDeltaAddCrossesYearBoundary(t *testing.T) {
	assert := assert.New(t)
	d := Delta{Months: -3}
	y, m, day, err := d.Add(2024, 1, 10)
	assert.NoError(err)
	assert.Equal(2023, y)
	assert.Equal(10, m)
	assert.Equal(10, day)
}
