package backoffice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lolo266/spa-saigon/backoffice"
)

func TestDayOf_BucketsToUTCDay(t *testing.T) {
	morning := backoffice.DayOf(time.Date(2024, time.January, 5, 8, 15, 0, 0, time.UTC))
	night := backoffice.DayOf(time.Date(2024, time.January, 5, 23, 59, 59, 0, time.UTC))

	assert.True(t, morning.Equal(night))
	assert.Equal(t, "2024-01-05", morning.String())
}

func TestDayOf_NonUTCInstant(t *testing.T) {
	// The bucket is the UTC day of the instant, whatever zone it
	// arrives in: 01:00+07:00 on Jan 6 is still Jan 5 in UTC.
	saigon := time.FixedZone("ICT", 7*3600)
	d := backoffice.DayOf(time.Date(2024, time.January, 6, 1, 0, 0, 0, saigon))

	assert.Equal(t, "2024-01-05", d.String())
}

func TestDayOfUnixMilli(t *testing.T) {
	ms := time.Date(2024, time.January, 5, 14, 30, 0, 0, time.UTC).UnixMilli()
	d := backoffice.DayOfUnixMilli(ms)

	assert.Equal(t, "2024-01-05", d.String())
}

func TestParseDay(t *testing.T) {
	d, err := backoffice.ParseDay("2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", d.String())

	_, err = backoffice.ParseDay("05/01/2024")
	assert.Error(t, err)
}

func TestDay_InRange_InclusiveBounds(t *testing.T) {
	from := backoffice.NewDay(2024, time.January, 5)
	to := backoffice.NewDay(2024, time.January, 7)

	assert.True(t, from.InRange(from, to))
	assert.True(t, to.InRange(from, to))
	assert.True(t, backoffice.NewDay(2024, time.January, 6).InRange(from, to))
	assert.False(t, backoffice.NewDay(2024, time.January, 4).InRange(from, to))
	assert.False(t, backoffice.NewDay(2024, time.January, 8).InRange(from, to))
}

func TestDay_Bounds(t *testing.T) {
	d := backoffice.NewDay(2024, time.January, 5)

	assert.Equal(t, time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC), d.Start())
	assert.True(t, d.End().Before(d.AddDays(1).Start()))
	assert.True(t, d.End().After(d.Start()))
}
