package backoffice

import (
	"time"
)

// =============================================================================
// DAY - Civil calendar day (the shift's date is a day, not an instant)
// =============================================================================

// Day is a calendar day bucketed in UTC. The deployment stores shift
// dates as epoch timestamps, but every comparison (duplicate checks and
// range queries alike) happens on the UTC civil day so both paths agree.
type Day struct {
	Time time.Time
}

func NewDay(year int, month time.Month, day int) Day {
	return Day{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf buckets an arbitrary instant into its UTC civil day.
func DayOf(t time.Time) Day {
	u := t.UTC()
	return NewDay(u.Year(), u.Month(), u.Day())
}

// DayOfUnixMilli buckets an epoch-milliseconds timestamp, the wire form
// used by older clients.
func DayOfUnixMilli(ms int64) Day {
	return DayOf(time.UnixMilli(ms))
}

// ParseDay parses the YYYY-MM-DD wire form.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, err
	}
	return DayOf(t), nil
}

func Today() Day { return DayOf(time.Now()) }

// Comparison
func (d Day) Before(other Day) bool { return d.Time.Before(other.Time) }
func (d Day) After(other Day) bool  { return d.Time.After(other.Time) }
func (d Day) Equal(other Day) bool  { return d.Time.Equal(other.Time) }
func (d Day) IsZero() bool          { return d.Time.IsZero() }

// InRange reports whether d falls in the inclusive day range [from, to].
func (d Day) InRange(from, to Day) bool {
	return !d.Before(from) && !d.After(to)
}

// Arithmetic
func (d Day) AddDays(n int) Day { return DayOf(d.Time.AddDate(0, 0, n)) }

// Bounds
func (d Day) Start() time.Time { return d.Time }
func (d Day) End() time.Time   { return d.Time.Add(24*time.Hour - time.Nanosecond) }

func (d Day) String() string { return d.Time.Format("2006-01-02") }
