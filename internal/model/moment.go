package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Output layouts used for every row label.
const (
	DateLayout = "02-01-2006"
	TimeLayout = "15:04"
)

// ErrTimezoneMismatch is returned when a timezone-aware moment is compared
// with a floating (naive) one.
var ErrTimezoneMismatch = errors.New("timezone mismatch: cannot compare aware and floating moments")

// MomentKind tags whether a Moment carries a time of day.
type MomentKind uint8

const (
	KindDate MomentKind = iota + 1
	KindDateTime
)

// Moment is a calendar value that is either a bare date or a date-time.
// Date-times are either aware (bound to a real location) or floating.
// Floating values and dates keep their wall clock in time.UTC, so the
// aware flag, not the location, decides how they compare.
type Moment struct {
	kind  MomentKind
	aware bool
	t     time.Time
}

// Date returns a date-only moment.
func Date(year int, month time.Month, day int) Moment {
	return Moment{
		kind: KindDate,
		t:    time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
	}
}

// Floating returns a date-time without timezone, keeping t's wall clock.
func Floating(t time.Time) Moment {
	return Moment{
		kind: KindDateTime,
		t:    wallClock(t, time.UTC),
	}
}

// Zoned returns a timezone-aware date-time in t's location.
func Zoned(t time.Time) Moment {
	return Moment{
		kind:  KindDateTime,
		aware: true,
		t:     t,
	}
}

func (m Moment) IsZero() bool { return m.kind == 0 }

// IsDate reports whether the moment has no time of day.
func (m Moment) IsDate() bool { return m.kind == KindDate }

// Aware reports whether the moment is bound to a timezone.
func (m Moment) Aware() bool { return m.aware }

func (m Moment) Kind() MomentKind { return m.kind }

// Time returns the underlying time. For dates and floating values the
// location is time.UTC and only the wall clock is meaningful.
func (m Moment) Time() time.Time { return m.t }

// Retag keeps m's wall clock and adopts like's timezone awareness (and
// location, when like is aware). The kind of m is preserved.
func (m Moment) Retag(like Moment) Moment {
	loc := time.UTC
	if like.aware {
		loc = like.t.Location()
	}
	return Moment{
		kind:  m.kind,
		aware: like.aware,
		t:     wallClock(m.t, loc),
	}
}

// At wraps t as a moment with m's kind and awareness. It is used to tag
// values derived from m, such as recurrence occurrences.
func (m Moment) At(t time.Time) Moment {
	if !m.aware {
		t = wallClock(t, time.UTC)
	}
	return Moment{kind: m.kind, aware: m.aware, t: t}
}

// Compare returns -1, 0 or +1 like time.Time.Compare. Comparing an aware
// moment with a floating one fails with ErrTimezoneMismatch.
func (m Moment) Compare(o Moment) (int, error) {
	if m.aware != o.aware {
		return 0, fmt.Errorf("%w: %s vs %s", ErrTimezoneMismatch, m, o)
	}
	return m.t.Compare(o.t), nil
}

// DateLabel formats the date part as DD-MM-YYYY.
func (m Moment) DateLabel() string { return m.t.Format(DateLayout) }

// TimeLabel formats the time of day as HH:MM. Dates render as 00:00.
func (m Moment) TimeLabel() string { return m.t.Format(TimeLayout) }

func (m Moment) String() string {
	switch {
	case m.kind == KindDate:
		return m.t.Format("2006-01-02")
	case m.aware:
		return m.t.Format(time.RFC3339)
	default:
		return m.t.Format("2006-01-02T15:04:05")
	}
}

// ParseMoment parses an iCalendar DATE or DATE-TIME value.
//
//   - 20240301          -> date
//   - 20240301T090000Z  -> aware, UTC
//   - 20240301T090000   -> aware in tzid when tzid is set, floating otherwise
func ParseMoment(value, tzid string) (Moment, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return Moment{}, errors.New("empty time value")
	}

	if !strings.Contains(v, "T") {
		t, err := time.Parse("20060102", v)
		if err != nil {
			return Moment{}, err
		}
		return Date(t.Year(), t.Month(), t.Day()), nil
	}

	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse("20060102T150405Z", v)
		if err != nil {
			return Moment{}, err
		}
		return Zoned(t), nil
	}

	if tzid != "" {
		loc, err := time.LoadLocation(tzid)
		if err != nil {
			return Moment{}, fmt.Errorf("unknown TZID %q: %w", tzid, err)
		}
		t, err := time.ParseInLocation("20060102T150405", v, loc)
		if err != nil {
			return Moment{}, err
		}
		return Zoned(t), nil
	}

	t, err := time.Parse("20060102T150405", v)
	if err != nil {
		return Moment{}, err
	}
	return Floating(t), nil
}

func wallClock(t time.Time, loc *time.Location) time.Time {
	y, mo, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, mo, d, hh, mm, ss, t.Nanosecond(), loc)
}
