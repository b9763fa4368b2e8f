package recur

import (
	"fmt"
	"strings"

	"github.com/teambition/rrule-go"
)

// Frequency is the closed set of FREQ values the engine expands.
type Frequency int

const (
	Daily Frequency = iota
	Weekly
	Monthly
	Yearly
)

var frequencyNames = [...]string{
	Daily:   "DAILY",
	Weekly:  "WEEKLY",
	Monthly: "MONTHLY",
	Yearly:  "YEARLY",
}

var rruleFrequencies = [...]rrule.Frequency{
	Daily:   rrule.DAILY,
	Weekly:  rrule.WEEKLY,
	Monthly: rrule.MONTHLY,
	Yearly:  rrule.YEARLY,
}

// ParseFrequency maps a FREQ code to a Frequency.
func ParseFrequency(code string) (Frequency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for f, name := range frequencyNames {
		if name == code {
			return Frequency(f), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFrequency, code)
}

func (f Frequency) String() string { return frequencyNames[f] }

// Weekday is a weekday symbol, Monday first.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayCodes = [...]string{
	Monday:    "MO",
	Tuesday:   "TU",
	Wednesday: "WE",
	Thursday:  "TH",
	Friday:    "FR",
	Saturday:  "SA",
	Sunday:    "SU",
}

var rruleWeekdays = [...]rrule.Weekday{
	Monday:    rrule.MO,
	Tuesday:   rrule.TU,
	Wednesday: rrule.WE,
	Thursday:  rrule.TH,
	Friday:    rrule.FR,
	Saturday:  rrule.SA,
	Sunday:    rrule.SU,
}

// ParseWeekday maps a two-letter weekday code to a Weekday.
func ParseWeekday(code string) (Weekday, error) {
	code = strings.ToUpper(code)
	for d, c := range weekdayCodes {
		if c == code {
			return Weekday(d), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWeekdaySymbol, code)
}

func (d Weekday) String() string { return weekdayCodes[d] }

// ConstraintKind is one of the nine BY* rule parts.
type ConstraintKind int

const (
	BySecond ConstraintKind = iota
	ByMinute
	ByHour
	ByWeekNo
	ByMonthDay
	ByYearDay
	ByMonth
	BySetPos
	ByDay
)

// constraintPriority is the order in which rule parts are looked up. The
// first one present in a rule is the only one honored.
var constraintPriority = [...]ConstraintKind{
	BySecond, ByMinute, ByHour, ByWeekNo, ByMonthDay, ByYearDay, ByMonth, BySetPos, ByDay,
}

var constraintWireNames = [...]string{
	BySecond:   "BYSECOND",
	ByMinute:   "BYMINUTE",
	ByHour:     "BYHOUR",
	ByWeekNo:   "BYWEEKNO",
	ByMonthDay: "BYMONTHDAY",
	ByYearDay:  "BYYEARDAY",
	ByMonth:    "BYMONTH",
	BySetPos:   "BYSETPOS",
	ByDay:      "BYDAY",
}

// WireName is the RFC 5545 property name, e.g. "BYDAY".
func (k ConstraintKind) WireName() string { return constraintWireNames[k] }

// InternalName is the key the expansion engine uses for this part. BYDAY is
// keyed as "byweekday"; every other part is its lower-cased wire name.
func (k ConstraintKind) InternalName() string {
	if k == ByDay {
		return "byweekday"
	}
	return strings.ToLower(constraintWireNames[k])
}

func (k ConstraintKind) String() string { return k.WireName() }
