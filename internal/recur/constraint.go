package recur

import (
	"fmt"
	"strconv"

	"icsexport/internal/model"
)

// Selection is the governing BY* part of a rule.
type Selection struct {
	Kind ConstraintKind
	Name string   // internal name, see ConstraintKind.InternalName
	Raw  []string // values as found in the rule
}

// SelectConstraint returns the first BY* part present in rule, walking the
// fixed priority order BYSECOND .. BYSETPOS, BYDAY. Any other BY* parts are
// ignored, so BYMONTH always wins over BYDAY.
func SelectConstraint(rule model.RecurrenceRule) (Selection, bool) {
	for _, kind := range constraintPriority {
		if raw, ok := rule[kind.WireName()]; ok {
			return Selection{Kind: kind, Name: kind.InternalName(), Raw: raw}, true
		}
	}
	return Selection{}, false
}

// ValueKind tags the variant held by a ConstraintValue.
type ValueKind int

const (
	IntegerValue ValueKind = iota + 1
	WeekdayValue
	OrdinalWeekdayValue
)

// ConstraintValue is a typed BY* value: an integer, a bare weekday, or an
// ordinal weekday such as "2nd Tuesday" (negative ordinals count from the
// end of the period).
type ConstraintValue struct {
	Kind    ValueKind
	Integer int
	Weekday Weekday
	Ordinal int
}

// Integer wraps a numeric BY* value.
func Integer(n int) ConstraintValue {
	return ConstraintValue{Kind: IntegerValue, Integer: n}
}

// Bare wraps a weekday without ordinal, e.g. "MO".
func Bare(d Weekday) ConstraintValue {
	return ConstraintValue{Kind: WeekdayValue, Weekday: d}
}

// Ordinal wraps an nth weekday, e.g. "-1FR" as Ordinal(-1, Friday).
func Ordinal(n int, d Weekday) ConstraintValue {
	return ConstraintValue{Kind: OrdinalWeekdayValue, Ordinal: n, Weekday: d}
}

func (v ConstraintValue) String() string {
	switch v.Kind {
	case IntegerValue:
		return strconv.Itoa(v.Integer)
	case WeekdayValue:
		return v.Weekday.String()
	case OrdinalWeekdayValue:
		return strconv.Itoa(v.Ordinal) + v.Weekday.String()
	default:
		return "?"
	}
}

// TranslateValues converts raw BY* values, preserving order. Values of no
// known shape are dropped; one ErrUnrecognizedConstraintValue is returned
// per dropped value so the caller can report it.
func TranslateValues(raw []string) ([]ConstraintValue, []error) {
	out := make([]ConstraintValue, 0, len(raw))
	var dropped []error

	for _, r := range raw {
		v, err := translateValue(r)
		if err != nil {
			dropped = append(dropped, err)
			continue
		}
		out = append(out, v)
	}
	return out, dropped
}

func translateValue(raw string) (ConstraintValue, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return Integer(n), nil
	}

	switch len(raw) {
	case 2:
		if d, err := ParseWeekday(raw); err == nil {
			return Bare(d), nil
		}
	case 3, 4:
		d, derr := ParseWeekday(raw[len(raw)-2:])
		n, nerr := strconv.Atoi(raw[:len(raw)-2])
		if derr == nil && nerr == nil {
			return Ordinal(n, d), nil
		}
	}
	return ConstraintValue{}, fmt.Errorf("%w: %q", ErrUnrecognizedConstraintValue, raw)
}
