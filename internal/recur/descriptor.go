package recur

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/samber/mo"

	"icsexport/internal/model"
)

// Constraint is the single BY* part attached to a descriptor. Values are
// already checked against Kind: weekdays only under ByDay, integers
// everywhere else.
type Constraint struct {
	Kind   ConstraintKind
	Name   string
	Values []ConstraintValue
}

// Descriptor is a fully bound recurrence rule, ready for expansion.
// Count and Until are never both absent in a descriptor returned by
// BuildDescriptor.
type Descriptor struct {
	Start      model.Moment
	Frequency  Frequency
	Interval   int
	Count      mo.Option[int]
	Until      mo.Option[model.Moment]
	WeekStart  mo.Option[Weekday]
	Constraint mo.Option[Constraint]

	// Dropped holds one ErrUnrecognizedConstraintValue per BY* value that
	// was discarded while building the constraint.
	Dropped []error

	// Ignored lists rule parts that take no part in expansion: unknown
	// keys and BY* parts that lost to the selected constraint.
	Ignored []string
}

var boundKeys = map[string]bool{
	"FREQ":     true,
	"INTERVAL": true,
	"COUNT":    true,
	"UNTIL":    true,
	"WKST":     true,
}

// Bounded reports whether expansion of d terminates.
func (d Descriptor) Bounded() bool {
	return d.Count.IsPresent() || d.Until.IsPresent()
}

// BuildDescriptor assembles a descriptor from rule for an event starting at
// start. When the rule has neither COUNT nor UNTIL, the window's end,
// retagged with start's timezone awareness, becomes the UNTIL bound.
// An explicit COUNT or UNTIL is kept as is.
func BuildDescriptor(rule model.RecurrenceRule, start model.Moment, window model.Window) (Descriptor, error) {
	d := Descriptor{Start: start, Interval: 1}

	code, ok := rule.First("FREQ")
	if !ok {
		return Descriptor{}, ErrMissingFrequency
	}
	freq, err := ParseFrequency(code)
	if err != nil {
		return Descriptor{}, err
	}
	d.Frequency = freq

	if v, ok := rule.First("INTERVAL"); ok {
		n, err := positiveInt("INTERVAL", v)
		if err != nil {
			return Descriptor{}, err
		}
		d.Interval = n
	}

	if v, ok := rule.First("COUNT"); ok {
		n, err := positiveInt("COUNT", v)
		if err != nil {
			return Descriptor{}, err
		}
		d.Count = mo.Some(n)
	}

	if v, ok := rule.First("WKST"); ok {
		wd, err := ParseWeekday(v)
		if err != nil {
			return Descriptor{}, err
		}
		d.WeekStart = mo.Some(wd)
	}

	sel, selected := SelectConstraint(rule)
	if selected {
		values, dropped := TranslateValues(sel.Raw)
		values, mismatched := bindValues(sel.Kind, values)
		d.Dropped = append(dropped, mismatched...)
		d.Constraint = mo.Some(Constraint{Kind: sel.Kind, Name: sel.Name, Values: values})
	}

	for _, key := range slices.Sorted(maps.Keys(rule)) {
		if boundKeys[key] || (selected && key == sel.Kind.WireName()) {
			continue
		}
		d.Ignored = append(d.Ignored, key)
	}

	if v, ok := rule.First("UNTIL"); ok {
		until, err := model.ParseMoment(v, "")
		if err != nil {
			return Descriptor{}, fmt.Errorf("%w: UNTIL %q: %v", ErrInvalidRule, v, err)
		}
		if until.Aware() != start.Aware() {
			return Descriptor{}, fmt.Errorf("%w: UNTIL %s vs DTSTART %s", model.ErrTimezoneMismatch, until, start)
		}
		d.Until = mo.Some(until)
	}

	if !d.Count.IsPresent() && !d.Until.IsPresent() {
		d.Until = mo.Some(window.End.Retag(start))
	}

	return d, nil
}

// bindValues keeps the values that fit kind. Under ByDay an integer 0-6
// names a weekday, Monday first.
func bindValues(kind ConstraintKind, values []ConstraintValue) ([]ConstraintValue, []error) {
	out := make([]ConstraintValue, 0, len(values))
	var dropped []error

	for _, v := range values {
		switch {
		case kind != ByDay && v.Kind == IntegerValue:
			out = append(out, v)
		case kind == ByDay && v.Kind == IntegerValue && v.Integer >= int(Monday) && v.Integer <= int(Sunday):
			out = append(out, Bare(Weekday(v.Integer)))
		case kind == ByDay && v.Kind != IntegerValue:
			out = append(out, v)
		default:
			dropped = append(dropped, fmt.Errorf("%w: %s under %s", ErrUnrecognizedConstraintValue, v, kind))
		}
	}
	return out, dropped
}

func positiveInt(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidRule, key, v)
	}
	return n, nil
}
