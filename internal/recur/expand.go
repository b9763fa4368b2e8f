package recur

import (
	"fmt"
	"iter"

	"github.com/teambition/rrule-go"

	"icsexport/internal/model"
)

// Sequence is the finite occurrence sequence of one descriptor.
type Sequence struct {
	start model.Moment
	rule  *rrule.RRule
}

// Expand validates d and prepares its occurrence sequence. The calendar
// arithmetic is done by rrule-go.
func Expand(d Descriptor) (*Sequence, error) {
	if !d.Bounded() {
		return nil, ErrUnboundedRule
	}

	r, err := rrule.NewRRule(toOption(d))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	return &Sequence{start: d.Start, rule: r}, nil
}

// All yields occurrences in chronological order, each tagged with the
// event start's kind and timezone awareness. Every call starts a fresh
// iteration, so the sequence can be consumed any number of times.
func (s *Sequence) All() iter.Seq[model.Moment] {
	return func(yield func(model.Moment) bool) {
		next := s.rule.Iterator()
		for {
			t, ok := next()
			if !ok {
				return
			}
			if !yield(s.start.At(t)) {
				return
			}
		}
	}
}

func toOption(d Descriptor) rrule.ROption {
	opt := rrule.ROption{
		Freq:     rruleFrequencies[d.Frequency],
		Dtstart:  d.Start.Time(),
		Interval: d.Interval,
	}
	if n, ok := d.Count.Get(); ok {
		opt.Count = n
	}
	if until, ok := d.Until.Get(); ok {
		opt.Until = until.Time()
	}
	if wd, ok := d.WeekStart.Get(); ok {
		opt.Wkst = rruleWeekdays[wd]
	}
	if c, ok := d.Constraint.Get(); ok {
		bindOption(&opt, c)
	}
	return opt
}

func bindOption(opt *rrule.ROption, c Constraint) {
	if c.Kind == ByDay {
		days := make([]rrule.Weekday, 0, len(c.Values))
		for _, v := range c.Values {
			wd := rruleWeekdays[v.Weekday]
			if v.Kind == OrdinalWeekdayValue {
				wd = wd.Nth(v.Ordinal)
			}
			days = append(days, wd)
		}
		opt.Byweekday = days
		return
	}

	ints := make([]int, 0, len(c.Values))
	for _, v := range c.Values {
		ints = append(ints, v.Integer)
	}
	switch c.Kind {
	case BySecond:
		opt.Bysecond = ints
	case ByMinute:
		opt.Byminute = ints
	case ByHour:
		opt.Byhour = ints
	case ByWeekNo:
		opt.Byweekno = ints
	case ByMonthDay:
		opt.Bymonthday = ints
	case ByYearDay:
		opt.Byyearday = ints
	case ByMonth:
		opt.Bymonth = ints
	case BySetPos:
		opt.Bysetpos = ints
	}
}
