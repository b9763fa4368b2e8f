package export

import (
	"errors"
	"fmt"
	"iter"

	appLog "icsexport/internal/log"
	"icsexport/internal/model"
	"icsexport/internal/recur"
)

const defaultMaxOccurrencesPerEvent = 5000

// Options controls how events are turned into rows.
type Options struct {
	// MaxOccurrencesPerEvent caps how many rows one event may produce.
	// Occurrences before the window do not count. Zero means
	// defaultMaxOccurrencesPerEvent.
	MaxOccurrencesPerEvent int

	// ClipToWindowEnd drops recurring occurrences after the window's end.
	// Open rules never get there; this only matters for rules whose own
	// UNTIL or COUNT reaches past the window.
	ClipToWindowEnd bool

	// Strict aborts the run on the first event that cannot be expanded.
	Strict bool
}

// EventError records an event that was skipped.
type EventError struct {
	UID     string
	Summary string
	Err     error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("event %q (%s): %v", e.Summary, e.UID, e.Err)
}

func (e *EventError) Unwrap() error { return e.Err }

// Result is the outcome of one materialization run.
type Result struct {
	Rows       []model.OutputRow
	OutOfRange int           // recurring occurrences before the window
	Truncated  []string      // UIDs that hit MaxOccurrencesPerEvent
	Failed     []*EventError // events skipped in non-strict mode
}

// Expansion is the outcome of materializing one recurring event.
type Expansion struct {
	Rows       []model.OutputRow
	OutOfRange int
	Truncated  bool
}

// Materialize converts events, in order, into rows for window.
func Materialize(events []model.Event, window model.Window, opts Options) (Result, error) {
	if opts.MaxOccurrencesPerEvent <= 0 {
		opts.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	var res Result
	for _, ev := range events {
		rule, ok := ev.Rule.Get()
		if !ok {
			res.Rows = append(res.Rows, SingleRows(ev)...)
			continue
		}

		exp, err := expandEvent(ev, rule, window, opts)
		if err != nil {
			evErr := &EventError{UID: ev.UID, Summary: ev.Summary, Err: err}
			appLog.Error("event skipped", err, "uid", ev.UID, "summary", ev.Summary)
			if opts.Strict {
				return res, evErr
			}
			res.Failed = append(res.Failed, evErr)
			continue
		}

		res.Rows = append(res.Rows, exp.Rows...)
		res.OutOfRange += exp.OutOfRange
		if exp.Truncated {
			res.Truncated = append(res.Truncated, ev.UID)
			appLog.Error("expand: truncated occurrences for event due to cap",
				errors.New("max occurrences reached"),
				"uid", ev.UID,
				"summary", ev.Summary,
				"cap", opts.MaxOccurrencesPerEvent,
			)
		}
	}
	return res, nil
}

func expandEvent(ev model.Event, rule model.RecurrenceRule, window model.Window, opts Options) (Expansion, error) {
	d, err := recur.BuildDescriptor(rule, ev.Start, window)
	if err != nil {
		return Expansion{}, err
	}
	for _, dropped := range d.Dropped {
		appLog.Warn("constraint value dropped", "uid", ev.UID, "summary", ev.Summary, "reason", dropped.Error())
	}
	for _, key := range d.Ignored {
		appLog.Warn("rule part ignored", "uid", ev.UID, "summary", ev.Summary, "part", key)
	}

	seq, err := recur.Expand(d)
	if err != nil {
		return Expansion{}, err
	}
	return RecurringRows(ev, seq.All(), window, opts)
}

// RecurringRows filters occurrences against window.Begin and emits one row
// per kept occurrence: its date and the event's own start/end times.
// Occurrences before the window are reported and skipped. The window's end
// is only checked with ClipToWindowEnd; otherwise the descriptor's bound
// is what stops the sequence.
func RecurringRows(ev model.Event, occurrences iter.Seq[model.Moment], window model.Window, opts Options) (Expansion, error) {
	var out Expansion
	detail := ev.Start.TimeLabel() + " - " + ev.End.TimeLabel()

	seen := 0
	for dt := range occurrences {
		c, err := dt.Compare(window.Begin.Retag(dt))
		if err != nil {
			return out, err
		}
		if c < 0 {
			out.OutOfRange++
			appLog.Info("occurrence out of range",
				"summary", ev.Summary,
				"date", dt.DateLabel(),
				"time", ev.Start.TimeLabel(),
			)
			continue
		}

		if opts.ClipToWindowEnd {
			c, err := dt.Compare(window.End.Retag(dt))
			if err != nil {
				return out, err
			}
			if c > 0 {
				break
			}
		}

		if opts.MaxOccurrencesPerEvent > 0 && seen >= opts.MaxOccurrencesPerEvent {
			out.Truncated = true
			break
		}
		seen++

		out.Rows = append(out.Rows, model.OutputRow{
			Summary:   ev.Summary,
			DateLabel: dt.DateLabel(),
			Detail:    detail,
		})
	}
	return out, nil
}

// SingleRows renders a non-recurring event:
//   - same start and end date: one row with "start - end" times
//   - different dates, both date-only: one row spanning start to end date
//   - different dates, timed: one row for the start and one for the end
func SingleRows(ev model.Event) []model.OutputRow {
	startDate := ev.Start.DateLabel()
	endDate := ev.End.DateLabel()

	switch {
	case startDate == endDate:
		return []model.OutputRow{{
			Summary:   ev.Summary,
			DateLabel: startDate,
			Detail:    ev.Start.TimeLabel() + " - " + ev.End.TimeLabel(),
		}}
	case ev.Start.IsDate() && ev.End.IsDate():
		return []model.OutputRow{{Summary: ev.Summary, DateLabel: startDate, Detail: endDate}}
	default:
		return []model.OutputRow{
			{Summary: ev.Summary, DateLabel: startDate, Detail: ev.Start.TimeLabel()},
			{Summary: ev.Summary, DateLabel: endDate, Detail: ev.End.TimeLabel()},
		}
	}
}
