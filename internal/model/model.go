package model

import (
	"strings"

	"github.com/samber/mo"
)

// Event is a calendar event as produced by the ICS parser. It is read-only
// once parsed.
type Event struct {
	UID     string // iCalendar UID, used for logging only
	Summary string

	Start Moment
	End   Moment

	// Rule is the event's single honored RRULE, if any.
	Rule mo.Option[RecurrenceRule]
}

// RecurrenceRule is the raw property mapping of an RRULE value, keyed by the
// upper-cased property name (FREQ, INTERVAL, COUNT, UNTIL, WKST, BY*).
type RecurrenceRule map[string][]string

// ParseRecurrenceRule splits an RRULE value such as
// "FREQ=WEEKLY;BYDAY=MO,WE" into its property mapping. Empty parts are ignored.
func ParseRecurrenceRule(value string) RecurrenceRule {
	rule := make(RecurrenceRule)
	for _, part := range strings.Split(value, ";") {
		key, raw, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || key == "" {
			continue
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		values := make([]string, 0)
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		rule[key] = values
	}
	return rule
}

// First returns the first value recorded under key.
func (r RecurrenceRule) First(key string) (string, bool) {
	vs, ok := r[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Window is the caller-supplied date range. Begin gates the recurring path;
// End bounds open-ended rules.
type Window struct {
	Begin Moment
	End   Moment
}

// OutputRow is one materialized (summary, date, detail) row.
type OutputRow struct {
	Summary   string
	DateLabel string
	Detail    string
}

// Strings returns the row as a record for tabular writers.
func (r OutputRow) Strings() []string {
	return []string{r.Summary, r.DateLabel, r.Detail}
}
