package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	ical "github.com/arran4/golang-ical"
	"github.com/samber/mo"

	appLog "icsexport/internal/log"
	"icsexport/internal/model"
)

// ErrSourceUnreadable wraps every failure to load or decode a calendar source.
var ErrSourceUnreadable = errors.New("calendar source unreadable")

// ParseICS parses a single ICS payload into events, in document order.
//
//   - DTSTART/DTEND keep their VALUE=DATE / TZID / floating form as a
//     model.Moment, so all-day and timezone handling stays explicit.
//   - Only the first RRULE of an event is honored.
//   - A VEVENT without DTSTART is logged and skipped.
func ParseICS(name string, body []byte) ([]model.Event, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: %s: empty ICS body", ErrSourceUnreadable, name)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "source", redactURL(name))
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, name, err)
	}

	events := make([]model.Event, 0)

	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(comp)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Error("ics vevent parse failed", perr, "source", redactURL(name))
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("ics parse completed", "source", redactURL(name), "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (model.Event, error) {
	var out model.Event

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		out.UID = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}

	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil || startProp.Value == "" {
		return out, fmt.Errorf("event %q: missing DTSTART", out.UID)
	}
	start, err := momentFromProperty(startProp)
	if err != nil {
		return out, fmt.Errorf("event %q: DTSTART: %w", out.UID, err)
	}
	out.Start = start

	// Without DTEND an all-day event lasts one day and a timed event is
	// instantaneous.
	out.End = start
	if start.IsDate() {
		t := start.Time().AddDate(0, 0, 1)
		out.End = model.Date(t.Year(), t.Month(), t.Day())
	}
	if endProp := ve.GetProperty(ical.ComponentPropertyDtEnd); endProp != nil && endProp.Value != "" {
		end, err := momentFromProperty(endProp)
		if err != nil {
			return out, fmt.Errorf("event %q: DTEND: %w", out.UID, err)
		}
		out.End = end
	}

	rrules := ve.GetProperties(ical.ComponentPropertyRrule)
	if len(rrules) > 0 && rrules[0].Value != "" {
		out.Rule = mo.Some(model.ParseRecurrenceRule(rrules[0].Value))
	}
	if len(rrules) > 1 {
		appLog.Warn("ics event has several RRULEs; only the first is used", "uid", out.UID, "rrule_count", len(rrules))
	}

	return out, nil
}

// momentFromProperty reads a DATE or DATE-TIME property honoring its VALUE
// and TZID parameters. An unknown TZID degrades to a floating time.
func momentFromProperty(p *ical.IANAProperty) (model.Moment, error) {
	value := strings.TrimSpace(p.Value)
	tzid := param(p, "TZID")

	if strings.EqualFold(param(p, "VALUE"), "DATE") && len(value) > 8 {
		value = value[:8]
	}

	m, err := model.ParseMoment(value, tzid)
	if err != nil && tzid != "" {
		appLog.Warn("ics unknown TZID; treating time as floating", "tzid", tzid, "value", value)
		return model.ParseMoment(value, "")
	}
	return m, err
}

func param(p *ical.IANAProperty, name string) string {
	if p.ICalParameters == nil {
		return ""
	}
	if vs, ok := p.ICalParameters[name]; ok && len(vs) > 0 {
		return vs[0]
	}
	return ""
}
