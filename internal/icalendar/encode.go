package icalendar

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

// ProductID identifies this server in the PRODID of every calendar it writes.
const ProductID = "-//Jaypeg-dev//nextcloud-mcp//EN"

// EncodeTask renders t as a VCALENDAR holding a single VTODO. CREATED,
// DTSTAMP and LAST-MODIFIED are stamped with now unless the record already
// carries a creation time. Absent optional fields are not written.
func EncodeTask(t Task, now time.Time) (string, error) {
	if strings.TrimSpace(t.UID) == "" {
		return "", errors.New("task uid is required")
	}
	status := t.Status
	if status == "" {
		status = StatusNeedsAction
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return "", err
	}

	todo := ical.NewComponent(ical.CompToDo)
	todo.Props.SetText(ical.PropUID, t.UID)
	todo.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	todo.Props.SetDateTime(ical.PropCreated, t.Created.OrElse(now).UTC())
	todo.Props.SetDateTime(ical.PropLastModified, t.LastModified.OrElse(now).UTC())
	todo.Props.SetText(ical.PropSummary, t.Summary)
	todo.Props.SetText(ical.PropStatus, string(status))

	if desc, ok := t.Description.Get(); ok {
		todo.Props.SetText(ical.PropDescription, desc)
	}
	if pct, ok := t.PercentComplete.Get(); ok {
		if pct < 0 || pct > 100 {
			return "", fmt.Errorf("percent complete %d out of range 0-100", pct)
		}
		setInt(todo.Props, ical.PropPercentComplete, pct)
	}
	if prio, ok := t.Priority.Get(); ok {
		if prio < 1 || prio > 9 {
			return "", fmt.Errorf("priority %d out of range 1-9", prio)
		}
		setInt(todo.Props, ical.PropPriority, prio)
	}
	if due, ok := t.Due.Get(); ok {
		setDate(todo.Props, ical.PropDue, due)
	}

	return encode(todo)
}

// EncodeEvent renders e as a VCALENDAR holding a single VEVENT. Start and
// end are always written as UTC date-times.
func EncodeEvent(e Event, now time.Time) (string, error) {
	if strings.TrimSpace(e.UID) == "" {
		return "", errors.New("event uid is required")
	}
	if e.Start.Time.IsZero() || e.End.Time.IsZero() {
		return "", errors.New("event start and end are required")
	}
	if e.End.Before(e.Start) {
		return "", fmt.Errorf("event end %s is before start %s", e.End, e.Start)
	}

	event := ical.NewComponent(ical.CompEvent)
	event.Props.SetText(ical.PropUID, e.UID)
	event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	event.Props.SetDateTime(ical.PropCreated, e.Created.OrElse(now).UTC())
	event.Props.SetText(ical.PropSummary, e.Summary)
	event.Props.SetDateTime(ical.PropDateTimeStart, e.Start.Time.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, e.End.Time.UTC())

	if desc, ok := e.Description.Get(); ok {
		event.Props.SetText(ical.PropDescription, desc)
	}
	if loc, ok := e.Location.Get(); ok {
		event.Props.SetText(ical.PropLocation, loc)
	}
	if rule, ok := e.RRule.Get(); ok {
		prop := ical.NewProp(ical.PropRecurrenceRule)
		prop.Value = strings.TrimPrefix(rule, "RRULE:")
		event.Props.Set(prop)
	}

	return encode(event)
}

func encode(child *ical.Component) (string, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)
	cal.Children = append(cal.Children, child)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", fmt.Errorf("encoding calendar: %w", err)
	}
	return buf.String(), nil
}

// setInt writes an INTEGER property without a VALUE parameter.
func setInt(props ical.Props, name string, v int) {
	prop := ical.NewProp(name)
	prop.Value = strconv.Itoa(v)
	props.Set(prop)
}

func setDate(props ical.Props, name string, d Date) {
	if d.DateOnly {
		props.SetDate(name, d.Time)
		return
	}
	props.SetDateTime(name, d.Time.UTC())
}
