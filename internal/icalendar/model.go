// Package icalendar converts task and event records to and from the
// iCalendar text stored in CalDAV collections.
package icalendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"
)

// Status is the lifecycle state of a VTODO.
type Status string

const (
	StatusNeedsAction Status = "NEEDS-ACTION"
	StatusInProcess   Status = "IN-PROCESS"
	StatusCompleted   Status = "COMPLETED"
	StatusCancelled   Status = "CANCELLED"
)

// Statuses lists every status in the order tools present them.
var Statuses = []Status{StatusNeedsAction, StatusInProcess, StatusCompleted, StatusCancelled}

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (Status, error) {
	candidate := Status(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range Statuses {
		if st == candidate {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid task status %q (expected one of NEEDS-ACTION, IN-PROCESS, COMPLETED, CANCELLED)", s)
}

// Closed reports whether the task no longer needs attention.
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Task is the modelled subset of a VTODO.
type Task struct {
	UID             string
	Summary         string
	Description     mo.Option[string]
	Status          Status
	PercentComplete mo.Option[int]
	Due             mo.Option[Date]
	Priority        mo.Option[int]
	Created         mo.Option[time.Time]
	LastModified    mo.Option[time.Time]

	// Href and ETag locate the stored resource. They are empty for records
	// that have not been read back from a server.
	Href string
	ETag string
}

// Event is the modelled subset of a VEVENT.
type Event struct {
	UID         string
	Summary     string
	Description mo.Option[string]
	Location    mo.Option[string]
	Start       Date
	End         Date
	Created     mo.Option[time.Time]
	RRule       mo.Option[string]

	// ExDates are the EXDATE instances removed from the recurrence set.
	ExDates []time.Time
	// RecurrenceID is set on an override and names the instance it replaces.
	RecurrenceID mo.Option[time.Time]
	// Overrides are the RECURRENCE-ID components stored with a recurring
	// master.
	Overrides []Event

	Href string
	ETag string
}

// Recurring reports whether the event carries a recurrence rule.
func (e Event) Recurring() bool {
	return e.RRule.IsPresent()
}

// Object is one calendar resource isolated from a server response.
type Object struct {
	Href string
	ETag string
	Data string
}
