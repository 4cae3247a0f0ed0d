// Package caldav talks to the calendar and task collections of a
// Nextcloud server: it builds REPORT bodies, issues the HTTP requests and
// discovers which collections exist.
package caldav

import (
	"time"

	"github.com/beevik/etree"
	"github.com/samber/mo"
)

const (
	NamespaceDAV    = "DAV:"
	NamespaceCalDAV = "urn:ietf:params:xml:ns:caldav"

	// Component names used in comp-filter elements.
	ComponentToDo  = "VTODO"
	ComponentEvent = "VEVENT"

	// DefaultWindowDays is the length of an event query when no end is given.
	DefaultWindowDays = 30

	timeRangeLayout = "20060102T150405Z"
)

// TimeRange bounds an event query. Both ends are inclusive as far as the
// server interprets them.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// ResolveRange fills in missing bounds: the start defaults to the current
// UTC date and the end to start plus DefaultWindowDays. An end before the
// start is kept; the server answers it with an empty result.
func ResolveRange(start, end mo.Option[time.Time], now time.Time) TimeRange {
	today := now.UTC().Truncate(24 * time.Hour)
	s := start.OrElse(today).UTC()
	e := end.OrElse(s.AddDate(0, 0, DefaultWindowDays)).UTC()
	return TimeRange{Start: s, End: e}
}

// BuildTaskQuery asks for every VTODO in a collection with its etag and
// calendar data. Status filtering happens client side.
func BuildTaskQuery() string {
	doc, _ := newCalendarQuery(ComponentToDo)
	return render(doc)
}

// BuildEventQuery asks for every VEVENT overlapping r.
func BuildEventQuery(r TimeRange) string {
	doc, comp := newCalendarQuery(ComponentEvent)
	tr := comp.CreateElement("C:time-range")
	tr.CreateAttr("start", r.Start.UTC().Format(timeRangeLayout))
	tr.CreateAttr("end", r.End.UTC().Format(timeRangeLayout))
	return render(doc)
}

// BuildUIDQuery asks for the component whose UID equals uid. It locates
// resources whose file name is not <uid>.ics.
func BuildUIDQuery(component, uid string) string {
	doc, comp := newCalendarQuery(component)
	pf := comp.CreateElement("C:prop-filter")
	pf.CreateAttr("name", "UID")
	tm := pf.CreateElement("C:text-match")
	tm.CreateAttr("collation", "i;octet")
	tm.SetText(uid)
	return render(doc)
}

// newCalendarQuery returns a calendar-query document and the comp-filter
// element for component nested under VCALENDAR.
func newCalendarQuery(component string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	root := doc.CreateElement("C:calendar-query")
	root.CreateAttr("xmlns:D", NamespaceDAV)
	root.CreateAttr("xmlns:C", NamespaceCalDAV)

	prop := root.CreateElement("D:prop")
	prop.CreateElement("D:getetag")
	prop.CreateElement("C:calendar-data")

	filter := root.CreateElement("C:filter")
	vcal := filter.CreateElement("C:comp-filter")
	vcal.CreateAttr("name", "VCALENDAR")
	comp := vcal.CreateElement("C:comp-filter")
	comp.CreateAttr("name", component)
	return doc, comp
}

func render(doc *etree.Document) string {
	doc.Indent(2)
	// Writing to memory cannot fail.
	s, _ := doc.WriteToString()
	return s
}
