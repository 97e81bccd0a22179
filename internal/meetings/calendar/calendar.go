// Package calendar renders a room's meetings as an iCalendar feed.
// Meeting bounds are Unix milliseconds and are emitted in UTC.
package calendar

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"roomly/pkg/model"
)

const (
	ContentType = "text/calendar; charset=utf-8"
	productID   = "-//roomly//meetings//EN"
)

// Render builds the feed for room. memberNames maps member ids to display
// names; participants missing from it are listed by id.
func Render(room *model.Room, meetings []*model.Meeting, memberNames map[string]string, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(room.Name)

	for _, m := range meetings {
		event := cal.AddEvent(m.ID + "@roomly")
		event.SetDtStampTime(stamp.UTC())
		if !m.CreatedAt.IsZero() {
			event.SetCreatedTime(m.CreatedAt.UTC())
		}
		event.SetStartAt(time.UnixMilli(m.From).UTC())
		event.SetEndAt(time.UnixMilli(m.To).UTC())
		event.SetSummary(m.Name)
		event.SetLocation(room.Name)

		for _, id := range m.ParticipantIDs {
			name, ok := memberNames[id]
			if !ok {
				name = id
			}
			event.AddAttendee("member-"+id+"@roomly.local", ical.WithCN(name))
		}
	}

	return cal.Serialize()
}
