package caldav

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"graphcal/internal/datetime"
	"graphcal/internal/models"
)

const productID = "-//graphcal//EN"

var nowUTC = func() time.Time { return time.Now().UTC() }

// EncodeCalendar writes events to w as a single iCalendar object.
func EncodeCalendar(w io.Writer, events []models.Event) error {
	cal := NewCalendar(events, nowUTC())
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

// NewCalendar builds a VCALENDAR with one VEVENT per event, stamped at stamp.
func NewCalendar(events []models.Event, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	for _, e := range events {
		cal.Children = append(cal.Children, toICal(e, stamp))
	}
	return cal
}

// EventUID is the iCalendar UID used for e: its own UID, else its service
// id, else a freshly generated one.
func EventUID(e models.Event) string {
	switch {
	case e.UID != "":
		return e.UID
	case e.ID != "":
		return e.ID
	default:
		return GenerateUID()
	}
}

// GenerateUID creates a new unique identifier for an event.
func GenerateUID() string {
	return uuid.New().String()
}

// Instant converts a wall-clock time reported in zone to UTC. Unknown zones
// are read as UTC.
func Instant(wall time.Time, zone string) time.Time {
	loc, err := datetime.ResolveZone(zone)
	if err != nil {
		loc = time.UTC
	}
	return datetime.LocalToUTC(wall, loc)
}

// toICal converts an Event to a VEVENT component with UTC times.
func toICal(e models.Event, stamp time.Time) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, EventUID(e))
	ve.Props.SetText(ical.PropSummary, e.Subject)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, Instant(e.Start, e.StartZone))
	ve.Props.SetDateTime(ical.PropDateTimeEnd, Instant(e.End, e.EndZone))

	if e.OrganizerEmail != "" {
		p := ical.NewProp(ical.PropOrganizer)
		p.Value = "mailto:" + e.OrganizerEmail
		if e.Organizer != "" {
			p.Params.Set(ical.ParamCommonName, e.Organizer)
		}
		ve.Props.Set(p)
	}
	if e.JoinURL != "" {
		p := ical.NewProp(ical.PropURL)
		p.SetValueType(ical.ValueURI)
		p.Value = e.JoinURL
		ve.Props.Set(p)
		ve.Props.SetText(ical.PropLocation, "Microsoft Teams Meeting")
	}
	return ve
}
