package models

import (
	"errors"
	"strings"
	"time"
)

// Event is a calendar event as read back from the calendar service.
// Start and End hold the wall-clock value reported by the service, in the
// zone named by StartZone/EndZone.
type Event struct {
	ID             string    // Service identifier of the event
	Subject        string    // Subject line
	Organizer      string    // Organizer's display name
	OrganizerEmail string    // Organizer's address, when returned
	Start          time.Time // Wall-clock start time
	StartZone      string    // Time zone label the start is expressed in
	End            time.Time // Wall-clock end time
	EndZone        string    // Time zone label the end is expressed in
	JoinURL        string    // Online meeting join link, if any
	UID            string    // The iCalendar UID, used for mirroring
}

// EventDraft holds the fields collected from the user before an event is created.
type EventDraft struct {
	Subject   string
	Attendees []string
	Start     time.Time
	End       time.Time
	Body      string
}

var (
	// ErrMissingSubject is returned when a draft has no subject.
	ErrMissingSubject = errors.New("event subject is required")
	// ErrInvalidRange is returned when a draft does not end strictly after it starts.
	ErrInvalidRange = errors.New("event end must be after start")
)

// Validate checks the invariants a draft must hold before submission.
func (d EventDraft) Validate() error {
	if strings.TrimSpace(d.Subject) == "" {
		return ErrMissingSubject
	}
	if !d.End.After(d.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Invitation is a guest invitation for a single email address.
type Invitation struct {
	Email       string
	RedirectURL string
	SendMessage bool
}

// InviteResult reports the outcome of one invitation in a batch.
type InviteResult struct {
	Email     string
	RedeemURL string
	Err       error
}
