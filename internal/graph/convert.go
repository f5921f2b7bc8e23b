package graph

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	graphmodels "github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/microsoftgraph/msgraph-sdk-go/models/odataerrors"

	"graphcal/internal/datetime"
	"graphcal/internal/models"
)

// toProfile converts a Graph user. Mailbox fields the service omits are
// defaulted; an empty format the service does send is kept, so rendering
// falls back to the default layout.
func toProfile(user graphmodels.Userable) *models.UserProfile {
	profile := &models.UserProfile{DisplayName: deref(user.GetDisplayName())}

	var tz, dateFmt, timeFmt *string
	if mb := user.GetMailboxSettings(); mb != nil {
		tz, dateFmt, timeFmt = mb.GetTimeZone(), mb.GetDateFormat(), mb.GetTimeFormat()
	}
	profile.Mailbox = models.MailboxSettings{
		TimeZone:   deref(tz),
		DateFormat: orDefault(dateFmt, datetime.DefaultDatePattern),
		TimeFormat: orDefault(timeFmt, datetime.DefaultTimePattern),
	}
	if profile.Mailbox.TimeZone == "" {
		profile.Mailbox.TimeZone = datetime.LocalZoneName()
	}
	return profile
}

func orDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

// toEvents converts Graph events, skipping any whose times cannot be read.
func toEvents(logger *slog.Logger, items []graphmodels.Eventable) []models.Event {
	events := make([]models.Event, 0, len(items))
	for _, item := range items {
		event, err := toEvent(item)
		if err != nil {
			logger.Warn("Skipping event with unreadable times", "subject", event.Subject, "error", err)
			continue
		}
		events = append(events, event)
	}
	return events
}

// toEvent converts a Graph event to the internal Event model. Fields that
// were parsed before an error are still populated.
func toEvent(item graphmodels.Eventable) (models.Event, error) {
	event := models.Event{
		ID:      deref(item.GetId()),
		UID:     deref(item.GetICalUId()),
		Subject: deref(item.GetSubject()),
	}
	if org := item.GetOrganizer(); org != nil && org.GetEmailAddress() != nil {
		event.Organizer = deref(org.GetEmailAddress().GetName())
		event.OrganizerEmail = deref(org.GetEmailAddress().GetAddress())
	}
	if om := item.GetOnlineMeeting(); om != nil {
		event.JoinURL = deref(om.GetJoinUrl())
	}

	var err error
	if s := item.GetStart(); s != nil {
		event.StartZone = deref(s.GetTimeZone())
		if event.Start, err = datetime.ParseGraph(deref(s.GetDateTime())); err != nil {
			return event, fmt.Errorf("invalid start: %w", err)
		}
	}
	if e := item.GetEnd(); e != nil {
		event.EndZone = deref(e.GetTimeZone())
		if event.End, err = datetime.ParseGraph(deref(e.GetDateTime())); err != nil {
			return event, fmt.Errorf("invalid end: %w", err)
		}
	}
	return event, nil
}

// errEmptyResponse is returned when a create call succeeds without a body.
var errEmptyResponse = errors.New("service returned an empty response")

// createdEvent converts the event echoed by a create call. Unreadable times
// are only logged since the event already exists.
func createdEvent(logger *slog.Logger, created graphmodels.Eventable) (*models.Event, error) {
	if created == nil {
		return nil, errEmptyResponse
	}
	event, err := toEvent(created)
	if err != nil {
		logger.Warn("Created event has unreadable times", "error", err)
	}
	return &event, nil
}

func redeemURL(created graphmodels.Invitationable) (string, error) {
	if created == nil {
		return "", errEmptyResponse
	}
	return deref(created.GetInviteRedeemUrl()), nil
}

// newEvent builds the create request for draft. Attendees and body are
// only set when present.
func newEvent(draft models.EventDraft, tz string) graphmodels.Eventable {
	event := graphmodels.NewEvent()
	event.SetSubject(ptr(draft.Subject))
	event.SetStart(dateTimeZone(datetime.GraphDateTime(draft.Start), tz))
	event.SetEnd(dateTimeZone(datetime.GraphDateTime(draft.End), tz))

	online := true
	event.SetIsOnlineMeeting(&online)
	provider := graphmodels.TEAMSFORBUSINESS_ONLINEMEETINGPROVIDERTYPE
	event.SetOnlineMeetingProvider(&provider)

	if len(draft.Attendees) > 0 {
		attendees := make([]graphmodels.Attendeeable, 0, len(draft.Attendees))
		for _, email := range draft.Attendees {
			address := graphmodels.NewEmailAddress()
			address.SetAddress(ptr(email))

			attendee := graphmodels.NewAttendee()
			attendee.SetEmailAddress(address)
			required := graphmodels.REQUIRED_ATTENDEETYPE
			attendee.SetTypeEscaped(&required)
			attendees = append(attendees, attendee)
		}
		event.SetAttendees(attendees)
	}

	if draft.Body != "" {
		body := graphmodels.NewItemBody()
		body.SetContent(ptr(draft.Body))
		contentType := graphmodels.TEXT_BODYTYPE
		body.SetContentType(&contentType)
		event.SetBody(body)
	}
	return event
}

func newInvitation(inv models.Invitation) graphmodels.Invitationable {
	invitation := graphmodels.NewInvitation()
	invitation.SetInvitedUserEmailAddress(ptr(inv.Email))
	invitation.SetInviteRedirectUrl(ptr(inv.RedirectURL))
	send := inv.SendMessage
	invitation.SetSendInvitationMessage(&send)
	return invitation
}

func dateTimeZone(value, tz string) graphmodels.DateTimeTimeZoneable {
	dt := graphmodels.NewDateTimeTimeZone()
	dt.SetDateTime(ptr(value))
	dt.SetTimeZone(ptr(tz))
	return dt
}

// describe replaces an OData error with its service message, keeping the
// original in the chain.
func describe(err error) error {
	var odataErr *odataerrors.ODataError
	if !errors.As(err, &odataErr) {
		return err
	}
	mainErr := odataErr.GetErrorEscaped()
	if mainErr == nil {
		return err
	}
	msg := strings.TrimSpace(deref(mainErr.GetMessage()))
	if msg == "" {
		return err
	}
	if code := deref(mainErr.GetCode()); code != "" {
		msg = code + ": " + msg
	}
	return &serviceError{msg: msg, err: err}
}

type serviceError struct {
	msg string
	err error
}

func (e *serviceError) Error() string { return e.msg }
func (e *serviceError) Unwrap() error { return e.err }

func ptr(s string) *string { return &s }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
