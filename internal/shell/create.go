package shell

import (
	"context"
	"fmt"
	"strings"
	"time"

	"graphcal/internal/datetime"
	"graphcal/internal/models"
)

// CreateEvent walks the user through a new online meeting and submits it
// after a final confirmation. Declining submits nothing.
func (s *Shell) CreateEvent(ctx context.Context, p *models.UserProfile) error {
	draft, err := s.promptDraft(s.location(p))
	if err != nil {
		return err
	}

	s.console.Printf("Subject: %s\n", draft.Subject)
	s.console.Printf("Attendees: %s\n", strings.Join(draft.Attendees, ";"))
	s.console.Printf("Start: %s\n", datetime.Format(draft.Start, ""))
	s.console.Printf("End: %s\n", datetime.Format(draft.End, ""))
	s.console.Printf("Body: %s\n", draft.Body)

	ok, err := s.console.YesNo("Create event?")
	if err != nil {
		return err
	}
	if !ok {
		s.console.Println("Canceled.")
		return nil
	}

	event, err := s.calendar.CreateEvent(ctx, draft, p.Mailbox.TimeZone)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	s.console.Printf("Event added to calendar. Join Link: %s\n", event.JoinURL)
	return nil
}

func (s *Shell) promptDraft(loc *time.Location) (models.EventDraft, error) {
	var draft models.EventDraft

	subject, err := s.console.Input("subject", true, s.console.Confirm(func(in string) string {
		return fmt.Sprintf("Subject: %s - is that right?", in)
	}))
	if err != nil {
		return draft, err
	}
	draft.Subject = subject

	if draft.Attendees, err = s.promptAttendees(); err != nil {
		return draft, err
	}

	start, err := s.promptTime("event start", loc, time.Time{})
	if err != nil {
		return draft, err
	}
	draft.Start = start

	if draft.End, err = s.promptTime("event end", loc, start); err != nil {
		return draft, err
	}

	if draft.Body, err = s.console.Input("body", false, nil); err != nil {
		return draft, err
	}
	return draft, nil
}

// promptAttendees collects confirmed addresses until an empty answer.
func (s *Shell) promptAttendees() ([]string, error) {
	var attendees []string
	ok, err := s.console.YesNo("Do you want to invite attendees?")
	if err != nil || !ok {
		return nil, err
	}
	for {
		attendee, err := s.console.Input("attendee", false, s.console.Confirm(func(in string) string {
			return fmt.Sprintf("%s - add attendee?", in)
		}))
		if err != nil {
			return nil, err
		}
		if attendee == "" {
			return attendees, nil
		}
		attendees = append(attendees, attendee)
	}
}

// promptTime asks for a timestamp in loc. A non-zero after requires the
// answer to be strictly later.
func (s *Shell) promptTime(field string, loc *time.Location, after time.Time) (time.Time, error) {
	var parsed time.Time
	_, err := s.console.Input(field, true, func(in string) (bool, error) {
		t, err := datetime.ParseInput(in, loc)
		if err != nil {
			return false, nil
		}
		if !after.IsZero() && !t.After(after) {
			return false, nil
		}
		parsed = t
		return true, nil
	})
	return parsed, err
}
