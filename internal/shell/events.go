package shell

import (
	"context"
	"fmt"

	"graphcal/internal/datetime"
	"graphcal/internal/models"
)

// ListEvents prints the events of the current week in the user's time zone
// and date/time format.
func (s *Shell) ListEvents(ctx context.Context, p *models.UserProfile) error {
	today := s.now().In(s.location(p))
	events, err := s.calendar.ListWeek(ctx, today, p.Mailbox.TimeZone)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}
	PrintEvents(s.console, events, p.Mailbox.DateTimeFormat())
	return nil
}

type printer interface {
	Printf(format string, args ...any)
	Println(args ...any)
}

// PrintEvents writes events in the listing format, rendering times with pattern.
func PrintEvents(out printer, events []models.Event, pattern string) {
	out.Println("Events:")
	for _, e := range events {
		out.Printf("Subject: %s\n", e.Subject)
		out.Printf("  Organizer: %s\n", e.Organizer)
		out.Printf("  Start: %s\n", datetime.Format(e.Start, pattern))
		out.Printf("  End: %s\n", datetime.Format(e.End, pattern))
	}
}
