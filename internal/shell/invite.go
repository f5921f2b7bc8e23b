package shell

import (
	"context"
	"fmt"
)

// InviteGuests collects guest addresses and sends each an invitation.
// Every address is attempted; failures are reported together.
func (s *Shell) InviteGuests(ctx context.Context) error {
	var emails []string
	for {
		email, err := s.console.Input("guest email", false, s.console.Confirm(func(in string) string {
			return fmt.Sprintf("%s - invite guest?", in)
		}))
		if err != nil {
			return err
		}
		if email == "" {
			break
		}
		emails = append(emails, email)
	}
	if len(emails) == 0 {
		s.console.Println("No guests to invite.")
		return nil
	}

	results, err := s.calendar.InviteUsers(ctx, emails, s.redirectURL)
	for _, r := range results {
		if r.Err != nil {
			s.console.Printf("Could not invite %s\n", r.Email)
			continue
		}
		s.console.Printf("User added: %s\n", r.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to invite guests: %w", err)
	}
	return nil
}
