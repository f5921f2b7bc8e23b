// Package shell implements the numbered-menu calendar console.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"graphcal/internal/console"
	"graphcal/internal/datetime"
	"graphcal/internal/models"
)

// InvalidChoice is the menu choice recorded for input that is not a number.
const InvalidChoice = -1

// Menu choices.
const (
	ChoiceExit = iota
	ChoiceToken
	ChoiceEvents
	ChoiceCreate
	ChoiceInvite
)

// ErrNoProfile is reported when an action needs the user's mailbox settings
// but the profile could not be loaded.
var ErrNoProfile = errors.New("user profile is not available")

// Calendar is the remote calendar the shell drives.
type Calendar interface {
	ListWeek(ctx context.Context, today time.Time, tz string) ([]models.Event, error)
	CreateEvent(ctx context.Context, draft models.EventDraft, tz string) (*models.Event, error)
	InviteUsers(ctx context.Context, emails []string, redirectURL string) ([]models.InviteResult, error)
}

// Options configures a Shell.
type Options struct {
	Console     *console.Console
	Logger      *slog.Logger
	Calendar    Calendar
	Token       string
	Profile     *models.UserProfile // nil when the profile lookup failed
	RedirectURL string
	Now         func() time.Time // defaults to time.Now
}

// Shell holds everything a session of the menu loop needs.
type Shell struct {
	console     *console.Console
	logger      *slog.Logger
	calendar    Calendar
	token       string
	profile     *models.UserProfile
	redirectURL string
	now         func() time.Time
}

// New creates a Shell from opts.
func New(opts Options) *Shell {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Shell{
		console:     opts.Console,
		logger:      logger,
		calendar:    opts.Calendar,
		token:       opts.Token,
		profile:     opts.Profile,
		redirectURL: opts.RedirectURL,
		now:         now,
	}
}

// Run greets the user and serves the menu until they choose to exit or
// input ends. Failed actions are logged and the menu is shown again.
func (s *Shell) Run(ctx context.Context) error {
	s.welcome()

	for {
		s.printMenu()
		line, err := s.console.ReadLine()
		if errors.Is(err, io.EOF) {
			s.console.Println("Goodbye...")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read menu choice: %w", err)
		}

		choice := ParseChoice(line)
		if choice == ChoiceExit {
			s.console.Println("Goodbye...")
			return nil
		}

		if err := s.dispatch(ctx, choice); err != nil {
			if errors.Is(err, io.EOF) {
				s.console.Println("Goodbye...")
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("Action failed", "choice", choice, "error", err)
		}
	}
}

// ParseChoice converts a menu answer to a choice, or InvalidChoice when it
// is not a number.
func ParseChoice(line string) int {
	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return InvalidChoice
	}
	return choice
}

func (s *Shell) dispatch(ctx context.Context, choice int) error {
	switch choice {
	case ChoiceToken:
		s.console.Printf("Access token: %s\n\n", s.token)
		return nil
	case ChoiceEvents:
		return s.withProfile(func(p *models.UserProfile) error {
			return s.ListEvents(ctx, p)
		})
	case ChoiceCreate:
		return s.withProfile(func(p *models.UserProfile) error {
			return s.CreateEvent(ctx, p)
		})
	case ChoiceInvite:
		return s.InviteGuests(ctx)
	default:
		s.console.Println("Invalid choice! Please try again.")
		return nil
	}
}

// withProfile runs fn with the loaded profile, or tells the user the
// action is unavailable.
func (s *Shell) withProfile(fn func(p *models.UserProfile) error) error {
	if s.profile == nil {
		s.console.Println("Your profile could not be loaded, so this option is unavailable.")
		return nil
	}
	return fn(s.profile)
}

func (s *Shell) welcome() {
	if s.profile == nil {
		s.console.Println("Welcome!")
		s.console.Println()
		return
	}
	s.console.Printf("Welcome %s!\n\n", s.profile.DisplayName)
}

func (s *Shell) printMenu() {
	s.console.Println("Please choose one of the following options:")
	s.console.Println("0. Exit")
	s.console.Println("1. Display access token")
	s.console.Println("2. View this week's calendar")
	s.console.Println("3. Add an event")
	s.console.Println("4. Add a guest invitee")
}

// location resolves the user's mailbox time zone, falling back to the
// local zone when the name is unknown.
func (s *Shell) location(p *models.UserProfile) *time.Location {
	loc, err := datetime.ResolveZone(p.Mailbox.TimeZone)
	if err != nil {
		s.logger.Warn("Unknown mailbox time zone, using local time", "timeZone", p.Mailbox.TimeZone, "error", err)
		return time.Local
	}
	return loc
}
