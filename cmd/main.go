package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"graphcal/internal/auth"
	"graphcal/internal/caldav"
	"graphcal/internal/config"
	"graphcal/internal/console"
	"graphcal/internal/datetime"
	"graphcal/internal/graph"
	"graphcal/internal/mirror"
	"graphcal/internal/models"
	"graphcal/internal/shell"
)

func main() {
	app := &cli.App{
		Name:   "graphcal",
		Usage:  "View and create Microsoft 365 calendar events and invite guests.",
		Action: runShell,
		Commands: []*cli.Command{
			shellCommand(),
			tokenCommand(),
			eventsCommand(),
			inviteCommand(),
			mirrorCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

// session is what every command needs once the user has signed in.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	auth   *auth.Session
	graph  *graph.Client
}

// signIn loads settings and performs the device-code grant. Nothing remote
// is contacted when settings are missing.
func signIn(c *cli.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("Missing or invalid settings...exiting: %v", err), 1)
	}
	logger := setupLogger(cfg.LogLevel)

	authSession, err := auth.Login(c.Context, logger, auth.Options{
		ClientID:   cfg.ClientID,
		TenantID:   cfg.TenantID,
		Scopes:     cfg.Scopes,
		Flow:       cfg.AuthFlow,
		TokenCache: cfg.TokenCache,
	}, func(code auth.DeviceCode) {
		fmt.Println(code.Message)
	})
	if err != nil {
		return nil, err
	}

	client, err := graph.NewClient(logger, authSession.Credential, authSession.Scopes)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, auth: authSession, graph: client}, nil
}

func shellCommand() *cli.Command {
	return &cli.Command{
		Name:   "shell",
		Usage:  "Run the interactive menu (default).",
		Action: runShell,
	}
}

func runShell(c *cli.Context) error {
	fmt.Println("Graph calendar console: manage Teams events and guest invitations")
	fmt.Println()

	s, err := signIn(c)
	if err != nil {
		return err
	}

	profile, err := s.graph.Me(c.Context)
	if err != nil {
		s.logger.Error("Failed to load user profile", "error", err)
	}

	return shell.New(shell.Options{
		Console:     console.NewTerminal(os.Stdin, os.Stdout),
		Logger:      s.logger,
		Calendar:    s.graph,
		Token:       s.auth.Token,
		Profile:     profile,
		RedirectURL: s.cfg.InviteRedirectURL,
	}).Run(c.Context)
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Sign in and print the access token.",
		Action: func(c *cli.Context) error {
			s, err := signIn(c)
			if err != nil {
				return err
			}
			fmt.Printf("Access token: %s\n", s.auth.Token)
			s.logger.Debug("Token issued", "scopes", strings.Join(s.auth.Scopes, " "), "expiresOn", s.auth.ExpiresOn)
			return nil
		},
	}
}

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Print this week's events.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "ics", Usage: "Also write the events to `FILE` as iCalendar."},
		},
		Action: func(c *cli.Context) error {
			s, err := signIn(c)
			if err != nil {
				return err
			}
			profile, events, err := s.weekEvents(c)
			if err != nil {
				return err
			}

			shell.PrintEvents(console.New(os.Stdin, os.Stdout), events, profile.Mailbox.DateTimeFormat())

			if name := c.String("ics"); name != "" {
				if err := writeICS(name, events); err != nil {
					return err
				}
				s.logger.Info("Wrote iCalendar file.", "file", name, "events", len(events))
			}
			return nil
		},
	}
}

func inviteCommand() *cli.Command {
	return &cli.Command{
		Name:  "invite",
		Usage: "Send guest invitations.",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "email", Usage: "Guest address; repeat for several.", Required: true},
		},
		Action: func(c *cli.Context) error {
			s, err := signIn(c)
			if err != nil {
				return err
			}

			results, err := s.graph.InviteUsers(c.Context, c.StringSlice("email"), s.cfg.InviteRedirectURL)
			for _, r := range results {
				if r.Err != nil {
					fmt.Printf("Could not invite %s: %v\n", r.Email, r.Err)
					continue
				}
				fmt.Printf("User added: %s %s\n", r.Email, r.RedeemURL)
			}
			if err != nil {
				return fmt.Errorf("some invitations failed: %w", err)
			}
			return nil
		},
	}
}

func mirrorCommand() *cli.Command {
	return &cli.Command{
		Name:  "mirror",
		Usage: "Copy this week's events to the configured CalDAV calendar.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Log what would be mirrored without making changes."},
		},
		Action: func(c *cli.Context) error {
			s, err := signIn(c)
			if err != nil {
				return err
			}
			dav := s.cfg.CalDAV
			if !dav.Enabled() {
				return errors.New("CALDAV_URL and CALDAV_CALENDAR must be set to mirror events")
			}

			if c.Bool("dry-run") {
				s.logger.Info("Performing a dry run. No changes will be made.")
			}

			_, events, err := s.weekEvents(c)
			if err != nil {
				return err
			}

			target, err := caldav.NewClient(c.Context, s.logger, dav.URL, dav.Username, dav.Password, dav.Calendar)
			if err != nil {
				return fmt.Errorf("failed to create caldav client: %w", err)
			}
			m, err := mirror.New(s.logger, target, dav.StateFile, c.Bool("dry-run"))
			if err != nil {
				return err
			}

			sum, err := m.Run(c.Context, events)
			if err != nil {
				return fmt.Errorf("mirror run failed: %w", err)
			}
			fmt.Printf("Mirrored %d, skipped %d, failed %d.\n", sum.Pushed, sum.Skipped, sum.Failed)
			return nil
		},
	}
}

// weekEvents fetches the profile and the events of the current week in the
// user's time zone.
func (s *session) weekEvents(c *cli.Context) (*models.UserProfile, []models.Event, error) {
	profile, err := s.graph.Me(c.Context)
	if err != nil {
		return nil, nil, err
	}
	today := time.Now()
	if loc, err := datetime.ResolveZone(profile.Mailbox.TimeZone); err == nil {
		today = today.In(loc)
	}
	events, err := s.graph.ListWeek(c.Context, today, profile.Mailbox.TimeZone)
	if err != nil {
		return nil, nil, err
	}
	return profile, events, nil
}

func writeICS(name string, events []models.Event) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if err := caldav.EncodeCalendar(f, events); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return logger
}
