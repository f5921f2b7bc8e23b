// Package caldav exports calendar events as iCalendar data and writes them
// to a CalDAV collection.
package caldav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"

	"graphcal/internal/models"
)

// ErrCalendarNotFound is returned when no calendar carries the configured name.
var ErrCalendarNotFound = errors.New("calendar not found")

// basicAuthTransport adds Basic Auth and a User-Agent to every request.
type basicAuthTransport struct {
	username string
	password string
	next     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.username, t.password)
	req.Header.Set("User-Agent", "graphcal/1.0")
	return t.next.RoundTrip(req)
}

// Client writes events to one calendar on a CalDAV server.
type Client struct {
	caldav       *caldav.Client
	webdav       *webdav.Client
	logger       *slog.Logger
	calendarPath string
}

// NewClient connects to the CalDAV server at endpoint and looks up the
// calendar called calendarName.
func NewClient(ctx context.Context, logger *slog.Logger, endpoint, username, password, calendarName string) (*Client, error) {
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid caldav url: %w", err)
	}
	httpClient := &http.Client{Transport: &basicAuthTransport{
		username: username,
		password: password,
		next:     http.DefaultTransport,
	}}

	caldavClient, err := caldav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	webdavClient, err := webdav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create webdav client: %w", err)
	}

	c := &Client{caldav: caldavClient, webdav: webdavClient, logger: logger}

	logger.Info("Finding CalDAV calendar", "calendarName", calendarName)
	calendarPath, err := c.findCalendar(ctx, calendarName)
	if err != nil {
		return nil, fmt.Errorf("could not find calendar '%s': %w", calendarName, err)
	}
	c.calendarPath = calendarPath
	logger.Info("Found CalDAV calendar", "path", calendarPath)

	return c, nil
}

// PutEvent writes event to the calendar as <uid>.ics, replacing any
// existing object with the same name. It returns the UID used.
func (c *Client) PutEvent(ctx context.Context, event models.Event) (string, error) {
	uid := EventUID(event)
	c.logger.Debug("Writing event to CalDAV", "subject", event.Subject, "uid", uid)

	event.UID = uid
	cal := NewCalendar([]models.Event{event}, nowUTC())

	w, err := c.webdav.Create(ctx, objectPath(c.calendarPath, uid))
	if err != nil {
		return "", fmt.Errorf("failed to create event on CalDAV server: %w", err)
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to encode event to iCal format: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to upload event: %w", err)
	}

	c.logger.Info("Wrote event to CalDAV", "subject", event.Subject)
	return uid, nil
}

// findCalendar walks principal, home set and calendars to find the path of
// the calendar with the given name.
func (c *Client) findCalendar(ctx context.Context, name string) (string, error) {
	principal, err := c.caldav.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSet, err := c.caldav.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := c.caldav.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	return matchCalendar(calendars, name)
}

func matchCalendar(calendars []caldav.Calendar, name string) (string, error) {
	for _, cal := range calendars {
		if cal.Name == name {
			return cal.Path, nil
		}
	}
	return "", ErrCalendarNotFound
}

func objectPath(calendarPath, uid string) string {
	return path.Join(calendarPath, uid+".ics")
}
