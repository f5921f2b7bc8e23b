package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	abstractions "github.com/microsoft/kiota-abstractions-go"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	"github.com/microsoftgraph/msgraph-sdk-go/users"

	"graphcal/internal/datetime"
	"graphcal/internal/models"
)

const (
	// maxEvents caps a calendar view request.
	maxEvents = 50
)

var (
	profileFields = []string{"displayName", "mailboxSettings"}
	eventFields   = []string{"subject", "organizer", "start", "end"}
)

// Client provides access to the signed-in user's profile, calendar and
// guest invitations through Microsoft Graph.
type Client struct {
	service *msgraphsdk.GraphServiceClient
	logger  *slog.Logger
}

// NewClient creates a Graph client that authenticates with cred.
func NewClient(logger *slog.Logger, cred azcore.TokenCredential, scopes []string) (*Client, error) {
	service, err := msgraphsdk.NewGraphServiceClientWithCredentials(cred, scopes)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph client: %w", err)
	}
	return &Client{service: service, logger: logger}, nil
}

// Me fetches the signed-in user's display name and mailbox settings.
// Mailbox fields the service leaves empty are filled from local defaults.
func (c *Client) Me(ctx context.Context) (*models.UserProfile, error) {
	c.logger.Debug("Fetching signed-in user")

	query := users.UserItemRequestBuilderGetQueryParameters{Select: profileFields}
	user, err := c.service.Me().Get(ctx, &users.UserItemRequestBuilderGetRequestConfiguration{
		QueryParameters: &query,
	})
	if err != nil {
		return nil, fmt.Errorf("error getting signed-in user: %w", describe(err))
	}
	return toProfile(user), nil
}

// ListWeek returns the events of the calendar week containing today, as
// observed in tz.
func (c *Client) ListWeek(ctx context.Context, today time.Time, tz string) ([]models.Event, error) {
	window, err := datetime.WeekWindow(today, tz)
	if err != nil {
		return nil, fmt.Errorf("failed to compute week window: %w", err)
	}
	return c.CalendarView(ctx, window, tz)
}

// CalendarView returns up to 50 events starting within window, ordered by
// start time, with times expressed in tz.
func (c *Client) CalendarView(ctx context.Context, window datetime.Window, tz string) ([]models.Event, error) {
	c.logger.Debug("Fetching calendar view", "start", window.Start, "end", window.End, "timeZone", tz)

	start := window.Start.UTC().Format(time.RFC3339)
	end := window.End.UTC().Format(time.RFC3339)
	top := int32(maxEvents)

	headers := abstractions.NewRequestHeaders()
	headers.Add("Prefer", fmt.Sprintf("outlook.timezone=%q", tz))

	result, err := c.service.Me().CalendarView().Get(ctx, &users.ItemCalendarViewRequestBuilderGetRequestConfiguration{
		Headers: headers,
		QueryParameters: &users.ItemCalendarViewRequestBuilderGetQueryParameters{
			StartDateTime: &start,
			EndDateTime:   &end,
			Top:           &top,
			Select:        eventFields,
			Orderby:       []string{"start/dateTime"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error getting events: %w", describe(err))
	}

	events := toEvents(c.logger, result.GetValue())
	c.logger.Info("Fetched calendar view", "count", len(events))
	return events, nil
}

// CreateEvent submits draft as an online meeting in the user's time zone.
func (c *Client) CreateEvent(ctx context.Context, draft models.EventDraft, tz string) (*models.Event, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	c.logger.Debug("Creating event", "subject", draft.Subject, "attendees", len(draft.Attendees))

	created, err := c.service.Me().Events().Post(ctx, newEvent(draft, tz), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating event: %w", describe(err))
	}

	event, err := createdEvent(c.logger, created)
	if err != nil {
		return nil, fmt.Errorf("error creating event: %w", err)
	}
	return event, nil
}

// InviteUsers sends a guest invitation to every address. Each address is
// attempted even if earlier ones fail; failures are joined in the returned error.
func (c *Client) InviteUsers(ctx context.Context, emails []string, redirectURL string) ([]models.InviteResult, error) {
	return inviteAll(ctx, emails, redirectURL, c.invite)
}

func (c *Client) invite(ctx context.Context, inv models.Invitation) (string, error) {
	c.logger.Debug("Inviting guest", "email", inv.Email)

	created, err := c.service.Invitations().Post(ctx, newInvitation(inv), nil)
	if err != nil {
		return "", fmt.Errorf("error inviting %s: %w", inv.Email, describe(err))
	}
	url, err := redeemURL(created)
	if err != nil {
		return "", fmt.Errorf("error inviting %s: %w", inv.Email, err)
	}
	return url, nil
}

type inviteFunc func(ctx context.Context, inv models.Invitation) (redeemURL string, err error)

func inviteAll(ctx context.Context, emails []string, redirectURL string, send inviteFunc) ([]models.InviteResult, error) {
	results := make([]models.InviteResult, 0, len(emails))
	var errs []error
	for _, email := range emails {
		url, err := send(ctx, models.Invitation{
			Email:       email,
			RedirectURL: redirectURL,
			SendMessage: true,
		})
		results = append(results, models.InviteResult{Email: email, RedeemURL: url, Err: err})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}
