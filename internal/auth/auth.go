// Package auth signs the user in with a device-code grant and exposes the
// resulting credential to the Graph client.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"golang.org/x/oauth2"
)

// Supported device-code implementations.
const (
	FlowAzidentity = "azidentity"
	FlowOAuth2     = "oauth2"
)

// ErrAuthentication wraps every sign-in failure.
var ErrAuthentication = errors.New("authentication failed")

// DeviceCode is what the user needs to complete sign-in on another device.
type DeviceCode struct {
	Message         string
	UserCode        string
	VerificationURL string
}

// PromptFunc surfaces a device code to the user. It must not block on the
// user finishing sign-in.
type PromptFunc func(DeviceCode)

// Options configures Login.
type Options struct {
	ClientID string
	TenantID string
	Scopes   []string
	Flow     string

	// TokenCache is a JSON file used by the oauth2 flow to reuse a token
	// across runs. Empty disables caching.
	TokenCache string

	// Endpoint overrides the Microsoft identity endpoint for the oauth2 flow.
	Endpoint oauth2.Endpoint
}

// Session is the signed-in state shared by every operation for the life of
// the process.
type Session struct {
	Credential azcore.TokenCredential
	Token      string
	Scopes     []string
	ExpiresOn  time.Time
}

// Login performs the device-code grant and blocks until the user has
// finished signing in, the code expires, or ctx is done.
func Login(ctx context.Context, logger *slog.Logger, opts Options, prompt PromptFunc) (*Session, error) {
	if opts.ClientID == "" || len(opts.Scopes) == 0 {
		return nil, fmt.Errorf("%w: client id and scopes are required", ErrAuthentication)
	}
	if prompt == nil {
		prompt = func(DeviceCode) {}
	}

	switch opts.Flow {
	case "", FlowAzidentity:
		return loginAzidentity(ctx, logger, opts, prompt)
	case FlowOAuth2:
		return loginOAuth2(ctx, logger, opts, prompt)
	default:
		return nil, fmt.Errorf("%w: unknown flow %q", ErrAuthentication, opts.Flow)
	}
}

func loginAzidentity(ctx context.Context, logger *slog.Logger, opts Options, prompt PromptFunc) (*Session, error) {
	logger.Debug("Starting device code sign-in", "flow", FlowAzidentity, "tenant", opts.TenantID)

	cred, err := azidentity.NewDeviceCodeCredential(&azidentity.DeviceCodeCredentialOptions{
		ClientID: opts.ClientID,
		TenantID: opts.TenantID,
		UserPrompt: func(_ context.Context, msg azidentity.DeviceCodeMessage) error {
			prompt(DeviceCode{
				Message:         msg.Message,
				UserCode:        msg.UserCode,
				VerificationURL: msg.VerificationURL,
			})
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	tok, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: opts.Scopes})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	logger.Info("Signed in.", "expiresOn", tok.ExpiresOn)
	return &Session{
		Credential: cred,
		Token:      tok.Token,
		Scopes:     opts.Scopes,
		ExpiresOn:  tok.ExpiresOn,
	}, nil
}
