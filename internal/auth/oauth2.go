package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

// endpoint returns the Microsoft identity platform endpoint for tenant,
// including the device authorization URL.
func endpoint(tenant string) oauth2.Endpoint {
	if tenant == "" {
		tenant = "common"
	}
	ep := microsoft.AzureADEndpoint(tenant)
	if ep.DeviceAuthURL == "" {
		ep.DeviceAuthURL = "https://login.microsoftonline.com/" + tenant + "/oauth2/v2.0/devicecode"
	}
	// Public clients have no secret; the client id travels in the form body.
	ep.AuthStyle = oauth2.AuthStyleInParams
	return ep
}

func loginOAuth2(ctx context.Context, logger *slog.Logger, opts Options, prompt PromptFunc) (*Session, error) {
	ep := opts.Endpoint
	if ep.TokenURL == "" {
		ep = endpoint(opts.TenantID)
	}
	conf := &oauth2.Config{
		ClientID: opts.ClientID,
		Scopes:   opts.Scopes,
		Endpoint: ep,
	}

	token, err := cachedToken(logger, opts.TokenCache)
	if err != nil || token == nil {
		logger.Debug("Starting device code sign-in", "flow", FlowOAuth2, "tenant", opts.TenantID)
		token, err = deviceToken(ctx, conf, prompt)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
		}
		if opts.TokenCache != "" {
			if err := SaveToken(opts.TokenCache, token); err != nil {
				logger.Warn("Failed to cache token", "file", opts.TokenCache, "error", err)
			}
		}
	}

	logger.Info("Signed in.", "expiresOn", token.Expiry)
	return &Session{
		Credential: &tokenSourceCredential{src: conf.TokenSource(ctx, token)},
		Token:      token.AccessToken,
		Scopes:     opts.Scopes,
		ExpiresOn:  token.Expiry,
	}, nil
}

func deviceToken(ctx context.Context, conf *oauth2.Config, prompt PromptFunc) (*oauth2.Token, error) {
	resp, err := conf.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device authorization request failed: %w", err)
	}

	prompt(DeviceCode{
		Message: fmt.Sprintf("To sign in, use a web browser to open the page %s and enter the code %s to authenticate.",
			resp.VerificationURI, resp.UserCode),
		UserCode:        resp.UserCode,
		VerificationURL: resp.VerificationURI,
	})

	token, err := conf.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device access token request failed: %w", err)
	}
	return token, nil
}

// cachedToken returns a still-valid token from path, or nil when there is
// none worth reusing.
func cachedToken(logger *slog.Logger, path string) (*oauth2.Token, error) {
	if path == "" {
		return nil, nil
	}
	token, err := TokenFromFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Ignoring unreadable token cache", "file", path, "error", err)
		}
		return nil, err
	}
	if !token.Valid() {
		logger.Debug("Cached token expired", "file", path)
		return nil, nil
	}
	return token, nil
}

// SaveToken saves a token to a file path.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// TokenFromFile retrieves a token from a local file.
func TokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return tok, nil
}

// tokenSourceCredential lets an oauth2.TokenSource act as an azcore credential.
// The token already carries the scopes granted at sign-in, so requested
// scopes are ignored.
type tokenSourceCredential struct {
	src oauth2.TokenSource
}

func (c *tokenSourceCredential) GetToken(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	tok, err := c.src.Token()
	if err != nil {
		return azcore.AccessToken{}, err
	}
	return azcore.AccessToken{Token: tok.AccessToken, ExpiresOn: tok.Expiry}, nil
}
