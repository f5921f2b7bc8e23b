package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLogin_RequiresClientAndScopes(t *testing.T) {
	_, err := Login(context.Background(), discardLogger(), Options{Scopes: []string{"User.Read"}}, nil)
	assert.ErrorIs(t, err, ErrAuthentication)

	_, err = Login(context.Background(), discardLogger(), Options{ClientID: "abc"}, nil)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestLogin_UnknownFlow(t *testing.T) {
	_, err := Login(context.Background(), discardLogger(), Options{
		ClientID: "abc",
		Scopes:   []string{"User.Read"},
		Flow:     "password",
	}, nil)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestTokenFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	want := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, SaveToken(path, want))
	got, err := TokenFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, want.AccessToken, got.AccessToken)
	assert.Equal(t, want.RefreshToken, got.RefreshToken)
	assert.True(t, want.Expiry.Equal(got.Expiry))

	_, err = TokenFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLogin_OAuth2UsesValidCachedToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, SaveToken(path, &oauth2.Token{
		AccessToken: "cached-token",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}))

	prompted := false
	sess, err := Login(context.Background(), discardLogger(), Options{
		ClientID:   "abc",
		Scopes:     []string{"User.Read"},
		Flow:       FlowOAuth2,
		TokenCache: path,
		// Any network use would fail against this endpoint.
		Endpoint: oauth2.Endpoint{TokenURL: "http://127.0.0.1:0/token", DeviceAuthURL: "http://127.0.0.1:0/device"},
	}, func(DeviceCode) { prompted = true })
	require.NoError(t, err)

	assert.False(t, prompted)
	assert.Equal(t, "cached-token", sess.Token)
	assert.Equal(t, []string{"User.Read"}, sess.Scopes)

	tok, err := sess.Credential.GetToken(context.Background(), policy.TokenRequestOptions{Scopes: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, "cached-token", tok.Token)
}

func TestLogin_OAuth2DeviceFlow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/device", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "abc", r.Form.Get("client_id"))
		assert.Equal(t, "User.Read Calendars.ReadWrite", r.Form.Get("scope"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"device_code":      "dev-code",
			"user_code":        "ABCD-EFGH",
			"verification_uri": "https://microsoft.com/devicelogin",
			"expires_in":       60,
			"interval":         1,
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "dev-code", r.Form.Get("device_code"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "fresh-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cache := filepath.Join(t.TempDir(), "token.json")
	var got DeviceCode
	sess, err := Login(context.Background(), discardLogger(), Options{
		ClientID:   "abc",
		Scopes:     []string{"User.Read", "Calendars.ReadWrite"},
		Flow:       FlowOAuth2,
		TokenCache: cache,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: srv.URL + "/device",
			TokenURL:      srv.URL + "/token",
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}, func(dc DeviceCode) { got = dc })
	require.NoError(t, err)

	assert.Equal(t, "ABCD-EFGH", got.UserCode)
	assert.Equal(t, "https://microsoft.com/devicelogin", got.VerificationURL)
	assert.Contains(t, got.Message, "ABCD-EFGH")
	assert.Equal(t, "fresh-token", sess.Token)

	cached, err := TokenFromFile(cache)
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", cached.AccessToken)
}

func TestLogin_OAuth2DeviceFlowDenied(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/device", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := Login(context.Background(), discardLogger(), Options{
		ClientID: "abc",
		Scopes:   []string{"User.Read"},
		Flow:     FlowOAuth2,
		Endpoint: oauth2.Endpoint{DeviceAuthURL: srv.URL + "/device", TokenURL: srv.URL + "/token"},
	}, nil)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestEndpoint(t *testing.T) {
	ep := endpoint("contoso")
	assert.Contains(t, ep.TokenURL, "/contoso/")
	assert.Contains(t, ep.DeviceAuthURL, "/contoso/oauth2/v2.0/devicecode")
	assert.Equal(t, oauth2.AuthStyleInParams, ep.AuthStyle)

	assert.Contains(t, endpoint("").TokenURL, "/common/")
}
