package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	defaultSettingsFile = "graphcal.toml"
	defaultTenant       = "common"
	defaultRedirectURL  = "https://myapps.microsoft.com"
	defaultStateFile    = "mirror-state.json"
)

// Authentication flows.
const (
	FlowAzidentity = "azidentity"
	FlowOAuth2     = "oauth2"
)

// ErrMissingSetting is returned when a required setting is absent.
var ErrMissingSetting = errors.New("missing or invalid settings")

// Config holds everything the application reads from the environment or
// the settings file.
type Config struct {
	ClientID          string   `toml:"client_id"`
	TenantID          string   `toml:"tenant_id"`
	Scopes            []string `toml:"-"`
	RawScopes         string   `toml:"scopes"`
	AuthFlow          string   `toml:"auth_flow"`
	TokenCache        string   `toml:"token_cache"`
	InviteRedirectURL string   `toml:"invite_redirect_url"`
	LogLevel          string   `toml:"log_level"`

	CalDAV CalDAVConfig `toml:"caldav"`
}

// CalDAVConfig configures the optional mirror target.
type CalDAVConfig struct {
	URL       string `toml:"url"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Calendar  string `toml:"calendar"`
	StateFile string `toml:"state_file"`
}

// Enabled reports whether enough CalDAV settings exist to mirror events.
func (c CalDAVConfig) Enabled() bool {
	return c.URL != "" && c.Calendar != ""
}

// Load reads .env (if present), then the TOML settings file (GRAPHCAL_CONFIG
// or ./graphcal.toml, if present), then lets environment variables override.
// Missing client id or scopes yields ErrMissingSetting.
func Load() (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	cfg := &Config{}

	path := os.Getenv("GRAPHCAL_CONFIG")
	if path == "" {
		path = defaultSettingsFile
	}
	if err := loadFile(path, cfg); err != nil {
		return nil, err
	}

	override(&cfg.ClientID, "GRAPH_CLIENT_ID")
	override(&cfg.TenantID, "GRAPH_TENANT_ID")
	override(&cfg.RawScopes, "GRAPH_SCOPES")
	override(&cfg.AuthFlow, "GRAPH_AUTH_FLOW")
	override(&cfg.TokenCache, "GRAPH_TOKEN_CACHE")
	override(&cfg.InviteRedirectURL, "GRAPH_INVITE_REDIRECT_URL")
	override(&cfg.LogLevel, "LOG_LEVEL")
	override(&cfg.CalDAV.URL, "CALDAV_URL")
	override(&cfg.CalDAV.Username, "CALDAV_USERNAME")
	override(&cfg.CalDAV.Password, "CALDAV_PASSWORD")
	override(&cfg.CalDAV.Calendar, "CALDAV_CALENDAR")
	override(&cfg.CalDAV.StateFile, "MIRROR_STATE_FILE")

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("unable to stat settings file %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("unable to parse settings file %s: %w", path, err)
	}
	return nil
}

func override(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	c.Scopes = SplitScopes(c.RawScopes)
	if c.TenantID == "" {
		c.TenantID = defaultTenant
	}
	if c.AuthFlow == "" {
		c.AuthFlow = FlowAzidentity
	}
	c.AuthFlow = strings.ToLower(c.AuthFlow)
	if c.InviteRedirectURL == "" {
		c.InviteRedirectURL = defaultRedirectURL
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.CalDAV.StateFile == "" {
		c.CalDAV.StateFile = defaultStateFile
	}
}

// Validate checks the settings required before any remote call.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("%w: GRAPH_CLIENT_ID not set", ErrMissingSetting)
	}
	if len(c.Scopes) == 0 {
		return fmt.Errorf("%w: GRAPH_SCOPES not set", ErrMissingSetting)
	}
	switch c.AuthFlow {
	case FlowAzidentity, FlowOAuth2:
	default:
		return fmt.Errorf("%w: unknown GRAPH_AUTH_FLOW %q", ErrMissingSetting, c.AuthFlow)
	}
	return nil
}

// SplitScopes splits a semicolon-delimited scope list, dropping blanks.
func SplitScopes(raw string) []string {
	var scopes []string
	for _, s := range strings.Split(raw, ";") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}
