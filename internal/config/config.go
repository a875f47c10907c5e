package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultTwilioBaseURL   = "https://api.twilio.com"
	DefaultAirtableBaseURL = "https://api.airtable.com"
	DefaultAddr            = "127.0.0.1:3000"
	DefaultProfile         = "main"
)

// Config represents the global ~/.smsdash/config.toml.
type Config struct {
	DefaultProfile string             `toml:"default_profile"`
	Profiles       map[string]Profile `toml:"profiles"`
}

// Profile holds everything one gateway instance needs. It is built once at
// process start and handed to each client constructor.
type Profile struct {
	Server   Server   `toml:"server"`
	Twilio   Twilio   `toml:"twilio"`
	Airtable Airtable `toml:"airtable"`
}

// Server configures the HTTP surface.
type Server struct {
	Addr       string `toml:"addr"`
	CORSOrigin string `toml:"cors_origin"`
	StaticDir  string `toml:"static_dir"`
	APIToken   string `toml:"api_token"`
}

// Twilio holds the telephony provider credentials. Phone is the account's
// own number; APIKey, APISecret and AppSID are only needed for voice tokens.
type Twilio struct {
	AccountSID string `toml:"account_sid"`
	AuthToken  string `toml:"auth_token"`
	Phone      string `toml:"phone"`
	APIKey     string `toml:"api_key"`
	APISecret  string `toml:"api_secret"`
	AppSID     string `toml:"app_sid"`
	BaseURL    string `toml:"base_url"`
}

// Airtable holds the contact directory credentials.
type Airtable struct {
	Token   string `toml:"token"`
	BaseID  string `toml:"base_id"`
	TableID string `toml:"table_id"`
	BaseURL string `toml:"base_url"`
}

// Load reads config from the given path. Returns zero config and error if file missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// Profile returns the named profile with defaults filled in. A nil config or
// an unknown name yields the defaults alone.
func (c *Config) Profile(name string) Profile {
	var p Profile
	if c != nil {
		p = c.Profiles[name]
	}
	p.applyDefaults()
	return p
}

func (p *Profile) applyDefaults() {
	if p.Server.Addr == "" {
		p.Server.Addr = DefaultAddr
	}
	if p.Server.CORSOrigin == "" {
		p.Server.CORSOrigin = "*"
	}
	if p.Twilio.BaseURL == "" {
		p.Twilio.BaseURL = DefaultTwilioBaseURL
	}
	if p.Airtable.BaseURL == "" {
		p.Airtable.BaseURL = DefaultAirtableBaseURL
	}
}

// Validate reports every missing required setting at once.
func (p Profile) Validate() error {
	var errs []error
	required := []struct {
		key, value string
	}{
		{"twilio.account_sid", p.Twilio.AccountSID},
		{"twilio.auth_token", p.Twilio.AuthToken},
		{"twilio.phone", p.Twilio.Phone},
		{"airtable.token", p.Airtable.Token},
		{"airtable.base_id", p.Airtable.BaseID},
		{"airtable.table_id", p.Airtable.TableID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, errors.New(r.key+" is required"))
		}
	}
	return errors.Join(errs...)
}

// VoiceEnabled reports whether voice access tokens can be issued.
func (t Twilio) VoiceEnabled() bool {
	return t.APIKey != "" && t.APISecret != "" && t.AppSID != ""
}
