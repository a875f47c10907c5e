package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matheus3301/smsdash/internal/config"
	"github.com/matheus3301/smsdash/internal/upstream"
	"go.uber.org/zap"
)

const (
	service  = "twilio"
	pageSize = 100
)

// Client talks to the Twilio REST API for a single account.
type Client struct {
	cfg     config.Twilio
	baseURL *url.URL
	http    *http.Client
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for dropped records and page progress.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock overrides the clock used to stamp access tokens.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a client for the account described by cfg.
func NewClient(cfg config.Twilio, opts ...Option) (*Client, error) {
	raw := cfg.BaseURL
	if raw == "" {
		raw = config.DefaultTwilioBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse twilio base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("twilio base url %q must be absolute", raw)
	}
	c := &Client{
		cfg:     cfg,
		baseURL: base,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

// SelfNumber returns the account's own phone number.
func (c *Client) SelfNumber() string {
	return c.cfg.Phone
}

func (c *Client) messagesPath() string {
	return fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", url.PathEscape(c.cfg.AccountSID))
}

// resolve turns a path or next_page_uri into an absolute URL on the API host.
func (c *Client) resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parse twilio cursor: %w", err)
	}
	abs := c.baseURL.ResolveReference(u)
	if abs.Host != c.baseURL.Host {
		return nil, fmt.Errorf("twilio cursor points at foreign host %q", abs.Host)
	}
	return abs, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read twilio response: %w", err)
	}
	if !upstream.OK(resp.StatusCode) {
		return upstream.FromResponse(service, resp, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode twilio response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, u *url.URL, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}
