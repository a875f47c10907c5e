package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/matheus3301/smsdash/internal/conversation"
	"github.com/matheus3301/smsdash/internal/lock"
	"github.com/matheus3301/smsdash/internal/profile"
	"github.com/matheus3301/smsdash/internal/status"
)

// APIError is a non-2xx answer from the gateway.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Message)
}

// IsConflict reports whether err is a 409 from the gateway.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// Client talks to a running gateway over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the gateway at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Discover finds the gateway serving profileName through its lock file.
func Discover(profileName string, opts ...Option) (*Client, error) {
	h, err := lock.ReadHolder(profile.Dir(profileName))
	if err != nil {
		if errors.Is(err, lock.ErrNotHeld) {
			return nil, fmt.Errorf("no gateway running for profile %q (start smsdashd --profile %s)", profileName, profileName)
		}
		return nil, err
	}
	return New(BaseURL(h.Addr), opts...), nil
}

// BaseURL turns a listen address into a URL a local client can dial.
func BaseURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// Conversations fetches the merged conversation list.
func (c *Client) Conversations(ctx context.Context) ([]conversation.Conversation, error) {
	var out []conversation.Conversation
	if err := c.do(ctx, http.MethodGet, "/api/conversations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendSMS sends text to the given number.
func (c *Client) SendSMS(ctx context.Context, to, text string) (conversation.Message, error) {
	var out conversation.Message
	err := c.do(ctx, http.MethodPost, "/api/send_sms", map[string]string{"to": to, "text": text}, &out)
	return out, err
}

// SaveContact registers a phone in the contact directory.
func (c *Client) SaveContact(ctx context.Context, nc conversation.NewContact) (conversation.ContactRecord, error) {
	body := map[string]string{
		"name":       nc.Name,
		"phone":      nc.Phone,
		"email":      nc.Email,
		"shoot_date": nc.ShootDate,
	}
	var out conversation.ContactRecord
	err := c.do(ctx, http.MethodPost, "/api/save_contact", body, &out)
	return out, err
}

// Status returns the gateway health snapshot.
func (c *Client) Status(ctx context.Context) (status.Snapshot, error) {
	var out status.Snapshot
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &out)
	return out, err
}

// Health checks that the gateway answers.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		OK bool `json:"ok"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return err
	}
	if !out.OK {
		return errors.New("gateway reported not ok")
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call gateway: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read gateway response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}
