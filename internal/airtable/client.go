package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matheus3301/smsdash/internal/config"
	"github.com/matheus3301/smsdash/internal/conversation"
	"github.com/matheus3301/smsdash/internal/upstream"
	"go.uber.org/zap"
)

const (
	service  = "airtable"
	pageSize = 100
)

// ErrRepeatedOffset is returned when Airtable hands back an offset that was
// already fetched during the same run.
var ErrRepeatedOffset = errors.New("airtable returned a repeated offset")

// Client reads and appends rows of the contact table.
type Client struct {
	cfg     config.Airtable
	baseURL *url.URL
	http    *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for dropped and duplicate records.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the table described by cfg.
func NewClient(cfg config.Airtable, opts ...Option) (*Client, error) {
	raw := cfg.BaseURL
	if raw == "" {
		raw = config.DefaultAirtableBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse airtable base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("airtable base url %q must be absolute", raw)
	}
	c := &Client{
		cfg:     cfg,
		baseURL: base,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

func (c *Client) tableURL() *url.URL {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/v0/" + url.PathEscape(c.cfg.BaseID) + "/" + url.PathEscape(c.cfg.TableID)
	return &u
}

// RecordPage is one page of table rows. Offset is empty on the last page.
type RecordPage struct {
	Records []conversation.ContactRecord
	Offset  string
}

type listResponse struct {
	Records []conversation.ContactRecord `json:"records"`
	Offset  string                       `json:"offset"`
}

// FetchPage fetches one page of records starting at offset.
func (c *Client) FetchPage(ctx context.Context, offset string) (RecordPage, error) {
	u := c.tableURL()
	q := url.Values{"pageSize": {strconv.Itoa(pageSize)}}
	if offset != "" {
		q.Set("offset", offset)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return RecordPage{}, err
	}
	var resp listResponse
	if err := c.do(req, &resp); err != nil {
		return RecordPage{}, err
	}
	return RecordPage(resp), nil
}

// FetchDirectory reads every page of the table and indexes the rows by
// phone. A later row with an already-seen phone replaces the earlier one.
func (c *Client) FetchDirectory(ctx context.Context) (*conversation.Directory, error) {
	dir := conversation.NewDirectory()
	seen := make(map[string]struct{})
	offset := ""
	pages := 0
	for {
		page, err := c.FetchPage(ctx, offset)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", pages+1, err)
		}
		pages++

		for _, rec := range page.Records {
			if strings.TrimSpace(rec.Fields.Phone) == "" {
				err := &upstream.MalformedRecordError{Service: service, ID: rec.ID, Reason: "missing Phone"}
				c.logger.Warn("dropping malformed contact", zap.String("id", rec.ID), zap.Error(err))
				continue
			}
			if dir.Put(rec) {
				c.logger.Debug("duplicate contact phone, keeping latest",
					zap.String("phone", rec.Fields.Phone), zap.String("id", rec.ID))
			}
		}

		if page.Offset == "" {
			break
		}
		if _, dup := seen[page.Offset]; dup {
			return nil, fmt.Errorf("%w: %s", ErrRepeatedOffset, page.Offset)
		}
		seen[page.Offset] = struct{}{}
		offset = page.Offset
	}
	c.logger.Debug("fetched contact directory", zap.Int("pages", pages), zap.Int("contacts", dir.Len()))
	return dir, nil
}

type createRequest struct {
	Records []createRecord `json:"records"`
}

type createRecord struct {
	Fields conversation.ContactFields `json:"fields"`
}

// CreateContact appends one row to the table and returns it as stored.
func (c *Client) CreateContact(ctx context.Context, nc conversation.NewContact) (conversation.ContactRecord, error) {
	payload, err := json.Marshal(createRequest{Records: []createRecord{{
		Fields: conversation.ContactFields{
			Name:      nc.Name,
			Phone:     nc.Phone,
			Email:     nc.Email,
			ShootDate: nc.ShootDate,
		},
	}}})
	if err != nil {
		return conversation.ContactRecord{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tableURL().String(), bytes.NewReader(payload))
	if err != nil {
		return conversation.ContactRecord{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp listResponse
	if err := c.do(req, &resp); err != nil {
		return conversation.ContactRecord{}, err
	}
	if len(resp.Records) == 0 {
		return conversation.ContactRecord{}, fmt.Errorf("airtable created no record")
	}
	return resp.Records[0], nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("airtable request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read airtable response: %w", err)
	}
	if !upstream.OK(resp.StatusCode) {
		return upstream.FromResponse(service, resp, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode airtable response: %w", err)
	}
	return nil
}
