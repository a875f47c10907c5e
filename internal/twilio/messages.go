package twilio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/matheus3301/smsdash/internal/conversation"
	"github.com/matheus3301/smsdash/internal/upstream"
	"go.uber.org/zap"
)

// ErrRepeatedCursor is returned when Twilio hands back a page cursor that
// was already fetched during the same run.
var ErrRepeatedCursor = errors.New("twilio returned a repeated page cursor")

// MessagePage is one page of the account's message log. NextCursor is empty
// on the last page.
type MessagePage struct {
	Messages   []conversation.Message
	NextCursor string
}

type apiMessage struct {
	SID         string `json:"sid"`
	From        string `json:"from"`
	To          string `json:"to"`
	Body        string `json:"body"`
	Status      string `json:"status"`
	Direction   string `json:"direction"`
	DateCreated string `json:"date_created"`
}

type apiPage struct {
	Messages    []apiMessage `json:"messages"`
	NextPageURI *string      `json:"next_page_uri"`
}

func (m apiMessage) toMessage() (conversation.Message, error) {
	switch {
	case strings.TrimSpace(m.From) == "":
		return conversation.Message{}, &upstream.MalformedRecordError{Service: service, ID: m.SID, Reason: "missing from"}
	case strings.TrimSpace(m.To) == "":
		return conversation.Message{}, &upstream.MalformedRecordError{Service: service, ID: m.SID, Reason: "missing to"}
	}
	created, err := conversation.ParseTimestamp(m.DateCreated)
	if err != nil {
		return conversation.Message{}, &upstream.MalformedRecordError{Service: service, ID: m.SID, Reason: err.Error()}
	}
	return conversation.Message{
		SID:         m.SID,
		From:        m.From,
		To:          m.To,
		Body:        m.Body,
		Status:      m.Status,
		Direction:   m.Direction,
		DateCreated: m.DateCreated,
		CreatedAt:   created,
	}, nil
}

// FetchPage fetches one page of messages. An empty cursor starts from the
// first page; otherwise cursor is a next_page_uri from a previous page.
func (c *Client) FetchPage(ctx context.Context, cursor string) (MessagePage, error) {
	var u *url.URL
	var err error
	if cursor == "" {
		u, err = c.resolve(c.messagesPath())
		if err == nil {
			u.RawQuery = url.Values{"PageSize": {strconv.Itoa(pageSize)}}.Encode()
		}
	} else {
		u, err = c.resolve(cursor)
	}
	if err != nil {
		return MessagePage{}, err
	}

	var page apiPage
	if err := c.get(ctx, u, &page); err != nil {
		return MessagePage{}, err
	}

	out := MessagePage{Messages: make([]conversation.Message, 0, len(page.Messages))}
	for _, raw := range page.Messages {
		msg, err := raw.toMessage()
		if err != nil {
			c.logger.Warn("dropping malformed message", zap.String("sid", raw.SID), zap.Error(err))
			continue
		}
		out.Messages = append(out.Messages, msg)
	}
	if page.NextPageURI != nil {
		out.NextCursor = *page.NextPageURI
	}
	return out, nil
}

// FetchAllMessages walks every page of the message log in order and returns
// the concatenation. Any page failure aborts the whole walk.
func (c *Client) FetchAllMessages(ctx context.Context) ([]conversation.Message, error) {
	var all []conversation.Message
	seen := make(map[string]struct{})
	cursor := ""
	pages := 0
	for {
		page, err := c.FetchPage(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", pages+1, err)
		}
		pages++
		all = append(all, page.Messages...)

		if page.NextCursor == "" {
			break
		}
		if _, dup := seen[page.NextCursor]; dup {
			return nil, fmt.Errorf("%w: %s", ErrRepeatedCursor, page.NextCursor)
		}
		seen[page.NextCursor] = struct{}{}
		cursor = page.NextCursor
	}
	c.logger.Debug("fetched message log", zap.Int("pages", pages), zap.Int("messages", len(all)))
	if all == nil {
		all = []conversation.Message{}
	}
	return all, nil
}

// SendSMS submits an outbound message from the account's own number.
func (c *Client) SendSMS(ctx context.Context, to, body string) (conversation.Message, error) {
	u, err := c.resolve(c.messagesPath())
	if err != nil {
		return conversation.Message{}, err
	}
	form := url.Values{
		"From": {c.cfg.Phone},
		"To":   {to},
		"Body": {body},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return conversation.Message{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var created apiMessage
	if err := c.do(req, &created); err != nil {
		return conversation.Message{}, err
	}
	msg, err := created.toMessage()
	if err != nil {
		// Twilio accepted the message; keep what it reported.
		c.logger.Warn("sent message response incomplete", zap.String("sid", created.SID), zap.Error(err))
		return conversation.Message{
			SID:         created.SID,
			From:        created.From,
			To:          created.To,
			Body:        created.Body,
			Status:      created.Status,
			Direction:   created.Direction,
			DateCreated: created.DateCreated,
		}, nil
	}
	return msg, nil
}
