package conversation

import (
	"fmt"
	"strings"
	"time"
)

// Message is a single SMS as reported by the telephony provider. DateCreated
// is kept exactly as the provider sent it; CreatedAt is its parsed form.
type Message struct {
	SID         string `json:"sid,omitempty"`
	From        string `json:"from"`
	To          string `json:"to"`
	Body        string `json:"body"`
	Status      string `json:"status,omitempty"`
	Direction   string `json:"direction,omitempty"`
	DateCreated string `json:"date_created"`

	CreatedAt time.Time `json:"-"`
}

// ContactFields are the directory columns the dashboard reads.
type ContactFields struct {
	Name      string `json:"Name"`
	Phone     string `json:"Phone"`
	ShootDate string `json:"Shoot Date,omitempty"`
	Email     string `json:"Email,omitempty"`
}

// ContactRecord is one row of the contact directory.
type ContactRecord struct {
	ID          string        `json:"id"`
	CreatedTime string        `json:"createdTime"`
	Fields      ContactFields `json:"fields"`
}

// NewContact is the input for appending a record to the directory.
type NewContact struct {
	Name      string
	Phone     string
	Email     string
	ShootDate string
}

// Conversation is the merged per-counterparty view. IsSelected belongs to
// the client; the gateway always emits false.
type Conversation struct {
	Phone                string         `json:"phone"`
	Contact              *ContactRecord `json:"contact"`
	Messages             []Message      `json:"messages"`
	LastMessage          *Message       `json:"last_message"`
	LastMessageTimestamp int64          `json:"lastMessageTimestamp"`
	IsRegistered         bool           `json:"is_registered"`
	IsSelected           bool           `json:"is_selected"`
}

// DisplayName returns the contact name, or the phone number for
// unregistered conversations.
func (c Conversation) DisplayName() string {
	if c.Contact != nil && strings.TrimSpace(c.Contact.Fields.Name) != "" {
		return c.Contact.Fields.Name
	}
	return c.Phone
}

var timestampLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339Nano,
	time.RFC3339,
}

// ParseTimestamp parses a provider timestamp. Twilio uses RFC 1123 with a
// numeric zone; RFC 3339 is accepted as well.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
