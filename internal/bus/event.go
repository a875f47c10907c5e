package bus

import "time"

// Event kinds published by the gateway. Subscribers filter by prefix, e.g.
// "conversations." or "sms.".
const (
	KindStatusChanged       = "gateway.status_changed"
	KindConversationsLoaded = "conversations.loaded"
	KindConversationsFailed = "conversations.failed"
	KindSMSSent             = "sms.sent"
	KindSMSFailed           = "sms.failed"
	KindContactSaved        = "contact.saved"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// NewEvent stamps an event with the current time.
func NewEvent(kind string, payload any) Event {
	return Event{Kind: kind, Timestamp: time.Now(), Payload: payload}
}

// LoadStats is the payload of conversations.loaded.
type LoadStats struct {
	Messages      int
	Contacts      int
	Conversations int
	Unregistered  int
	Duration      time.Duration
}
