package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matheus3301/smsdash/internal/bus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidRequest marks caller input the service refuses to forward.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrContactExists is returned when saving a phone that is already registered.
	ErrContactExists = errors.New("contact already registered")
)

// MessageSource returns the complete message history of the account.
type MessageSource interface {
	FetchAllMessages(ctx context.Context) ([]Message, error)
}

// DirectorySource returns the complete contact directory.
type DirectorySource interface {
	FetchDirectory(ctx context.Context) (*Directory, error)
}

// SMSSender submits an outbound message.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (Message, error)
}

// ContactCreator appends a record to the contact directory.
type ContactCreator interface {
	CreateContact(ctx context.Context, c NewContact) (ContactRecord, error)
}

// HealthReporter is told the outcome of every load.
type HealthReporter interface {
	LoadSucceeded()
	LoadFailed(err error)
}

// Deps wires a Service. Sender, Contacts, Health and Bus are optional.
type Deps struct {
	Messages   MessageSource
	Directory  DirectorySource
	Sender     SMSSender
	Contacts   ContactCreator
	SelfNumber string
	Health     HealthReporter
	Bus        *bus.Bus
	Logger     *zap.Logger
}

// Service loads conversations from both upstream systems on every call.
// It keeps no state between calls and is safe for concurrent use.
type Service struct {
	messages  MessageSource
	directory DirectorySource
	sender    SMSSender
	contacts  ContactCreator
	self      string
	health    HealthReporter
	bus       *bus.Bus
	logger    *zap.Logger
}

// NewService creates a conversation service.
func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		messages:  d.Messages,
		directory: d.Directory,
		sender:    d.Sender,
		contacts:  d.Contacts,
		self:      d.SelfNumber,
		health:    d.Health,
		bus:       d.Bus,
		logger:    logger,
	}
}

// Load fetches messages and the directory concurrently and merges them.
// The first fetch to fail cancels the other; no partial list is returned.
func (s *Service) Load(ctx context.Context) ([]Conversation, error) {
	started := time.Now()

	var (
		messages []Message
		dir      *Directory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.messages.FetchAllMessages(gctx)
		if err != nil {
			return fmt.Errorf("fetch messages: %w", err)
		}
		messages = m
		return nil
	})
	g.Go(func() error {
		d, err := s.directory.FetchDirectory(gctx)
		if err != nil {
			return fmt.Errorf("fetch directory: %w", err)
		}
		dir = d
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("conversation load failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		if s.health != nil {
			s.health.LoadFailed(err)
		}
		s.bus.Publish(bus.NewEvent(bus.KindConversationsFailed, err.Error()))
		return nil, err
	}

	convs := Merge(messages, dir, s.self)

	stats := bus.LoadStats{
		Messages:      len(messages),
		Contacts:      dir.Len(),
		Conversations: len(convs),
		Duration:      time.Since(started),
	}
	for _, c := range convs {
		if !c.IsRegistered {
			stats.Unregistered++
		}
	}
	s.logger.Debug("conversations loaded",
		zap.Int("messages", stats.Messages),
		zap.Int("contacts", stats.Contacts),
		zap.Int("conversations", stats.Conversations),
		zap.Int("unregistered", stats.Unregistered),
		zap.Duration("elapsed", stats.Duration),
	)
	if s.health != nil {
		s.health.LoadSucceeded()
	}
	s.bus.Publish(bus.NewEvent(bus.KindConversationsLoaded, stats))
	return convs, nil
}

// SendSMS forwards an outbound message to the provider.
func (s *Service) SendSMS(ctx context.Context, to, body string) (Message, error) {
	if s.sender == nil {
		return Message{}, errors.New("sms sending is not configured")
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return Message{}, fmt.Errorf("%w: recipient is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(body) == "" {
		return Message{}, fmt.Errorf("%w: message body is required", ErrInvalidRequest)
	}

	msg, err := s.sender.SendSMS(ctx, to, body)
	if err != nil {
		s.logger.Error("send sms failed", zap.String("to", to), zap.Error(err))
		s.bus.Publish(bus.NewEvent(bus.KindSMSFailed, to))
		return Message{}, fmt.Errorf("send sms: %w", err)
	}
	s.logger.Info("sms sent", zap.String("to", to), zap.String("sid", msg.SID))
	s.bus.Publish(bus.NewEvent(bus.KindSMSSent, msg))
	return msg, nil
}

// SaveContact registers a new phone in the directory. A phone that is
// already registered is refused with ErrContactExists.
func (s *Service) SaveContact(ctx context.Context, c NewContact) (ContactRecord, error) {
	if s.contacts == nil {
		return ContactRecord{}, errors.New("contact creation is not configured")
	}
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Name == "" {
		return ContactRecord{}, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if c.Phone == "" {
		return ContactRecord{}, fmt.Errorf("%w: phone is required", ErrInvalidRequest)
	}

	dir, err := s.directory.FetchDirectory(ctx)
	if err != nil {
		return ContactRecord{}, fmt.Errorf("fetch directory: %w", err)
	}
	if dir.Has(c.Phone) {
		return ContactRecord{}, fmt.Errorf("%w: %s", ErrContactExists, c.Phone)
	}

	rec, err := s.contacts.CreateContact(ctx, c)
	if err != nil {
		return ContactRecord{}, fmt.Errorf("create contact: %w", err)
	}
	s.logger.Info("contact saved", zap.String("id", rec.ID), zap.String("phone", c.Phone))
	s.bus.Publish(bus.NewEvent(bus.KindContactSaved, rec))
	return rec, nil
}
