package daemon

import (
	"context"

	"github.com/matheus3301/smsdash/internal/bus"
	"github.com/matheus3301/smsdash/internal/conversation"
	"github.com/matheus3301/smsdash/internal/status"
	"go.uber.org/zap"
)

// EventLogger writes gateway bus events to the log.
type EventLogger struct {
	bus    *bus.Bus
	logger *zap.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

// NewEventLogger creates an event logger for b.
func NewEventLogger(b *bus.Bus, logger *zap.Logger) *EventLogger {
	return &EventLogger{bus: b, logger: logger}
}

// Start subscribes to every event on the bus.
func (e *EventLogger) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})
	ch, unsub := e.bus.Subscribe("", 256)

	go func() {
		defer close(e.done)
		defer unsub()
		for {
			select {
			case evt := <-ch:
				e.handleEvent(evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the logger and waits for it to exit.
func (e *EventLogger) Stop() {
	if e.cancel != nil {
		e.cancel()
		<-e.done
	}
}

func (e *EventLogger) handleEvent(evt bus.Event) {
	switch p := evt.Payload.(type) {
	case status.StatusChange:
		e.logger.Info("gateway status changed", zap.String("from", string(p.From)), zap.String("to", string(p.To)))
	case bus.LoadStats:
		e.logger.Info("conversations loaded",
			zap.Int("messages", p.Messages),
			zap.Int("contacts", p.Contacts),
			zap.Int("conversations", p.Conversations),
			zap.Int("unregistered", p.Unregistered),
			zap.Duration("elapsed", p.Duration),
		)
	case conversation.Message:
		e.logger.Info("event", zap.String("kind", evt.Kind), zap.String("sid", p.SID), zap.String("to", p.To))
	case conversation.ContactRecord:
		e.logger.Info("event", zap.String("kind", evt.Kind), zap.String("id", p.ID), zap.String("phone", p.Fields.Phone))
	case string:
		e.logger.Warn("event", zap.String("kind", evt.Kind), zap.String("detail", p))
	default:
		e.logger.Debug("event", zap.String("kind", evt.Kind))
	}
}
