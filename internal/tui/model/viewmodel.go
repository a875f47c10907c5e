package model

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/matheus3301/smsdash/internal/conversation"
	"github.com/matheus3301/smsdash/internal/status"
)

var (
	// ErrNoSelection is returned by actions that need an open conversation.
	ErrNoSelection = errors.New("no conversation selected")
	// ErrAlreadyRegistered is returned when saving a number that already
	// has a directory record.
	ErrAlreadyRegistered = errors.New("number is already a saved contact")
)

// Gateway is the subset of the gateway client the dashboard uses.
type Gateway interface {
	Conversations(ctx context.Context) ([]conversation.Conversation, error)
	SendSMS(ctx context.Context, to, text string) (conversation.Message, error)
	SaveContact(ctx context.Context, nc conversation.NewContact) (conversation.ContactRecord, error)
	Status(ctx context.Context) (status.Snapshot, error)
}

// ViewModel caches gateway state between polls. The selected conversation is
// tracked here; the gateway's is_selected flag is ignored.
type ViewModel struct {
	mu sync.RWMutex

	gateway       Gateway
	conversations []conversation.Conversation
	status        *status.Snapshot
	selected      string
	Flash         Flash
}

// NewViewModel creates a view model backed by g.
func NewViewModel(g Gateway) *ViewModel {
	return &ViewModel{gateway: g}
}

// LoadConversations refreshes the conversation list.
func (vm *ViewModel) LoadConversations(ctx context.Context) error {
	convs, err := vm.gateway.Conversations(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.conversations = convs
	vm.markSelectedLocked()
	return nil
}

// LoadStatus refreshes the gateway health snapshot.
func (vm *ViewModel) LoadStatus(ctx context.Context) error {
	snap, err := vm.gateway.Status(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.status = &snap
	vm.mu.Unlock()
	return nil
}

// Select marks phone as the open conversation. An empty phone clears it.
func (vm *ViewModel) Select(phone string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.selected = phone
	vm.markSelectedLocked()
}

func (vm *ViewModel) markSelectedLocked() {
	for i := range vm.conversations {
		vm.conversations[i].IsSelected = vm.selected != "" && vm.conversations[i].Phone == vm.selected
	}
}

// Selected returns the open conversation. A selected phone that disappeared
// from the latest poll is reported as an empty unregistered conversation.
func (vm *ViewModel) Selected() (conversation.Conversation, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if vm.selected == "" {
		return conversation.Conversation{}, false
	}
	for _, c := range vm.conversations {
		if c.Phone == vm.selected {
			return c, true
		}
	}
	return conversation.Conversation{Phone: vm.selected, Messages: []conversation.Message{}, IsSelected: true}, true
}

// SendSMS sends text to the open conversation.
func (vm *ViewModel) SendSMS(ctx context.Context, text string) error {
	conv, ok := vm.Selected()
	if !ok {
		return ErrNoSelection
	}
	if _, err := vm.gateway.SendSMS(ctx, conv.Phone, text); err != nil {
		return err
	}
	vm.Flash.Info("Message sent to " + conv.DisplayName())
	return nil
}

// SaveContact registers the open conversation's number under name.
func (vm *ViewModel) SaveContact(ctx context.Context, name string) error {
	conv, ok := vm.Selected()
	if !ok {
		return ErrNoSelection
	}
	if conv.IsRegistered {
		return ErrAlreadyRegistered
	}
	name = strings.TrimSpace(name)
	rec, err := vm.gateway.SaveContact(ctx, conversation.NewContact{Name: name, Phone: conv.Phone})
	if err != nil {
		return err
	}

	vm.mu.Lock()
	for i := range vm.conversations {
		if vm.conversations[i].Phone == conv.Phone {
			vm.conversations[i].Contact = &rec
			vm.conversations[i].IsRegistered = true
		}
	}
	vm.mu.Unlock()

	vm.Flash.Info("Saved " + conv.Phone + " as " + name)
	return nil
}

// Conversations returns a copy of the cached list.
func (vm *ViewModel) Conversations() []conversation.Conversation {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	out := make([]conversation.Conversation, len(vm.conversations))
	copy(out, vm.conversations)
	return out
}

// Status returns the last health snapshot, or nil before the first poll.
func (vm *ViewModel) Status() *status.Snapshot {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if vm.status == nil {
		return nil
	}
	s := *vm.status
	return &s
}

// Counts returns the total and unregistered conversation counts.
func (vm *ViewModel) Counts() (total, unregistered int) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	for _, c := range vm.conversations {
		if !c.IsRegistered {
			unregistered++
		}
	}
	return len(vm.conversations), unregistered
}
