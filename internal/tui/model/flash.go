package model

import (
	"sync"
	"time"
)

// FlashLevel is the severity of a flash message.
type FlashLevel int

const (
	FlashInfo FlashLevel = iota
	FlashWarn
	FlashErr
)

// FlashMessage is a transient notification.
type FlashMessage struct {
	Text    string
	Level   FlashLevel
	Expires time.Time
}

// Flash holds the current transient notification.
type Flash struct {
	mu      sync.RWMutex
	current FlashMessage
	now     func() time.Time
}

// Info shows msg for 5 seconds.
func (f *Flash) Info(msg string) {
	f.Set(msg, FlashInfo, 5*time.Second)
}

// Warn shows msg for 8 seconds.
func (f *Flash) Warn(msg string) {
	f.Set(msg, FlashWarn, 8*time.Second)
}

// Err shows err for 10 seconds.
func (f *Flash) Err(prefix string, err error) {
	text := err.Error()
	if prefix != "" {
		text = prefix + ": " + text
	}
	f.Set(text, FlashErr, 10*time.Second)
}

// Set stores a flash message that expires after d.
func (f *Flash) Set(msg string, level FlashLevel, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = FlashMessage{Text: msg, Level: level, Expires: f.clock().Add(d)}
}

// Get returns the current message, or nil once it has expired.
func (f *Flash) Get() *FlashMessage {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current.Text == "" || !f.clock().Before(f.current.Expires) {
		return nil
	}
	m := f.current
	return &m
}

func (f *Flash) clock() time.Time {
	if f.now != nil {
		return f.now()
	}
	return time.Now()
}
