package model

import (
	"errors"
	"testing"
	"time"
)

func TestFlashExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f := &Flash{now: func() time.Time { return now }}

	if f.Get() != nil {
		t.Fatal("empty flash should be nil")
	}

	f.Info("saved")
	if m := f.Get(); m == nil || m.Text != "saved" || m.Level != FlashInfo {
		t.Fatalf("Get = %+v", m)
	}

	now = now.Add(5 * time.Second)
	if m := f.Get(); m != nil {
		t.Errorf("flash should expire after 5s, got %+v", m)
	}
}

func TestFlashErrPrefix(t *testing.T) {
	var f Flash
	f.Err("Send failed", errors.New("boom"))
	m := f.Get()
	if m == nil || m.Text != "Send failed: boom" || m.Level != FlashErr {
		t.Fatalf("Get = %+v", m)
	}

	f.Err("", errors.New("bare"))
	if m := f.Get(); m == nil || m.Text != "bare" {
		t.Fatalf("Get = %+v", m)
	}
}
