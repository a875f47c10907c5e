package lock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()

	l, err := Acquire(dir, "127.0.0.1:3000")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "LOCK"))
	if err != nil {
		t.Fatalf("read lock file: %v", err)
	}
	h := parse(string(data))
	if h.PID != os.Getpid() {
		t.Errorf("pid = %d, want %d", h.PID, os.Getpid())
	}
	if h.Addr != "127.0.0.1:3000" {
		t.Errorf("addr = %q", h.Addr)
	}

	if err := l.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "LOCK")); !os.IsNotExist(err) {
		t.Error("lock file should be removed after Release")
	}
}

func TestAcquireHeld(t *testing.T) {
	dir := t.TempDir()

	l, err := Acquire(dir, ":3000")
	if err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	defer func() { _ = l.Release() }()

	_, err = Acquire(dir, ":3001")
	var held *LockHeldError
	if !errors.As(err, &held) {
		t.Fatalf("second Acquire() error = %v, want LockHeldError", err)
	}
	if held.PID != os.Getpid() {
		t.Errorf("held.PID = %d, want %d", held.PID, os.Getpid())
	}
	if held.Addr != ":3000" {
		t.Errorf("held.Addr = %q, want :3000", held.Addr)
	}
}

func TestReadHolder(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadHolder(dir); !errors.Is(err, ErrNotHeld) {
		t.Fatalf("ReadHolder() on empty dir error = %v, want ErrNotHeld", err)
	}

	l, err := Acquire(dir, "127.0.0.1:4000")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	h, err := ReadHolder(dir)
	if err != nil {
		t.Fatalf("ReadHolder() error = %v", err)
	}
	if h.Addr != "127.0.0.1:4000" || h.PID != os.Getpid() {
		t.Errorf("holder = %+v", h)
	}
	if h.Since.IsZero() {
		t.Error("holder.Since should be set")
	}

	_ = l.Release()
	if _, err := ReadHolder(dir); !errors.Is(err, ErrNotHeld) {
		t.Errorf("ReadHolder() after release error = %v, want ErrNotHeld", err)
	}
}

func TestReadHolderStaleFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "LOCK"), []byte("pid=1\naddr=:9\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadHolder(dir); !errors.Is(err, ErrNotHeld) {
		t.Errorf("ReadHolder() on stale file error = %v, want ErrNotHeld", err)
	}
}

func TestReleaseNil(t *testing.T) {
	var l *Lock
	if err := l.Release(); err != nil {
		t.Errorf("nil Release() error = %v", err)
	}
}

func TestReleaseTwice(t *testing.T) {
	l, err := Acquire(t.TempDir(), "")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("first Release() error = %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}
}
