package keys

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func runeEvent(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestHandleEventPrefersView(t *testing.T) {
	r := NewRegistry()
	var got string
	r.AddGlobal(&Action{Key: tcell.KeyRune, Rune: 'a', Handler: func() { got = "global" }})
	r.AddView("thread", &Action{Key: tcell.KeyRune, Rune: 'a', Handler: func() { got = "thread" }})

	if !r.HandleEvent("thread", runeEvent('a')) || got != "thread" {
		t.Errorf("thread view: handled by %q, want thread", got)
	}
	if !r.HandleEvent("conversations", runeEvent('a')) || got != "global" {
		t.Errorf("other view: handled by %q, want global", got)
	}
	if r.HandleEvent("thread", runeEvent('z')) {
		t.Error("unbound key reported as handled")
	}
}

func TestHandleEventSpecialKey(t *testing.T) {
	r := NewRegistry()
	called := false
	r.AddGlobal(&Action{Key: tcell.KeyEnter, Handler: func() { called = true }})

	if !r.HandleEvent("any", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)) || !called {
		t.Error("Enter not dispatched")
	}
	if r.HandleEvent("any", runeEvent('e')) {
		t.Error("rune matched an Enter binding")
	}
}

func TestHintsOrder(t *testing.T) {
	r := NewRegistry()
	r.AddGlobal(&Action{Key: tcell.KeyRune, Rune: 'q', Description: "Quit", Visible: true})
	r.AddGlobal(&Action{Key: tcell.KeyRune, Rune: 'x', Description: "hidden"})
	r.AddView("thread", &Action{Key: tcell.KeyRune, Rune: 'i', Description: "Compose", Visible: true})
	r.AddView("thread", &Action{Key: tcell.KeyEnter, Description: "Send", Visible: true})

	hints := r.Hints("thread")
	want := []string{"i Compose", "Enter Send", "q Quit"}
	if len(hints) != len(want) {
		t.Fatalf("got %d hints, want %d: %+v", len(hints), len(want), hints)
	}
	for i, h := range hints {
		if got := h.Key + " " + h.Description; got != want[i] {
			t.Errorf("hint %d = %q, want %q", i, got, want[i])
		}
	}
}
