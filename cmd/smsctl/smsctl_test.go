package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func fakeGateway(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/conversations":
			_, _ = w.Write([]byte(`[
				{"phone":"+2","contact":null,"messages":[{"from":"+2","to":"+1","body":"who is this","date_created":"x"}],
				 "last_message":{"from":"+2","to":"+1","body":"who is this","date_created":"x"},"lastMessageTimestamp":1709294400000,"is_registered":false,"is_selected":false},
				{"phone":"+3","contact":{"id":"rec1","createdTime":"x","fields":{"Name":"Ann","Phone":"+3"}},"messages":[],
				 "last_message":null,"lastMessageTimestamp":0,"is_registered":true,"is_selected":false}
			]`))
		case "/api/save_contact":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"contact already registered: +3"}`))
		case "/api/send_sms":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["text"] != "see you at noon" {
				t.Errorf("text = %q", body["text"])
			}
			_, _ = w.Write([]byte(`{"sid":"SM7","from":"+1","to":"+2","body":"see you at noon","status":"queued","date_created":"x"}`))
		case "/api/status":
			_, _ = w.Write([]byte(`{"state":"READY","changed_at":"2024-03-01T12:00:00Z"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SMSDASH_HOME", t.TempDir())
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConversationsTable(t *testing.T) {
	srv := fakeGateway(t)
	out, err := run(t, "--url", srv.URL, "conversations")
	if err != nil {
		t.Fatalf("conversations: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "NAME") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "who is this") || !strings.Contains(lines[1], "no") {
		t.Errorf("row 1 = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "Ann") {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestConversationsUnregisteredJSON(t *testing.T) {
	srv := fakeGateway(t)
	out, err := run(t, "--url", srv.URL, "--json", "conversations", "--unregistered")
	if err != nil {
		t.Fatalf("conversations: %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(got) != 1 || got[0]["phone"] != "+2" {
		t.Errorf("got %v", got)
	}
}

func TestSendJoinsText(t *testing.T) {
	srv := fakeGateway(t)
	out, err := run(t, "--url", srv.URL, "send", "+2", "see", "you", "at", "noon")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(out, "sent SM7 to +2") {
		t.Errorf("out = %q", out)
	}
}

func TestContactsAddConflict(t *testing.T) {
	srv := fakeGateway(t)
	_, err := run(t, "--url", srv.URL, "contacts", "add", "--name", "Ann", "--phone", "+3")
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("err = %v, want already registered", err)
	}
}

func TestContactsAddRequiresFlags(t *testing.T) {
	srv := fakeGateway(t)
	if _, err := run(t, "--url", srv.URL, "contacts", "add", "--name", "Ann"); err == nil {
		t.Fatal("missing --phone should fail")
	}
}

func TestStatus(t *testing.T) {
	srv := fakeGateway(t)
	out, err := run(t, "--url", srv.URL, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "READY") {
		t.Errorf("out = %q", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate = %q", got)
	}
}
