package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/smsdash/internal/bus"
	"github.com/matheus3301/smsdash/internal/config"
	"github.com/matheus3301/smsdash/internal/conversation"
	"github.com/matheus3301/smsdash/internal/lock"
	"github.com/matheus3301/smsdash/internal/profile"
	"github.com/matheus3301/smsdash/internal/status"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zaptest"
)

const self = "+15550000000"

// fakeUpstreams serves one Twilio message page and one Airtable page.
func fakeUpstreams(t *testing.T) (twilioURL, airtableURL string) {
	t.Helper()
	tw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = fmt.Fprintf(w, `{"sid":"SMnew","from":%q,"to":"+15551111111","body":"hi","status":"queued","date_created":"Fri, 01 Mar 2024 13:00:00 +0000"}`, self)
			return
		}
		_, _ = fmt.Fprintf(w, `{"messages":[
			{"sid":"SM1","from":"+15551111111","to":%q,"body":"hello","date_created":"Fri, 01 Mar 2024 12:00:00 +0000"},
			{"sid":"SM2","from":%q,"to":"+15552222222","body":"yo","date_created":"Fri, 01 Mar 2024 12:30:00 +0000"}
		],"next_page_uri":null}`, self, self)
	}))
	t.Cleanup(tw.Close)
	at := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"records":[{"id":"rec1","createdTime":"2024-01-01T00:00:00.000Z","fields":{"Name":"Ann","Phone":"+15551111111"}}]}`))
	}))
	t.Cleanup(at.Close)
	return tw.URL, at.URL
}

func testParams(t *testing.T) Params {
	t.Helper()
	t.Setenv(profile.HomeEnv, t.TempDir())
	twURL, atURL := fakeUpstreams(t)
	var cfg *config.Config
	p := cfg.Profile("test")
	p.Server.Addr = "127.0.0.1:0"
	p.Twilio = config.Twilio{AccountSID: "AC1", AuthToken: "tok", Phone: self, BaseURL: twURL}
	p.Airtable = config.Airtable{Token: "pat", BaseID: "app1", TableID: "tbl1", BaseURL: atURL}
	return Params{ProfileName: "test", Profile: p, Probe: true}
}

func TestGatewayLifecycle(t *testing.T) {
	var (
		srv     *Server
		machine *status.Machine
	)
	app := fxtest.New(t, Module(testParams(t)), fx.NopLogger, fx.Populate(&srv, &machine))
	app.RequireStart()

	// The startup probe should bring the gateway to READY.
	deadline := time.Now().Add(5 * time.Second)
	for machine.Current() != status.Ready {
		if time.Now().After(deadline) {
			t.Fatalf("state = %s, want READY", machine.Current())
		}
		time.Sleep(10 * time.Millisecond)
	}

	holder, err := lock.ReadHolder(profile.Dir("test"))
	if err != nil {
		t.Fatalf("ReadHolder() error = %v", err)
	}
	if holder.Addr != srv.Addr() {
		t.Errorf("lock addr = %q, want %q", holder.Addr, srv.Addr())
	}

	resp, err := http.Get("http://" + srv.Addr() + "/api/conversations")
	if err != nil {
		t.Fatalf("GET conversations: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var convs []conversation.Conversation
	if err := json.NewDecoder(resp.Body).Decode(&convs); err != nil {
		t.Fatal(err)
	}
	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2", len(convs))
	}
	if convs[0].Phone != "+15552222222" || convs[0].IsRegistered {
		t.Errorf("convs[0] = %s registered=%v, want unregistered +15552222222", convs[0].Phone, convs[0].IsRegistered)
	}
	if convs[1].Phone != "+15551111111" || !convs[1].IsRegistered {
		t.Errorf("convs[1] = %s registered=%v, want registered +15551111111", convs[1].Phone, convs[1].IsRegistered)
	}

	body := strings.NewReader(`{"to":"+15551111111","text":"hi"}`)
	resp2, err := http.Post("http://"+srv.Addr()+"/api/send_sms", "application/json", body)
	if err != nil {
		t.Fatalf("POST send_sms: %v", err)
	}
	_ = resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("send_sms status = %d", resp2.StatusCode)
	}

	app.RequireStop()

	if machine.Current() != status.Stopped {
		t.Errorf("state after stop = %s, want STOPPED", machine.Current())
	}
	if _, err := lock.ReadHolder(profile.Dir("test")); !errors.Is(err, lock.ErrNotHeld) {
		t.Errorf("ReadHolder() after stop error = %v, want ErrNotHeld", err)
	}
}

func TestSecondGatewayRefused(t *testing.T) {
	p := testParams(t)
	p.Probe = false

	first := fxtest.New(t, Module(p), fx.NopLogger)
	first.RequireStart()
	defer first.RequireStop()

	second := fx.New(Module(p), fx.NopLogger)
	err := second.Err()
	if err == nil {
		t.Fatal("second gateway on the same profile should fail")
	}
	if !strings.Contains(err.Error(), "profile lock held") {
		t.Errorf("error = %v, want lock held", err)
	}
}

func TestAuthTokenProtectsRoutes(t *testing.T) {
	p := testParams(t)
	p.Probe = false
	p.Profile.Server.APIToken = "s3cret"

	var srv *Server
	app := fxtest.New(t, Module(p), fx.NopLogger, fx.Populate(&srv))
	app.RequireStart()
	defer app.RequireStop()

	resp, err := http.Get("http://" + srv.Addr() + "/api/conversations")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}

	resp, err = http.Get("http://" + srv.Addr() + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}
}

func TestEventLoggerStartStop(t *testing.T) {
	b := bus.New()
	e := NewEventLogger(b, zaptest.NewLogger(t))
	e.Start(context.Background())
	if b.Subscribers() != 1 {
		t.Fatalf("Subscribers() = %d, want 1", b.Subscribers())
	}

	b.Publish(bus.NewEvent(bus.KindStatusChanged, status.StatusChange{From: status.Booting, To: status.Ready}))
	b.Publish(bus.NewEvent(bus.KindConversationsLoaded, bus.LoadStats{Messages: 3}))
	b.Publish(bus.NewEvent(bus.KindSMSFailed, "+1"))
	b.Publish(bus.NewEvent("other", 42))

	e.Stop()
	if b.Subscribers() != 0 {
		t.Errorf("Subscribers() after Stop = %d, want 0", b.Subscribers())
	}
}
