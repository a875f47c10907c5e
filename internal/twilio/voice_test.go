package twilio

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/matheus3301/smsdash/internal/config"
)

func voiceClient(t *testing.T, now time.Time) *Client {
	t.Helper()
	c, err := NewClient(config.Twilio{
		AccountSID: "AC123",
		Phone:      "+15550000000",
		APIKey:     "SK456",
		APISecret:  "shh",
		AppSID:     "AP789",
	}, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestVoiceToken(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := voiceClient(t, now)

	signed, err := c.VoiceToken("browser_user", 0)
	if err != nil {
		t.Fatalf("VoiceToken() error = %v", err)
	}

	tok, err := jwt.Parse(signed, func(tok *jwt.Token) (any, error) {
		return []byte("shh"), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if cty := tok.Header["cty"]; cty != "twilio-fpa;v=1" {
		t.Errorf("cty = %v", cty)
	}

	claims := tok.Claims.(jwt.MapClaims)
	if claims["iss"] != "SK456" || claims["sub"] != "AC123" {
		t.Errorf("iss/sub = %v/%v", claims["iss"], claims["sub"])
	}
	if !strings.HasPrefix(claims["jti"].(string), "SK456-") {
		t.Errorf("jti = %v", claims["jti"])
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || !exp.Equal(now.Add(DefaultTokenTTL)) {
		t.Errorf("exp = %v, %v", exp, err)
	}

	grants := claims["grants"].(map[string]any)
	if grants["identity"] != "browser_user" {
		t.Errorf("identity = %v", grants["identity"])
	}
	voice := grants["voice"].(map[string]any)
	if voice["outgoing"].(map[string]any)["application_sid"] != "AP789" {
		t.Errorf("outgoing = %v", voice["outgoing"])
	}
	if voice["incoming"].(map[string]any)["allow"] != true {
		t.Errorf("incoming = %v", voice["incoming"])
	}
}

func TestVoiceTokenDisabled(t *testing.T) {
	c, err := NewClient(config.Twilio{AccountSID: "AC123"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.VoiceToken("browser_user", time.Minute); !errors.Is(err, ErrVoiceDisabled) {
		t.Fatalf("error = %v, want ErrVoiceDisabled", err)
	}
}

func TestDialTwiML(t *testing.T) {
	c := voiceClient(t, time.Now())

	got, err := c.DialTwiML("+15551234567")
	if err != nil {
		t.Fatalf("DialTwiML() error = %v", err)
	}
	want := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<Response><Dial callerId="+15550000000">+15551234567</Dial></Response>`
	if string(got) != want {
		t.Errorf("DialTwiML() =\n%s\nwant\n%s", got, want)
	}
}

func TestDialTwiMLEscapes(t *testing.T) {
	c := voiceClient(t, time.Now())
	got, err := c.DialTwiML("<Hangup/>")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(got), "<Hangup/>") {
		t.Errorf("number was not escaped: %s", got)
	}
}
