package twilio

import (
	"encoding/xml"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrVoiceDisabled is returned when the API key, secret or TwiML app SID
// is not configured.
var ErrVoiceDisabled = errors.New("voice calling is not configured")

// DefaultTokenTTL matches the lifetime Twilio's helper libraries use.
const DefaultTokenTTL = time.Hour

// VoiceToken issues a browser access token carrying a voice grant for the
// configured TwiML application.
func (c *Client) VoiceToken(identity string, ttl time.Duration) (string, error) {
	if !c.cfg.VoiceEnabled() {
		return "", ErrVoiceDisabled
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := c.now()
	claims := jwt.MapClaims{
		"jti": fmt.Sprintf("%s-%d", c.cfg.APIKey, now.Unix()),
		"iss": c.cfg.APIKey,
		"sub": c.cfg.AccountSID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"grants": map[string]any{
			"identity": identity,
			"voice": map[string]any{
				"incoming": map[string]any{"allow": true},
				"outgoing": map[string]any{"application_sid": c.cfg.AppSID},
			},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["cty"] = "twilio-fpa;v=1"

	signed, err := token.SignedString([]byte(c.cfg.APISecret))
	if err != nil {
		return "", fmt.Errorf("sign voice token: %w", err)
	}
	return signed, nil
}

type twimlResponse struct {
	XMLName xml.Name  `xml:"Response"`
	Dial    twimlDial `xml:"Dial"`
}

type twimlDial struct {
	CallerID string `xml:"callerId,attr"`
	Number   string `xml:",chardata"`
}

// DialTwiML renders the TwiML that bridges a browser call to the given
// number, presenting the account's own number as caller id.
func (c *Client) DialTwiML(to string) ([]byte, error) {
	body, err := xml.Marshal(twimlResponse{
		Dial: twimlDial{CallerID: c.cfg.Phone, Number: to},
	})
	if err != nil {
		return nil, fmt.Errorf("render twiml: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
