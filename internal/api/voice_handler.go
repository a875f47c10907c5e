package api

import (
	"encoding/json"
	"mime"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// BrowserIdentity is the client identity embedded in voice tokens.
const BrowserIdentity = "browser_user"

// Voice issues browser call tokens and the TwiML that places the call.
type Voice interface {
	VoiceToken(identity string, ttl time.Duration) (string, error)
	DialTwiML(to string) ([]byte, error)
}

// VoiceHandler serves the browser calling endpoints.
type VoiceHandler struct {
	voice  Voice
	logger *zap.Logger
}

// NewVoiceHandler creates a handler over v.
func NewVoiceHandler(v Voice, logger *zap.Logger) *VoiceHandler {
	return &VoiceHandler{voice: v, logger: logger}
}

// Token handles GET /api/token.
func (h *VoiceHandler) Token(w http.ResponseWriter, r *http.Request) {
	token, err := h.voice.VoiceToken(BrowserIdentity, 0)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Dial handles POST /api/voice. Twilio posts the callee as a form field;
// a JSON body with the same key is accepted too.
func (h *VoiceHandler) Dial(w http.ResponseWriter, r *http.Request) {
	to := r.FormValue("To")
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "application/json" {
		var body struct {
			To string `json:"To"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			to = body.To
		}
	}
	twiml, err := h.voice.DialTwiML(to)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(twiml)
}
