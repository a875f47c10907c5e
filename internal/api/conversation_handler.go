package api

import (
	"context"
	"net/http"

	"github.com/matheus3301/smsdash/internal/conversation"
	"go.uber.org/zap"
)

// Conversations is the conversation service as seen by the HTTP layer.
type Conversations interface {
	Load(ctx context.Context) ([]conversation.Conversation, error)
	SendSMS(ctx context.Context, to, body string) (conversation.Message, error)
	SaveContact(ctx context.Context, c conversation.NewContact) (conversation.ContactRecord, error)
}

// ConversationHandler serves the conversation list, outbound SMS and
// contact registration.
type ConversationHandler struct {
	svc    Conversations
	logger *zap.Logger
}

// NewConversationHandler creates a handler over svc.
func NewConversationHandler(svc Conversations, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{svc: svc, logger: logger}
}

// List handles GET /api/conversations.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	convs, err := h.svc.Load(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, convs)
}

// SendSMSRequest is the body of POST /api/send_sms. Body is accepted as an
// alias of Text.
type SendSMSRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
	Body string `json:"body,omitempty"`
}

// SendSMS handles POST /api/send_sms.
func (h *ConversationHandler) SendSMS(w http.ResponseWriter, r *http.Request) {
	var req SendSMSRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	text := req.Text
	if text == "" {
		text = req.Body
	}
	msg, err := h.svc.SendSMS(r.Context(), req.To, text)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// SaveContactRequest is the body of POST /api/save_contact.
type SaveContactRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	ShootDate string `json:"shoot_date,omitempty"`
}

// SaveContact handles POST /api/save_contact.
func (h *ConversationHandler) SaveContact(w http.ResponseWriter, r *http.Request) {
	var req SaveContactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	rec, err := h.svc.SaveContact(r.Context(), conversation.NewContact{
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		ShootDate: req.ShootDate,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
