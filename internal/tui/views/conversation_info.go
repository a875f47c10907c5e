package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheus3301/smsdash/internal/conversation"
	"github.com/matheus3301/smsdash/internal/tui/ui"
	"github.com/rivo/tview"
	qrcode "github.com/skip2/go-qrcode"
)

// ConversationInfo displays the contact record of a conversation and a QR
// code that opens an SMS to it on a phone.
type ConversationInfo struct {
	*tview.TextView
	theme *ui.Theme
	now   func() time.Time
}

// NewConversationInfo creates a new conversation info view.
func NewConversationInfo(theme *ui.Theme) *ConversationInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Conversation Details ")
	tv.SetTitleColor(theme.TitleColor)

	return &ConversationInfo{
		TextView: tv,
		theme:    theme,
		now:      time.Now,
	}
}

// Name implements Component.
func (ci *ConversationInfo) Name() string { return "Details" }

// Hints implements Component.
func (ci *ConversationInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

// Update renders the details of c.
func (ci *ConversationInfo) Update(c conversation.Conversation) {
	ci.Clear()

	fg := ui.ColorName(ci.theme.FgColor)
	ct := ui.ColorName(ci.theme.CounterColor)

	registered := fmt.Sprintf("[%s]no[-] (a to save)", ui.ColorName(ci.theme.UnknownColor))
	var email, shootDate, recordID string
	if c.Contact != nil {
		registered = fmt.Sprintf("[%s]yes[-]", ui.ColorName(ci.theme.RegisteredColor))
		email = c.Contact.Fields.Email
		shootDate = c.Contact.Fields.ShootDate
		recordID = c.Contact.ID
	}

	lastActive := formatTimestamp(c.LastMessageTimestamp, ci.now())
	lastBody := ""
	if c.LastMessage != nil {
		lastBody = singleLine(c.LastMessage.Body)
	}

	field := func(label, value string) string {
		if value == "" {
			value = "-"
		}
		return fmt.Sprintf(" [%s::b]%-13s[-:-:-] [%s]%s[-]\n", fg, label+":", ct, tview.Escape(sanitizeForTerminal(value)))
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(field("Name", c.DisplayName()))
	sb.WriteString(field("Phone", c.Phone))
	_, _ = fmt.Fprintf(&sb, " [%s::b]%-13s[-:-:-] %s\n", fg, "Saved:", registered)
	sb.WriteString(field("Email", email))
	sb.WriteString(field("Shoot Date", shootDate))
	sb.WriteString(field("Record", recordID))
	sb.WriteString(field("Messages", fmt.Sprint(len(c.Messages))))
	sb.WriteString(field("Last Active", lastActive))
	sb.WriteString(field("Last Message", lastBody))
	sb.WriteString("\n [::d]Scan to text this number:[-:-:-]\n\n")
	sb.WriteString(renderQR("sms:" + c.Phone))

	_, _ = fmt.Fprint(ci, sb.String())
	ci.SetTitle(fmt.Sprintf(" %s Details ", tview.Escape(sanitizeForTerminal(c.DisplayName()))))
	ci.ScrollToBeginning()
}

// renderQR converts content to a compact QR code using Unicode half-block
// characters, two bitmap rows per text line.
func renderQR(content string) string {
	qr, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "  (QR generation failed: " + err.Error() + ")"
	}

	bitmap := qr.Bitmap()
	rows := len(bitmap)
	cols := 0
	if rows > 0 {
		cols = len(bitmap[0])
	}

	var sb strings.Builder
	for y := 0; y < rows; y += 2 {
		sb.WriteString("  ")
		for x := 0; x < cols; x++ {
			top := bitmap[y][x]
			bot := y+1 < rows && bitmap[y+1][x]
			switch {
			case top && bot:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bot:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}
