package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/smsdash/internal/conversation"
	"github.com/matheus3301/smsdash/internal/tui/ui"
	"github.com/rivo/tview"
)

// ConversationList is the main conversation table.
type ConversationList struct {
	*tview.Table
	theme  *ui.Theme
	convs  []conversation.Conversation
	filter string
	now    func() time.Time
}

// NewConversationList creates a new conversation list table.
func NewConversationList(theme *ui.Theme) *ConversationList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" Conversations ")
	table.SetTitleColor(theme.TitleColor)

	return &ConversationList{
		Table: table,
		theme: theme,
		now:   time.Now,
	}
}

// Name implements Component.
func (cl *ConversationList) Name() string { return "Conversations" }

// Hints implements Component.
func (cl *ConversationList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "0", Description: "Clear filter", Numeric: true},
		{Key: "1-9", Description: "Jump", Numeric: true},
	}
}

// Update replaces the listed conversations, keeping the cursor on the same
// phone when it is still visible.
func (cl *ConversationList) Update(convs []conversation.Conversation) {
	current := cl.SelectedPhone()
	cl.convs = convs
	cl.render()
	if current != "" {
		cl.SelectPhone(current)
	}
}

// SetFilter sets the active filter text and re-renders.
func (cl *ConversationList) SetFilter(filter string) {
	cl.filter = filter
	cl.render()
}

// ClearFilter clears the active filter.
func (cl *ConversationList) ClearFilter() {
	cl.filter = ""
	cl.render()
}

// Filter returns the active filter text.
func (cl *ConversationList) Filter() string { return cl.filter }

func (cl *ConversationList) visible() []conversation.Conversation {
	if cl.filter == "" {
		return cl.convs
	}
	var out []conversation.Conversation
	for _, c := range cl.convs {
		if matchesFilter(c, cl.filter) {
			out = append(out, c)
		}
	}
	return out
}

// matchesFilter reports whether the name, phone or last message body
// contains filter, ignoring case.
func matchesFilter(c conversation.Conversation, filter string) bool {
	f := strings.ToLower(filter)
	if strings.Contains(strings.ToLower(c.DisplayName()), f) || strings.Contains(c.Phone, filter) {
		return true
	}
	return c.LastMessage != nil && strings.Contains(strings.ToLower(c.LastMessage.Body), f)
}

func (cl *ConversationList) render() {
	cl.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" ", 0},
		{" NAME", 1},
		{" PHONE", 0},
		{" LAST MESSAGE", 2},
		{" TIME", 0},
	}
	for col, h := range headers {
		cell := tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg).
			SetBackgroundColor(cl.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp)
		cl.SetCell(0, col, cell)
	}

	rows := cl.visible()
	now := cl.now()
	for i, c := range rows {
		row := i + 1
		marker, markerColor := " ●", cl.theme.RegisteredColor
		if !c.IsRegistered {
			marker, markerColor = " ?", cl.theme.UnknownColor
		}
		preview := ""
		if c.LastMessage != nil {
			preview = c.LastMessage.Body
		}

		cl.SetCell(row, 0, tview.NewTableCell(marker).SetTextColor(markerColor))
		cl.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(c.DisplayName()))).SetExpansion(1).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 2, tview.NewTableCell(" "+tview.Escape(c.Phone)).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 3, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(singleLine(preview)))).SetExpansion(2).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 4, tview.NewTableCell(formatTimestamp(c.LastMessageTimestamp, now)).SetTextColor(cl.theme.FgColor).SetAlign(tview.AlignRight))
	}

	if cl.filter != "" {
		cl.SetTitle(fmt.Sprintf(" Conversations (%d/%d) filter: %s ", len(rows), len(cl.convs), tview.Escape(cl.filter)))
	} else {
		cl.SetTitle(fmt.Sprintf(" Conversations (%d) ", len(cl.convs)))
	}
}

// SelectedPhone returns the phone of the row under the cursor.
func (cl *ConversationList) SelectedPhone() string {
	row, _ := cl.GetSelection()
	return cl.PhoneByIndex(row)
}

// PhoneByIndex returns the phone of the Nth visible conversation (1-based).
func (cl *ConversationList) PhoneByIndex(n int) string {
	rows := cl.visible()
	if n < 1 || n > len(rows) {
		return ""
	}
	return rows[n-1].Phone
}

// SelectPhone moves the cursor to phone if it is visible.
func (cl *ConversationList) SelectPhone(phone string) bool {
	for i, c := range cl.visible() {
		if c.Phone == phone {
			cl.Select(i+1, 0)
			return true
		}
	}
	return false
}

// formatTimestamp renders a unix millisecond time as HH:MM for today and
// MM/DD otherwise. Zero means no messages.
func formatTimestamp(ms int64, now time.Time) string {
	if ms == 0 {
		return ""
	}
	t := time.UnixMilli(ms).In(now.Location())
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
