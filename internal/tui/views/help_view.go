package views

import (
	"fmt"

	"github.com/matheus3301/smsdash/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpView displays key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	hv.render()
	return hv
}

// Name implements Component.
func (hv *HelpView) Name() string { return "Help" }

// Hints implements Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (hv *HelpView) render() {
	kc := ui.ColorName(hv.theme.MenuKeyColor)
	key := func(k string) string { return fmt.Sprintf("[%s]%s[-:-:-]", kc, tview.Escape(k)) }

	_, _ = fmt.Fprintf(hv, `
  [::b]Global Keys[-:-:-]

  %s      Command mode        %s    Cancel / Go back
  %s      Filter mode         %s      Help
  %s      Refresh now         %s      Quit
  %s Quit immediately

  [::b]Conversation List[-:-:-]

  %s  Open conversation   %s      Show all (clear filter)
  %s    Jump to Nth row     %s Move

  [::b]Conversation[-:-:-]

  %s      Focus composer      %s      Show details and QR code
  %s      Save number as a contact (unsaved numbers only)
  %s  Send SMS (in composer)

  [::b]Commands (: mode)[-:-:-]

  %s   Save the open number as a contact
  %s          Open a conversation by phone
  %s          Reload conversations
  %s / %s       Show this help
  %s / %s       Quit application
`,
		key(":"), key("Esc"),
		key("/"), key("?"),
		key("r"), key("q"),
		key("Ctrl-C"),
		key("Enter"), key("0"),
		key("1-9"), key("j/k"),
		key("i"), key("d"),
		key("a"),
		key("Enter"),
		key(":save <name>"),
		key(":open <phone>"),
		key(":refresh"),
		key(":help"), key(":h"),
		key(":quit"), key(":q"),
	)
}
