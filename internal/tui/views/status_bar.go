package views

import (
	"fmt"
	"time"

	"github.com/matheus3301/smsdash/internal/tui/model"
	"github.com/matheus3301/smsdash/internal/tui/ui"
	"github.com/rivo/tview"
)

// StatusBar displays the profile, gateway state and the current flash.
type StatusBar struct {
	*tview.TextView
	theme   *ui.Theme
	profile string
	state   string
	loading bool
	flash   *model.FlashMessage
	now     func() time.Time
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv, theme: theme, now: time.Now}
}

// SetProfile updates the profile name display.
func (sb *StatusBar) SetProfile(name string) {
	sb.profile = name
	sb.render()
}

// SetState updates the gateway state display.
func (sb *StatusBar) SetState(state string) {
	sb.state = state
	sb.render()
}

// SetLoading toggles the refresh indicator.
func (sb *StatusBar) SetLoading(loading bool) {
	sb.loading = loading
	sb.render()
}

// SetFlash sets the message shown after the status; nil clears it.
func (sb *StatusBar) SetFlash(msg *model.FlashMessage) {
	sb.flash = msg
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	loadIcon := " "
	if sb.loading {
		loadIcon = "[green]~[-]"
	}
	state := sb.state
	if state == "" {
		state = "CONNECTING"
	}

	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s %s | %s",
		tview.Escape(sb.profile), state, loadIcon, sb.now().Format("15:04"))
	if sb.flash != nil {
		line += fmt.Sprintf(" | [%s]%s[-]", sb.flashColor(sb.flash.Level), tview.Escape(sb.flash.Text))
	}

	_, _ = fmt.Fprint(sb, line)
}

func (sb *StatusBar) flashColor(level model.FlashLevel) string {
	switch level {
	case model.FlashWarn:
		return ui.ColorName(sb.theme.FlashWarnColor)
	case model.FlashErr:
		return ui.ColorName(sb.theme.FlashErrColor)
	default:
		return ui.ColorName(sb.theme.FlashInfoColor)
	}
}
