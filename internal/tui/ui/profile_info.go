package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// ProfileData is the gateway summary shown in the header.
type ProfileData struct {
	Profile       string
	Gateway       string
	State         string
	LastError     string
	LastLoad      time.Time
	Conversations int
	Unregistered  int
}

// ProfileInfo displays the active profile and gateway health in the header.
type ProfileInfo struct {
	*tview.TextView
	theme *Theme
}

// NewProfileInfo creates a new profile info panel.
func NewProfileInfo(theme *Theme) *ProfileInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &ProfileInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders data, measuring the last load age against now.
func (pi *ProfileInfo) Update(data *ProfileData, now time.Time) {
	pi.Clear()
	if data == nil {
		return
	}

	fgColor := ColorName(pi.theme.FgColor)
	counterColor := ColorName(pi.theme.CounterColor)

	state := data.State
	if state == "" {
		state = "-"
	}
	if data.LastError != "" {
		state += " (" + tview.Escape(data.LastError) + ")"
	}

	lastLoad := "-"
	if !data.LastLoad.IsZero() {
		lastLoad = formatAge(now.Sub(data.LastLoad)) + " ago"
	}

	text := fmt.Sprintf(
		"[%s::b]Profile:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]Gateway:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]State:[-:-:-]   [%s]%s[-]\n"+
			"[%s::b]Loaded:[-:-:-]  [%s]%s[-]\n"+
			"[%s::b]Convos:[-:-:-]  [%s]%d (%d unsaved)[-]",
		fgColor, counterColor, tview.Escape(data.Profile),
		fgColor, counterColor, tview.Escape(data.Gateway),
		fgColor, counterColor, state,
		fgColor, counterColor, lastLoad,
		fgColor, counterColor, data.Conversations, data.Unregistered,
	)

	_, _ = fmt.Fprint(pi, text)
}

func formatAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
