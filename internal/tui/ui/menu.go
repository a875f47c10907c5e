package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rivo/tview"
)

// MenuRows is the number of hint lines the menu fills before starting a new
// column.
const MenuRows = 5

// Menu displays keyboard shortcut hints in columns.
type Menu struct {
	*tview.TextView
	theme *Theme
}

// NewMenu creates a new menu hint bar.
func NewMenu(theme *Theme) *Menu {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 2, 0)

	return &Menu{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders hints top to bottom, then left to right.
func (m *Menu) Update(hints []MenuHint) {
	m.Clear()
	_, _ = fmt.Fprint(m, m.layout(hints))
}

func (m *Menu) layout(hints []MenuHint) string {
	keyColor := ColorName(m.theme.MenuKeyColor)
	numColor := ColorName(m.theme.NumericKeyColor)

	cols := (len(hints) + MenuRows - 1) / MenuRows
	widths := make([]int, cols)
	for i, h := range hints {
		widths[i/MenuRows] = max(widths[i/MenuRows], hintWidth(h))
	}

	lines := make([]string, min(len(hints), MenuRows))
	for i, h := range hints {
		kc := keyColor
		if h.Numeric {
			kc = numColor
		}
		cell := fmt.Sprintf("[%s::b]<%s>[-:-:-] %s", kc, tview.Escape(h.Key), h.Description)
		if col := i / MenuRows; col < cols-1 {
			cell += strings.Repeat(" ", widths[col]-hintWidth(h)+2)
		}
		lines[i%MenuRows] += cell
	}
	return strings.Join(lines, "\n")
}

func hintWidth(h MenuHint) int {
	return utf8.RuneCountInString(h.Key) + 3 + utf8.RuneCountInString(h.Description)
}
