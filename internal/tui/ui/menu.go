package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// menuRows is how many hints fit in one header column.
const menuRows = 6

// Menu shows the key hints of the page in front, laid out in columns.
type Menu struct {
	*tview.TextView
	theme *Theme
}

// NewMenu creates the header hint panel.
func NewMenu(theme *Theme) *Menu {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 2, 0)
	return &Menu{TextView: tv, theme: theme}
}

// Update redraws the hints. Numeric hints collapse into a single "<1-9>"
// entry so the jump keys do not crowd out the others.
func (m *Menu) Update(hints []MenuHint) {
	m.Clear()

	var cells []string
	numericDone := false
	for _, h := range hints {
		if h.Numeric {
			if numericDone {
				continue
			}
			numericDone = true
			cells = append(cells, m.cell(Tag(m.theme.NumericKeyColor), "1-9", h.Description))
			continue
		}
		cells = append(cells, m.cell(Tag(m.theme.MenuKeyColor), h.Key, h.Description))
	}
	if len(cells) == 0 {
		return
	}

	cols := (len(cells) + menuRows - 1) / menuRows
	width := 0
	for _, h := range hints {
		if w := len(h.Key) + len(h.Description) + 4; w > width {
			width = w
		}
	}
	var b strings.Builder
	for row := 0; row < menuRows && row < len(cells); row++ {
		for col := 0; col < cols; col++ {
			i := col*menuRows + row
			if i >= len(cells) {
				break
			}
			b.WriteString(cells[i])
			if col < cols-1 {
				b.WriteString(strings.Repeat(" ", max(1, width-visibleLen(cells[i]))))
			}
		}
		b.WriteString("\n")
	}
	_, _ = fmt.Fprint(m, b.String())
}

func (m *Menu) cell(color, key, desc string) string {
	return fmt.Sprintf("[%s::b]<%s>[-:-:-] %s", color, tview.Escape(key), tview.Escape(desc))
}

// visibleLen is the printed width of a cell, ignoring color tags.
func visibleLen(s string) int {
	return tview.TaggedStringWidth(s)
}
