package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// Crumbs is the footer trail of open pages, root first.
type Crumbs struct {
	*tview.TextView
	theme *Theme
}

// NewCrumbs creates the footer trail.
func NewCrumbs(theme *Theme) *Crumbs {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	tv.SetBackgroundColor(theme.BgColor)
	return &Crumbs{TextView: tv, theme: theme}
}

// Update redraws the trail. The last name is the page in front.
func (c *Crumbs) Update(names []string) {
	c.Clear()
	if len(names) == 0 {
		return
	}
	active := fmt.Sprintf("[%s:%s:b]", Tag(c.theme.CrumbActiveFg), Tag(c.theme.CrumbActiveBg))
	inactive := fmt.Sprintf("[%s:%s:]", Tag(c.theme.CrumbInactiveFg), Tag(c.theme.CrumbInactiveBg))

	var b strings.Builder
	for i, name := range names {
		style := inactive
		if i == len(names)-1 {
			style = active
		}
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s <%s> [-:-:-]", style, tview.Escape(strings.ToLower(name)))
	}
	_, _ = fmt.Fprint(c, b.String())
}
