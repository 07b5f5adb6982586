package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/jobboard/internal/tui/ui"
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

type helpSection struct {
	title string
	keys  [][2]string
}

var helpSections = []helpSection{
	{"Global Keys", [][2]string{
		{":", "Command mode"},
		{"/", "Filter conversations"},
		{"?", "Help"},
		{"Esc", "Cancel / Go back"},
		{"q", "Quit"},
	}},
	{"Conversation List", [][2]string{
		{"Enter", "Open conversation"},
		{"1-9", "Open Nth conversation"},
		{"0", "Clear filter"},
		{"j/k", "Move down / up"},
	}},
	{"Message Thread", [][2]string{
		{"i", "Focus composer"},
		{"Enter", "Send draft and staged file (in composer)"},
		{"d", "Conversation details"},
		{"t", "Pick a message template"},
	}},
	{"Commands", [][2]string{
		{":new <user> [job]", "Start or reopen a conversation"},
		{":search <query>", "Search your messages"},
		{":attach <path>", "Stage a file for the next message"},
		{":detach", "Drop the staged file"},
		{":template <id>", "Fill the composer from a template"},
		{":help, :h", "Show this help"},
		{":quit, :q", "Quit"},
	}},
}

func (hv *HelpView) render() {
	kc := ui.Tag(hv.theme.MenuKeyColor)

	var b strings.Builder
	for _, sec := range helpSections {
		fmt.Fprintf(&b, "\n  [::b]%s[-:-:-]\n\n", sec.title)
		for _, k := range sec.keys {
			fmt.Fprintf(&b, "  [%s]%-20s[-:-:-] %s\n", kc, tview.Escape(k[0]), k[1])
		}
	}
	_, _ = fmt.Fprint(hv, b.String())
}
