package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/jobboard/internal/store"
	"github.com/matheus3301/jobboard/internal/tui/ui"
	"github.com/rivo/tview"
)

// TemplatePicker lists the user's message templates with a preview of the
// filled-in body.
type TemplatePicker struct {
	*tview.Table
	theme     *ui.Theme
	templates []store.MessageTemplate
}

// NewTemplatePicker creates a new template table.
func NewTemplatePicker(theme *ui.Theme) *TemplatePicker {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" Templates ")
	table.SetTitleColor(theme.TitleColor)
	return &TemplatePicker{Table: table, theme: theme}
}

// Name implements Component.
func (tp *TemplatePicker) Name() string { return "Templates" }

// Hints implements Component.
func (tp *TemplatePicker) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Use"},
		{Key: "Esc", Description: "Back"},
	}
}

// Update renders templates; preview fills placeholders for display.
func (tp *TemplatePicker) Update(templates []store.MessageTemplate, preview func(body string) string) {
	tp.templates = templates
	tp.Clear()
	for col, h := range []string{" TITLE", " PREVIEW"} {
		tp.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(tp.theme.TableHeaderFg).
			SetBackgroundColor(tp.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold))
	}
	for i, t := range templates {
		body := t.Body
		if preview != nil {
			body = preview(body)
		}
		row := i + 1
		tp.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(t.Title)).SetMaxWidth(30).SetTextColor(tp.theme.FgColor))
		tp.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(body))).SetExpansion(1).SetTextColor(tp.theme.FgColor))
	}
}

// Selected returns the ID of the selected template.
func (tp *TemplatePicker) Selected() string {
	row, _ := tp.GetSelection()
	if row < 1 || row > len(tp.templates) {
		return ""
	}
	return tp.templates[row-1].ID
}
