package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/jobboard/internal/messaging"
	"github.com/matheus3301/jobboard/internal/store"
	"github.com/matheus3301/jobboard/internal/tui/ui"
	"github.com/rivo/tview"
)

// ConversationList is the inbox table.
type ConversationList struct {
	*tview.Table
	theme  *ui.Theme
	selfID string
	convs  []store.Conversation
	filter string
}

// NewConversationList creates a new conversation list table for selfID.
func NewConversationList(theme *ui.Theme, selfID string) *ConversationList {
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
		Table:  table,
		theme:  theme,
		selfID: selfID,
	}
}

// Name implements Component.
func (cl *ConversationList) Name() string { return "Conversations" }

// Hints implements Component.
func (cl *ConversationList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "/", Description: "Filter"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
		{Key: "q", Description: "Quit"},
		{Key: "1-9", Description: "Jump", Numeric: true},
	}
}

// Update refreshes the list. convs must already be sorted newest first.
func (cl *ConversationList) Update(convs []store.Conversation) {
	selected := cl.SelectedConversation()
	cl.convs = convs
	cl.render()
	cl.reselect(selected)
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

// DisplayName is the other participant's denormalized name, or the role
// placeholder when the conversation has none yet.
func DisplayName(c *store.Conversation, selfID string) string {
	other := c.Other(selfID)
	if p, ok := c.ParticipantDetails[other]; ok && p.Name != "" {
		return p.Name
	}
	return messaging.PlaceholderName(c.ParticipantDetails[other].Role)
}

func (cl *ConversationList) visible() []store.Conversation {
	if cl.filter == "" {
		return cl.convs
	}
	var out []store.Conversation
	for _, c := range cl.convs {
		if containsFold(DisplayName(&c, cl.selfID), cl.filter) || containsFold(c.LastMessage, cl.filter) {
			out = append(out, c)
		}
	}
	return out
}

func (cl *ConversationList) render() {
	cl.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" NAME", 1},
		{" LAST MESSAGE", 2},
		{" TIME", 0},
		{" UNREAD", 0},
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
	for i, c := range rows {
		row := i + 1
		unread := c.UnreadCount[cl.selfID]
		fg := cl.theme.FgColor
		badge := ""
		if unread > 0 {
			fg = cl.theme.UnreadColor
			badge = fmt.Sprintf("%d", unread)
		}
		name := DisplayName(&c, cl.selfID)

		cl.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(name))).SetExpansion(1).SetTextColor(fg))
		cl.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(c.LastMessage))).SetExpansion(2).SetTextColor(fg))
		cl.SetCell(row, 2, tview.NewTableCell(formatTimestamp(c.LastMessageTimestamp)).SetTextColor(fg).SetAlign(tview.AlignRight))
		cl.SetCell(row, 3, tview.NewTableCell(badge).SetTextColor(cl.theme.UnreadColor).SetAlign(tview.AlignRight))
	}

	if cl.filter != "" {
		cl.SetTitle(fmt.Sprintf(" Conversations (%d/%d) filter: %s ", len(rows), len(cl.convs), tview.Escape(cl.filter)))
	} else {
		cl.SetTitle(fmt.Sprintf(" Conversations (%d) ", len(cl.convs)))
	}
}

func (cl *ConversationList) reselect(id string) {
	if id == "" {
		return
	}
	for i, c := range cl.visible() {
		if c.ID == id {
			cl.Select(i+1, 0)
			return
		}
	}
}

// SelectedConversation returns the ID of the currently selected row.
func (cl *ConversationList) SelectedConversation() string {
	row, _ := cl.GetSelection()
	return cl.ConversationByIndex(row)
}

// ConversationByIndex returns the ID of the Nth visible conversation (1-based).
func (cl *ConversationList) ConversationByIndex(n int) string {
	rows := cl.visible()
	if n < 1 || n > len(rows) {
		return ""
	}
	return rows[n-1].ID
}

func formatTimestamp(ms int64) string {
	if ms == 0 {
		return ""
	}
	t := time.UnixMilli(ms)
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
