package views

import (
	"fmt"

	"github.com/matheus3301/jobboard/internal/messaging"
	"github.com/matheus3301/jobboard/internal/tui/ui"
	"github.com/rivo/tview"
)

// ConversationInfo displays the other participant and the job of the open
// conversation.
type ConversationInfo struct {
	*tview.TextView
	theme  *ui.Theme
	selfID string
}

// NewConversationInfo creates a new conversation info view.
func NewConversationInfo(theme *ui.Theme, selfID string) *ConversationInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Conversation Details ")
	tv.SetTitleColor(theme.TitleColor)

	return &ConversationInfo{
		TextView: tv,
		theme:    theme,
		selfID:   selfID,
	}
}

// Name implements Component.
func (ci *ConversationInfo) Name() string { return "Details" }

// Hints implements Component.
func (ci *ConversationInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
	}
}

// Update renders conversation details.
func (ci *ConversationInfo) Update(v messaging.ThreadView) {
	ci.Clear()
	if v.Conversation == nil {
		return
	}

	fg := ui.Tag(ci.theme.FgColor)
	ct := ui.Tag(ci.theme.CounterColor)

	orDash := func(s string) string {
		if s == "" {
			return "-"
		}
		return tview.Escape(sanitizeForTerminal(s))
	}
	lastActive := formatTimestamp(v.Conversation.LastMessageTimestamp)

	text := fmt.Sprintf(
		"\n [%s::b]Name:[-:-:-]         [%s]%s[-]\n"+
			" [%s::b]Role:[-:-:-]         [%s]%s[-]\n"+
			" [%s::b]Email:[-:-:-]        [%s]%s[-]\n"+
			" [%s::b]Job:[-:-:-]          [%s]%s[-]\n"+
			" [%s::b]Messages:[-:-:-]     [%s]%d[-]\n"+
			" [%s::b]Unread (you):[-:-:-] [%s]%d[-]\n"+
			" [%s::b]Last Active:[-:-:-]  [%s]%s[-]\n"+
			" [%s::b]Conversation:[-:-:-] [%s]%s[-]",
		fg, ct, orDash(v.Other.Name),
		fg, ct, orDash(v.Other.Role),
		fg, ct, orDash(v.Other.Email),
		fg, ct, orDash(v.JobTitle),
		fg, ct, len(v.Messages),
		fg, ct, v.Conversation.UnreadCount[ci.selfID],
		fg, ct, orDash(lastActive),
		fg, ct, v.Conversation.ID,
	)

	_, _ = fmt.Fprint(ci, text)
	ci.SetTitle(fmt.Sprintf(" %s Details ", orDash(v.Other.Name)))
}
