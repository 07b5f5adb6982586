package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/jobboard/internal/messaging"
	"github.com/matheus3301/jobboard/internal/store"
	"github.com/matheus3301/jobboard/internal/tui/ui"
	"github.com/rivo/tview"
)

// MessageThread displays messages and a composer for a single conversation.
type MessageThread struct {
	*tview.Flex
	theme    *ui.Theme
	selfID   string
	messages *tview.TextView
	composer *tview.InputField
	title    string
	onSend   func(text string)
	onChange func(text string)
}

// NewMessageThread creates a new message thread view for selfID.
func NewMessageThread(theme *ui.Theme, selfID string) *MessageThread {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitle(" Messages ")
	messages.SetTitleColor(theme.TitleColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Compose (i to focus) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(composer, 3, 0, false)

	mt := &MessageThread{
		Flex:     flex,
		theme:    theme,
		selfID:   selfID,
		messages: messages,
		composer: composer,
	}

	composer.SetChangedFunc(func(text string) {
		if mt.onChange != nil {
			mt.onChange(text)
		}
	})
	// Empty text is still submitted: a staged attachment may go alone.
	composer.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && mt.onSend != nil {
			mt.onSend(composer.GetText())
		}
	})

	return mt
}

// Name implements Component.
func (mt *MessageThread) Name() string {
	if mt.title != "" {
		return mt.title
	}
	return "Messages"
}

// Hints implements Component.
func (mt *MessageThread) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Compose"},
		{Key: "d", Description: "Details"},
		{Key: "t", Description: "Templates"},
		{Key: "Esc", Description: "Back"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
	}
}

// SetOnSend sets the callback when Enter is pressed in the composer.
func (mt *MessageThread) SetOnSend(fn func(text string)) {
	mt.onSend = fn
}

// SetOnChange sets the callback for every composer edit.
func (mt *MessageThread) SetOnChange(fn func(text string)) {
	mt.onChange = fn
}

// Reset clears the view before another conversation opens.
func (mt *MessageThread) Reset() {
	mt.title = ""
	mt.messages.Clear()
	mt.messages.SetTitle(" Loading… ")
	mt.composer.SetText("")
}

// Update renders the thread state. scroll moves to the newest message.
func (mt *MessageThread) Update(v messaging.ThreadView, scroll bool) {
	switch v.State {
	case messaging.ThreadLoading:
		mt.messages.SetTitle(" Loading… ")
		return
	case messaging.ThreadNotFound:
		mt.showNotice("Conversation not found")
		return
	case messaging.ThreadForbidden:
		mt.showNotice("You are not a participant of this conversation")
		return
	case messaging.ThreadFailed:
		mt.showNotice("Could not load this conversation")
		return
	}

	mt.title = v.Other.Name
	if v.JobTitle != "" {
		mt.title += " · " + v.JobTitle
	}
	mt.messages.SetTitle(fmt.Sprintf(" %s ", tview.Escape(sanitizeForTerminal(mt.title))))

	mt.messages.Clear()
	for _, m := range v.Messages {
		_, _ = fmt.Fprint(mt.messages, mt.formatMessage(m, v.Other.Name))
	}

	if mt.composer.GetText() != v.Draft {
		mt.composer.SetText(v.Draft)
	}
	if v.Staged != nil {
		mt.composer.SetTitle(fmt.Sprintf(" Compose 📎 %s ", tview.Escape(v.Staged.Name)))
	} else {
		mt.composer.SetTitle(" Compose (i to focus) ")
	}

	if scroll {
		mt.messages.ScrollToEnd()
	}
}

func (mt *MessageThread) showNotice(text string) {
	mt.title = ""
	mt.messages.Clear()
	mt.messages.SetTitle(" Messages ")
	_, _ = fmt.Fprintf(mt.messages, "\n  [%s]%s[-]", ui.Tag(mt.theme.FlashWarnColor), text)
}

func (mt *MessageThread) formatMessage(m store.Message, otherName string) string {
	sender := otherName
	senderColor := ui.Tag(mt.theme.FgColor)
	tick := ""
	if m.SenderID == mt.selfID {
		sender = "You"
		senderColor = ui.Tag(mt.theme.OwnMessageColor)
		tick = " ✓"
		if m.Read {
			tick = fmt.Sprintf(" [%s]✓✓[-]", ui.Tag(mt.theme.ReadTickColor))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s::b]%s[-:-:-] [::d]%s[-:-:-]%s\n",
		senderColor, tview.Escape(sanitizeForTerminal(sender)), formatTimestamp(m.Timestamp), tick)
	if m.HasAttachment() {
		fmt.Fprintf(&b, "[%s]📎 %s[-] [::d]%s %s[-:-:-]\n",
			ui.Tag(mt.theme.AttachmentColor),
			tview.Escape(sanitizeForTerminal(m.AttachmentName)),
			m.AttachmentType, tview.Escape(m.AttachmentURL))
	}
	if m.Content != "" {
		b.WriteString(tview.Escape(sanitizeForTerminal(m.Content)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// Messages returns the messages text view (for focus management).
func (mt *MessageThread) Messages() *tview.TextView {
	return mt.messages
}

// Composer returns the composer input field (for focus management).
func (mt *MessageThread) Composer() *tview.InputField {
	return mt.composer
}
