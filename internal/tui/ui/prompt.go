package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// PromptMode selects what a submitted prompt line means.
type PromptMode int

const (
	PromptCommand PromptMode = iota
	PromptFilter
)

const promptHistory = 50

// Prompt is the one-line input shown above the pages for ":" commands and
// "/" filters. Each mode keeps its own history, recalled with Up and Down.
type Prompt struct {
	*tview.InputField
	mode     PromptMode
	history  map[PromptMode][]string
	cursor   int
	onSubmit func(mode PromptMode, text string)
	onCancel func()
}

// NewPrompt creates a hidden prompt.
func NewPrompt(theme *Theme) *Prompt {
	input := tview.NewInputField()
	input.SetBorder(true)
	input.SetBorderColor(theme.PromptBorderColor)
	input.SetBackgroundColor(theme.BgColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)
	input.SetLabelColor(theme.MenuKeyColor)
	input.SetPlaceholderTextColor(theme.CrumbInactiveBg)

	p := &Prompt{
		InputField: input,
		history:    make(map[PromptMode][]string),
	}
	input.SetDoneFunc(p.done)
	input.SetInputCapture(p.recall)
	return p
}

// SetOnSubmit sets the callback for Enter on a non-empty line.
func (p *Prompt) SetOnSubmit(fn func(mode PromptMode, text string)) {
	p.onSubmit = fn
}

// SetOnCancel sets the callback for Esc.
func (p *Prompt) SetOnCancel(fn func()) {
	p.onCancel = fn
}

// Activate clears the line and switches to mode.
func (p *Prompt) Activate(mode PromptMode) {
	p.mode = mode
	p.cursor = len(p.history[mode])
	p.SetText("")
	switch mode {
	case PromptCommand:
		p.SetLabel(":")
		p.SetTitle(" Command ")
		p.SetPlaceholder("new <user> [job] | search <text> | attach <path> | template | help")
	case PromptFilter:
		p.SetLabel("/")
		p.SetTitle(" Filter ")
		p.SetPlaceholder("name or last message")
	}
}

// Mode returns the active mode.
func (p *Prompt) Mode() PromptMode {
	return p.mode
}

// History returns the submitted lines for mode, oldest first.
func (p *Prompt) History(mode PromptMode) []string {
	return append([]string(nil), p.history[mode]...)
}

func (p *Prompt) done(key tcell.Key) {
	switch key {
	case tcell.KeyEnter:
		text := p.GetText()
		p.SetText("")
		if text == "" {
			return
		}
		p.remember(text)
		if p.onSubmit != nil {
			p.onSubmit(p.mode, text)
		}
	case tcell.KeyEscape:
		p.SetText("")
		if p.onCancel != nil {
			p.onCancel()
		}
	}
}

func (p *Prompt) remember(text string) {
	h := p.history[p.mode]
	if n := len(h); n > 0 && h[n-1] == text {
		return
	}
	h = append(h, text)
	if len(h) > promptHistory {
		h = h[len(h)-promptHistory:]
	}
	p.history[p.mode] = h
}

func (p *Prompt) recall(ev *tcell.EventKey) *tcell.EventKey {
	h := p.history[p.mode]
	switch ev.Key() {
	case tcell.KeyUp:
		if p.cursor > 0 {
			p.cursor--
			p.SetText(h[p.cursor])
		}
		return nil
	case tcell.KeyDown:
		if p.cursor < len(h)-1 {
			p.cursor++
			p.SetText(h[p.cursor])
		} else {
			p.cursor = len(h)
			p.SetText("")
		}
		return nil
	}
	return ev
}
