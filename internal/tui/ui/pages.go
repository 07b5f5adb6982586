package ui

import (
	"slices"

	"github.com/rivo/tview"
)

// Pages is a page stack over tview.Pages. The bottom page is the root and
// stays open; pushing a page that is already on the stack raises it by
// closing everything above it.
type Pages struct {
	*tview.Pages
	stack    []string
	onChange func(stack []string)
}

// NewPages creates an empty page stack.
func NewPages() *Pages {
	return &Pages{Pages: tview.NewPages()}
}

// SetOnChange registers fn to run with a copy of the stack after every change.
func (p *Pages) SetOnChange(fn func(stack []string)) {
	p.onChange = fn
}

// Push shows name on top of the stack.
func (p *Pages) Push(name string) {
	if i := slices.Index(p.stack, name); i >= 0 {
		p.truncate(i + 1)
		return
	}
	if top := p.Current(); top != "" {
		p.HidePage(top)
	}
	p.stack = append(p.stack, name)
	p.front(name)
}

// Pop closes the top page and returns its name. The root is never popped.
func (p *Pages) Pop() string {
	if len(p.stack) <= 1 {
		return ""
	}
	top := p.Current()
	p.truncate(len(p.stack) - 1)
	return top
}

// Reset makes name the root and closes every other page.
func (p *Pages) Reset(name string) {
	for _, n := range p.stack {
		p.HidePage(n)
	}
	p.stack = append(p.stack[:0], name)
	p.front(name)
}

// Current returns the page in front, or "" when the stack is empty.
func (p *Pages) Current() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

// Stack returns a copy of the stack, root first.
func (p *Pages) Stack() []string {
	return slices.Clone(p.stack)
}

// Depth returns the number of open pages.
func (p *Pages) Depth() int {
	return len(p.stack)
}

func (p *Pages) truncate(n int) {
	for _, name := range p.stack[n:] {
		p.HidePage(name)
	}
	p.stack = p.stack[:n]
	p.front(p.Current())
}

func (p *Pages) front(name string) {
	p.ShowPage(name)
	p.SendToFront(name)
	if p.onChange != nil {
		p.onChange(p.Stack())
	}
}
