package ui

import (
	"slices"
	"testing"

	"github.com/rivo/tview"
)

func newTestPages(names ...string) *Pages {
	p := NewPages()
	for _, n := range names {
		p.AddPage(n, tview.NewBox(), true, false)
	}
	return p
}

func TestPagesPushPop(t *testing.T) {
	p := newTestPages("conversations", "thread", "details")
	var seen [][]string
	p.SetOnChange(func(stack []string) { seen = append(seen, stack) })

	p.Push("conversations")
	p.Push("thread")
	p.Push("details")
	if got := p.Current(); got != "details" {
		t.Fatalf("Current() = %q, want details", got)
	}
	if got := p.Pop(); got != "details" {
		t.Errorf("Pop() = %q, want details", got)
	}
	if got := p.Pop(); got != "thread" {
		t.Errorf("Pop() = %q, want thread", got)
	}
	if got := p.Pop(); got != "" {
		t.Errorf("Pop() on root = %q, want empty", got)
	}
	if p.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", p.Depth())
	}
	if len(seen) != 5 {
		t.Errorf("onChange fired %d times, want 5", len(seen))
	}
}

func TestPagesPushExistingRaises(t *testing.T) {
	p := newTestPages("conversations", "thread", "details", "help")
	p.Push("conversations")
	p.Push("thread")
	p.Push("details")
	p.Push("help")

	p.Push("thread")
	if want := []string{"conversations", "thread"}; !slices.Equal(p.Stack(), want) {
		t.Errorf("Stack() = %v, want %v", p.Stack(), want)
	}
}

func TestPagesReset(t *testing.T) {
	p := newTestPages("conversations", "thread", "search")
	p.Push("conversations")
	p.Push("search")
	p.Reset("conversations")
	if want := []string{"conversations"}; !slices.Equal(p.Stack(), want) {
		t.Errorf("Stack() = %v, want %v", p.Stack(), want)
	}
	stack := p.Stack()
	stack[0] = "mutated"
	if p.Current() != "conversations" {
		t.Error("Stack() returned the internal slice")
	}
}
