package ui

import (
	"slices"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestPromptSubmitAndHistory(t *testing.T) {
	p := NewPrompt(DefaultTheme())
	var got []string
	p.SetOnSubmit(func(mode PromptMode, text string) {
		if mode != PromptCommand {
			t.Errorf("mode = %v, want command", mode)
		}
		got = append(got, text)
	})

	p.Activate(PromptCommand)
	for _, line := range []string{"help", "help", "search rust", ""} {
		p.SetText(line)
		p.done(tcell.KeyEnter)
	}

	if want := []string{"help", "help", "search rust"}; !slices.Equal(got, want) {
		t.Errorf("submitted %v, want %v", got, want)
	}
	if want := []string{"help", "search rust"}; !slices.Equal(p.History(PromptCommand), want) {
		t.Errorf("History() = %v, want %v", p.History(PromptCommand), want)
	}
	if len(p.History(PromptFilter)) != 0 {
		t.Error("filter history shares command lines")
	}
}

func TestPromptRecall(t *testing.T) {
	p := NewPrompt(DefaultTheme())
	p.Activate(PromptCommand)
	for _, line := range []string{"new u2", "attach cv.pdf"} {
		p.SetText(line)
		p.done(tcell.KeyEnter)
	}
	p.Activate(PromptCommand)

	up := tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
	down := tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)

	p.recall(up)
	if p.GetText() != "attach cv.pdf" {
		t.Errorf("after Up text = %q", p.GetText())
	}
	p.recall(up)
	p.recall(up)
	if p.GetText() != "new u2" {
		t.Errorf("after Up x3 text = %q", p.GetText())
	}
	p.recall(down)
	p.recall(down)
	if p.GetText() != "" {
		t.Errorf("past newest text = %q, want empty", p.GetText())
	}
}

func TestPromptCancel(t *testing.T) {
	p := NewPrompt(DefaultTheme())
	cancelled := false
	p.SetOnCancel(func() { cancelled = true })
	p.Activate(PromptFilter)
	p.SetText("ali")
	p.done(tcell.KeyEscape)
	if !cancelled || p.GetText() != "" {
		t.Errorf("cancelled=%v text=%q", cancelled, p.GetText())
	}
}
