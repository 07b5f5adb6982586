package ui

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/rivo/tview"
)

// FlashLevel orders flash messages by severity.
type FlashLevel int

const (
	FlashInfo FlashLevel = iota
	FlashWarn
	FlashErr
)

var flashTTL = map[FlashLevel]time.Duration{
	FlashInfo: 4 * time.Second,
	FlashWarn: 8 * time.Second,
	FlashErr:  10 * time.Second,
}

// FlashMessage is one line for the footer bar.
type FlashMessage struct {
	Text    string
	Level   FlashLevel
	Expires time.Time
}

// FlashModel holds the footer message. While a message is showing, a new one
// of lower severity is dropped.
type FlashModel struct {
	mu      sync.Mutex
	current FlashMessage
	now     func() time.Time
	changed chan struct{}
}

// NewFlashModel creates an empty flash model.
func NewFlashModel() *FlashModel {
	return &FlashModel{
		now:     time.Now,
		changed: make(chan struct{}, 1),
	}
}

// Info shows msg at info level.
func (f *FlashModel) Info(msg string) { f.set(msg, FlashInfo) }

// Warn shows msg at warn level.
func (f *FlashModel) Warn(msg string) { f.set(msg, FlashWarn) }

// Err shows err at error level. Coded errors show only their message.
func (f *FlashModel) Err(err error) {
	msg := err.Error()
	var e *apperr.Error
	if errors.As(err, &e) && e.Message != "" {
		msg = e.Message
	}
	f.set(msg, FlashErr)
}

// Dismiss clears the current message whatever its level.
func (f *FlashModel) Dismiss() {
	f.mu.Lock()
	f.current = FlashMessage{}
	f.mu.Unlock()
	f.signal()
}

func (f *FlashModel) set(msg string, level FlashLevel) {
	now := f.now()
	f.mu.Lock()
	if f.current.Text != "" && now.Before(f.current.Expires) && f.current.Level > level {
		f.mu.Unlock()
		return
	}
	f.current = FlashMessage{Text: msg, Level: level, Expires: now.Add(flashTTL[level])}
	f.mu.Unlock()
	f.signal()
}

func (f *FlashModel) signal() {
	select {
	case f.changed <- struct{}{}:
	default:
	}
}

// GetMessage returns the showing message, or nil once it has expired.
func (f *FlashModel) GetMessage() *FlashMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current.Text == "" || !f.now().Before(f.current.Expires) {
		return nil
	}
	m := f.current
	return &m
}

// Watch signals after every change. Signals coalesce.
func (f *FlashModel) Watch() <-chan struct{} {
	return f.changed
}

// FlashBar renders the flash message in the footer.
type FlashBar struct {
	*tview.TextView
	theme *Theme
}

// NewFlashBar creates the footer bar.
func NewFlashBar(theme *Theme) *FlashBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	return &FlashBar{TextView: tv, theme: theme}
}

// Update draws msg, or clears the bar when msg is nil.
func (fb *FlashBar) Update(msg *FlashMessage) {
	fb.Clear()
	if msg == nil {
		return
	}
	color, mark := Tag(fb.theme.FlashInfoColor), ""
	switch msg.Level {
	case FlashWarn:
		color, mark = Tag(fb.theme.FlashWarnColor), "! "
	case FlashErr:
		color, mark = Tag(fb.theme.FlashErrColor), "✗ "
	}
	_, _ = fmt.Fprintf(fb, " [%s]%s%s[-]", color, mark, tview.Escape(msg.Text))
}
