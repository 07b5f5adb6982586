package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// InstanceData holds daemon and user information for display.
type InstanceData struct {
	Instance      string
	User          string
	Role          string
	Status        string
	Conversations int64
	Messages      int64
	Uptime        time.Duration
}

// InstanceInfo displays instance metadata in the header.
type InstanceInfo struct {
	*tview.TextView
	theme *Theme
}

// NewInstanceInfo creates a new instance info panel.
func NewInstanceInfo(theme *Theme) *InstanceInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &InstanceInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the instance info.
func (ii *InstanceInfo) Update(data *InstanceData) {
	ii.Clear()
	if data == nil {
		return
	}

	fgColor := Tag(ii.theme.FgColor)
	counterColor := Tag(ii.theme.CounterColor)
	statusColor := counterColor
	if data.Status != "SERVING" {
		statusColor = Tag(ii.theme.FlashWarnColor)
	}

	text := fmt.Sprintf(
		"[%s::b]Instance:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]User:[-:-:-]     [%s]%s (%s)[-]\n"+
			"[%s::b]Status:[-:-:-]   [%s]%s[-]\n"+
			"[%s::b]Convs:[-:-:-]    [%s]%d[-]\n"+
			"[%s::b]Msgs:[-:-:-]     [%s]%d[-]\n"+
			"[%s::b]Uptime:[-:-:-]   [%s]%s[-]",
		fgColor, counterColor, tview.Escape(data.Instance),
		fgColor, counterColor, tview.Escape(data.User), data.Role,
		fgColor, statusColor, data.Status,
		fgColor, counterColor, data.Conversations,
		fgColor, counterColor, data.Messages,
		fgColor, counterColor, formatDuration(data.Uptime),
	)

	_, _ = fmt.Fprint(ii, text)
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
