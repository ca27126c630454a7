package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/tempo/internal/core/notify"
)

// NotificationItem wraps a notification for the list component.
type NotificationItem struct {
	Notification notify.Notification
}

// FilterValue returns the value used for filtering.
func (i NotificationItem) FilterValue() string {
	return fmt.Sprintf("%s %s %s", i.Notification.Type, i.Notification.TaskTitle, i.Notification.Message)
}

// NotificationDelegate renders notification entries in the panel.
type NotificationDelegate struct{}

// Height returns the height of each item.
func (d NotificationDelegate) Height() int { return 2 }

// Spacing returns the spacing between items.
func (d NotificationDelegate) Spacing() int { return 0 }

// Update handles item updates.
func (d NotificationDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render renders a single notification.
// Line 1: [type] Jan 02 15:04, starred when unread
// Line 2: message (truncated to fit)
func (d NotificationDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ni, ok := item.(NotificationItem)
	if !ok {
		return
	}
	n := ni.Notification

	width := m.Width()
	if width <= 0 {
		width = 80
	}
	contentWidth := width - 4

	style := normalStyle
	if index == m.Index() {
		style = selectedStyle
	}

	marker := " "
	if !n.Read {
		marker = "*"
	}
	line1 := fmt.Sprintf("%s [%s] %s %s", marker, n.Type, iconDot, n.Timestamp.Format("Jan 02 15:04"))

	msg := strings.ReplaceAll(n.Message, "\n", " ")
	if runes := []rune(msg); len(runes) > contentWidth {
		msg = string(runes[:contentWidth-3]) + "..."
	}

	fmt.Fprintf(w, "%s\n%s", style.Render(line1), style.Render("  "+msg))
}

func newNotificationList(entries []notify.Notification, width, height int) list.Model {
	items := make([]list.Item, 0, len(entries))
	for _, n := range entries {
		items = append(items, NotificationItem{Notification: n})
	}

	l := list.New(items, NotificationDelegate{}, width, height)
	l.Title = "Notifications"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}
