package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/colonyops/tempo/internal/core/notify"
	"github.com/colonyops/tempo/internal/core/task"
	"github.com/colonyops/tempo/internal/core/timeutil"
	"github.com/colonyops/tempo/internal/tempo"
)

const toastDuration = 5 * time.Second

// clockTickMsg drives the live elapsed display, once per second.
type clockTickMsg time.Time

// evalTickMsg triggers a notification rule evaluation.
type evalTickMsg time.Time

// dataMsg carries freshly loaded board state.
type dataMsg struct {
	tasks         []task.Task
	notifications []notify.Notification
	unread        int
	err           error
}

// Model is the weekly board.
type Model struct {
	app *tempo.App
	log zerolog.Logger

	width  int
	height int

	tasks  []task.Task
	cursor int

	notifications []notify.Notification
	unread        int
	panel         list.Model
	showPanel     bool

	toast      string
	toastUntil time.Time
	lastSeen   time.Time

	err error
}

// New creates the board model.
func New(app *tempo.App, log zerolog.Logger) Model {
	return Model{
		app:      app,
		log:      log.With().Str("cmp", "board").Logger(),
		panel:    newNotificationList(nil, 80, 20),
		lastSeen: time.Now(),
	}
}

// Init loads the board, runs an immediate rule evaluation, and starts
// the clock and evaluation tickers. The eager evaluation mirrors the
// headless runner: a task due soon gets its reminder when the board
// opens, not one interval later.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadCmd(),
		m.evalCmd(),
		clockTick(),
		evalTick(m.app.Config.EvalInterval()),
	)
}

func clockTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

func evalTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return evalTickMsg(t)
	})
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		tasks, err := m.app.Tasks.List(ctx, task.ListFilter{})
		if err != nil {
			return dataMsg{err: err}
		}
		notifications, err := m.app.Notifications.List(ctx)
		if err != nil {
			return dataMsg{err: err}
		}
		unread, err := m.app.Notifications.Unread(ctx)
		if err != nil {
			return dataMsg{err: err}
		}

		return dataMsg{tasks: tasks, notifications: notifications, unread: unread}
	}
}

func (m Model) evalCmd() tea.Cmd {
	return func() tea.Msg {
		m.app.Scheduler.Tick(context.Background())
		return m.loadCmd()()
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.panel.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case clockTickMsg:
		if !m.toastUntil.IsZero() && time.Time(msg).After(m.toastUntil) {
			m.toast = ""
			m.toastUntil = time.Time{}
		}
		return m, clockTick()

	case evalTickMsg:
		return m, tea.Batch(m.evalCmd(), evalTick(m.app.Config.EvalInterval()))

	case dataMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.tasks = msg.tasks
		m.notifications = msg.notifications
		m.unread = msg.unread
		if m.cursor >= len(m.tasks) {
			m.cursor = max(0, len(m.tasks)-1)
		}

		items := make([]list.Item, 0, len(m.notifications))
		for _, n := range m.notifications {
			items = append(items, NotificationItem{Notification: n})
		}
		cmd := m.panel.SetItems(items)

		m.pickToast()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// pickToast surfaces the newest unread notification that arrived after
// the board last saw one.
func (m *Model) pickToast() {
	if len(m.notifications) == 0 {
		return
	}
	newest := m.notifications[0]
	if newest.Read || !newest.Timestamp.After(m.lastSeen) {
		return
	}
	m.toast = newest.Message
	m.toastUntil = time.Now().Add(toastDuration)
	m.lastSeen = newest.Timestamp
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showPanel {
		return m.handlePanelKey(msg)
	}

	ctx := context.Background()

	switch msg.String() {
	case "q", "ctrl+c":
		// Close any open session so tracked time survives the exit.
		if err := m.app.Tracker.StopAll(ctx); err != nil {
			m.log.Error().Err(err).Msg("stop open sessions on quit")
		}
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
		return m, nil

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case " ":
		if t := m.selected(); t != nil {
			if _, err := m.app.Tracker.Toggle(ctx, t.ID); err != nil {
				m.err = err
				return m, nil
			}
		}
		// Re-evaluate rules right away so the change is reflected
		// without waiting for the next interval tick.
		return m, m.evalCmd()

	case "d":
		if t := m.selected(); t != nil {
			if _, err := m.app.Tasks.SetCompleted(ctx, t.ID, !t.Completed); err != nil {
				m.err = err
				return m, nil
			}
		}
		return m, m.evalCmd()

	case "n":
		m.showPanel = true
		return m, nil

	case "r":
		return m, m.refreshAfter(func() error {
			return m.app.Notifications.MarkAllRead(ctx)
		})
	}

	return m, nil
}

func (m Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n", "q":
		m.showPanel = false
		return m, nil

	case "enter":
		if item, ok := m.panel.SelectedItem().(NotificationItem); ok {
			return m, m.refreshAfter(func() error {
				return m.app.Notifications.MarkRead(context.Background(), item.Notification.ID)
			})
		}
		return m, nil

	case "x":
		m.showPanel = false
		return m, m.refreshAfter(func() error {
			return m.app.Notifications.ClearAll(context.Background())
		})
	}

	var cmd tea.Cmd
	m.panel, cmd = m.panel.Update(msg)
	return m, cmd
}

func (m Model) refreshAfter(fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return dataMsg{err: err}
		}
		return m.loadCmd()()
	}
}

func (m Model) selected() *task.Task {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return nil
	}
	return &m.tasks[m.cursor]
}

// View renders the board.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.showPanel {
		return m.panel.View()
	}

	var b strings.Builder
	now := time.Now()
	today := task.DayOf(now)

	var lastDay task.Day
	for i, t := range m.tasks {
		if t.Day != lastDay {
			lastDay = t.Day
			header := dayHeaderStyle
			if t.Day == today {
				header = todayHeaderStyle
			}
			b.WriteString(header.Render(strings.ToUpper(string(t.Day))))
			b.WriteString("\n")
		}
		b.WriteString(m.renderTask(t, i == m.cursor, now))
		b.WriteString("\n")
	}

	if len(m.tasks) == 0 {
		b.WriteString(normalStyle.Render("No tasks scheduled. Add one with: tempo task add"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())

	if m.toast != "" {
		b.WriteString("\n")
		b.WriteString(toastStyle.Render(m.toast))
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err.Error()))
	}

	return b.String()
}

func (m Model) renderTask(t task.Task, selected bool, now time.Time) string {
	style := normalStyle
	switch {
	case selected:
		style = selectedStyle
	case t.Completed:
		style = doneStyle
	case t.Tracking.IsTracking:
		style = activeStyle
	}

	window := timeStyle.Render(fmt.Sprintf("%s-%s", t.StartTime, t.EndTime))

	line := fmt.Sprintf("  %s  %s", window, style.Render(t.Title))
	if t.Tracking.IsTracking {
		line += activeStyle.Render(fmt.Sprintf("  %s %s", iconDot,
			timeutil.FormatDuration(int(t.Elapsed(now).Seconds()), true)))
	} else if t.ActualDuration > 0 {
		line += timeStyle.Render(fmt.Sprintf("  %s %s", iconDot,
			timeutil.FormatDuration(t.ActualDuration, true)))
	}
	if t.EstimatedDuration > 0 && !t.Completed {
		line += timeStyle.Render(fmt.Sprintf(" (%.0f%%)", t.ProgressPercent(now)))
	}
	return line
}

func (m Model) statusLine() string {
	help := "space track " + iconDot + " d done " + iconDot + " n notifications " + iconDot + " r read all " + iconDot + " q quit"

	status := statusStyle.Render(help)
	if m.unread > 0 {
		badge := badgeStyle.Render(fmt.Sprintf("%d unread", m.unread))
		status = lipgloss.JoinHorizontal(lipgloss.Top, badge, "  ", status)
	}
	return status
}
