package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/tempo/internal/core/task"
	"github.com/colonyops/tempo/internal/core/timeutil"
	"github.com/colonyops/tempo/internal/tempo"
	"github.com/colonyops/tempo/pkg/iojson"
)

// TaskCmd implements the tempo task command group.
type TaskCmd struct {
	flags *Flags
	app   *tempo.App

	// add/edit flags
	title    string
	day      string
	date     string
	start    string
	end      string
	priority string
	category string
	tags     string
	estimate int

	// list flags
	listDay    string
	listAll    bool
	jsonOutput bool
}

// NewTaskCmd creates a new task command.
func NewTaskCmd(flags *Flags, app *tempo.App) *TaskCmd {
	return &TaskCmd{flags: flags, app: app}
}

// Register adds the task command to the application.
func (cmd *TaskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "task",
		Usage: "Manage scheduled tasks",
		Description: `Task commands for the weekly schedule.

Tasks occupy a day and an HH:MM window. Creating or moving a task into
a window that overlaps another task on the same day is refused.

Examples:
  tempo task add --title "Standup" --day monday --start 09:00 --end 09:15
  tempo task add                             # interactive form
  tempo task list --day monday
  tempo task done <id>
  tempo task move <id> tuesday`,
		Commands: []*cli.Command{
			cmd.addCmd(),
			cmd.listCmd(),
			cmd.editCmd(),
			cmd.doneCmd(),
			cmd.moveCmd(),
			cmd.rmCmd(),
		},
	})

	return app
}

func (cmd *TaskCmd) scheduleFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "title",
			Aliases:     []string{"t"},
			Usage:       "task title",
			Destination: &cmd.title,
		},
		&cli.StringFlag{
			Name:        "day",
			Aliases:     []string{"d"},
			Usage:       "weekday (monday..sunday, defaults to today)",
			Destination: &cmd.day,
		},
		&cli.StringFlag{
			Name:        "date",
			Usage:       "calendar date YYYY-MM-DD (defaults to today)",
			Destination: &cmd.date,
		},
		&cli.StringFlag{
			Name:        "start",
			Aliases:     []string{"s"},
			Usage:       "start time HH:MM",
			Destination: &cmd.start,
		},
		&cli.StringFlag{
			Name:        "end",
			Aliases:     []string{"e"},
			Usage:       "end time HH:MM",
			Destination: &cmd.end,
		},
		&cli.StringFlag{
			Name:        "priority",
			Aliases:     []string{"p"},
			Usage:       "priority (low, medium, high)",
			Destination: &cmd.priority,
		},
		&cli.StringFlag{
			Name:        "category",
			Aliases:     []string{"c"},
			Usage:       "category label",
			Destination: &cmd.category,
		},
		&cli.StringFlag{
			Name:        "tags",
			Usage:       "comma-separated tags",
			Destination: &cmd.tags,
		},
		&cli.IntFlag{
			Name:        "estimate",
			Usage:       "estimated effort in minutes",
			Destination: &cmd.estimate,
		},
	}
}

func (cmd *TaskCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a task to the schedule",
		UsageText: "tempo task add [options]",
		Description: `Adds a task to the weekly schedule.

When --title is omitted and stdin is a terminal, an interactive form
prompts for input.

Examples:
  tempo task add --title "Standup" --day monday --start 09:00 --end 09:15
  tempo task add --title "Gym" --start 18:00 --end 19:00 --category health`,
		Flags:  cmd.scheduleFlags(),
		Action: cmd.runAdd,
	}
}

func (cmd *TaskCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List scheduled tasks",
		UsageText: "tempo task list [--day <day>] [--all] [--json]",
		Description: `Lists tasks as a table, grouped by day.

Defaults to incomplete tasks. Use --all to include completed tasks and
--json for line-oriented JSON output.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "day",
				Aliases:     []string{"d"},
				Usage:       "filter by weekday",
				Destination: &cmd.listDay,
			},
			&cli.BoolFlag{
				Name:        "all",
				Aliases:     []string{"a"},
				Usage:       "include completed tasks",
				Destination: &cmd.listAll,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.runList,
	}
}

func (cmd *TaskCmd) editCmd() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Edit a task",
		UsageText: "tempo task edit <id> [options]",
		Description: `Edits a task in place. Only the provided flags change.

Examples:
  tempo task edit abc123 --start 10:00 --end 11:00
  tempo task edit abc123 --priority high`,
		Flags:  cmd.scheduleFlags(),
		Action: cmd.runEdit,
	}
}

func (cmd *TaskCmd) doneCmd() *cli.Command {
	return &cli.Command{
		Name:      "done",
		Usage:     "Toggle task completion",
		UsageText: "tempo task done <id> [--undo]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "undo",
				Usage: "reopen a completed task",
			},
		},
		Action: cmd.runDone,
	}
}

func (cmd *TaskCmd) moveCmd() *cli.Command {
	return &cli.Command{
		Name:      "move",
		Usage:     "Move a task to another day",
		UsageText: "tempo task move <id> <day> [--start <HH:MM>] [--end <HH:MM>]",
		Description: `Moves a task to another day, optionally changing its window.

The move is refused if the target slot overlaps an existing task.

Examples:
  tempo task move abc123 tuesday
  tempo task move abc123 tuesday --start 14:00 --end 15:00`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "start",
				Aliases:     []string{"s"},
				Usage:       "new start time HH:MM",
				Destination: &cmd.start,
			},
			&cli.StringFlag{
				Name:        "end",
				Aliases:     []string{"e"},
				Usage:       "new end time HH:MM",
				Destination: &cmd.end,
			},
		},
		Action: cmd.runMove,
	}
}

func (cmd *TaskCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a task",
		UsageText: "tempo task rm <id>",
		Action:    cmd.runRm,
	}
}

func (cmd *TaskCmd) runAdd(ctx context.Context, c *cli.Command) error {
	if cmd.title == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		if err := cmd.runForm(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	t := task.Task{
		Title:     cmd.title,
		Day:       task.Day(strings.ToLower(cmd.day)),
		Date:      cmd.date,
		StartTime: cmd.start,
		EndTime:   cmd.end,
		Priority:  task.Priority(cmd.priority),
		Category:  cmd.category,
		Tags:      splitTags(cmd.tags),
	}
	if cmd.estimate > 0 {
		t.EstimatedDuration = cmd.estimate * 60
	}

	created, err := cmd.app.Tasks.Create(ctx, t)
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}

	// A task list change re-evaluates the rules immediately, so a task
	// added inside its reminder window notifies now rather than on the
	// next interval tick.
	cmd.app.Scheduler.Tick(ctx)

	_, _ = fmt.Fprintf(c.Root().Writer, "added %s (%s %s-%s) %s\n",
		created.Title, created.Day, created.StartTime, created.EndTime, created.ID)
	return nil
}

func (cmd *TaskCmd) runList(ctx context.Context, c *cli.Command) error {
	filter := task.ListFilter{}

	if cmd.listDay != "" {
		day := task.Day(strings.ToLower(cmd.listDay))
		if !day.IsValid() {
			return fmt.Errorf("unknown day %q", cmd.listDay)
		}
		filter.Day = day
	}
	if !cmd.listAll {
		incomplete := false
		filter.Completed = &incomplete
	}

	tasks, err := cmd.app.Tasks.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, t := range tasks {
			if err := iojson.WriteLine(out, t); err != nil {
				return fmt.Errorf("encode task: %w", err)
			}
		}
		return nil
	}

	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(os.Stderr, "No tasks found")
		return nil
	}

	now := time.Now()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	var lastDay task.Day
	for _, t := range tasks {
		if t.Day != lastDay {
			if lastDay != "" {
				_, _ = fmt.Fprintln(w)
			}
			lastDay = t.Day
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s-%s\t%s\t%s\n",
			t.ID, t.Day, t.StartTime, t.EndTime, taskMarker(t), taskSummary(t, now))
	}
	return w.Flush()
}

func (cmd *TaskCmd) runEdit(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tempo task edit <id> [options]")
	}

	t, err := cmd.app.Tasks.Get(ctx, c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("edit task: %w", err)
	}

	// No flags given: edit interactively with current values pre-filled.
	if cmd.editIsEmpty() && term.IsTerminal(int(os.Stdin.Fd())) {
		cmd.title = t.Title
		cmd.day = string(t.Day)
		cmd.start = t.StartTime
		cmd.end = t.EndTime
		cmd.priority = string(t.Priority)
		cmd.category = t.Category
		if err := cmd.runForm(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	if cmd.title != "" {
		t.Title = cmd.title
	}
	if cmd.day != "" {
		t.Day = task.Day(strings.ToLower(cmd.day))
	}
	if cmd.date != "" {
		t.Date = cmd.date
	}
	if cmd.start != "" {
		t.StartTime = cmd.start
	}
	if cmd.end != "" {
		t.EndTime = cmd.end
	}
	if cmd.priority != "" {
		t.Priority = task.Priority(cmd.priority)
	}
	if cmd.category != "" {
		t.Category = cmd.category
	}
	if cmd.tags != "" {
		t.Tags = splitTags(cmd.tags)
	}
	if cmd.estimate > 0 {
		t.EstimatedDuration = cmd.estimate * 60
	}

	updated, err := cmd.app.Tasks.Update(ctx, t)
	if err != nil {
		return fmt.Errorf("edit task: %w", err)
	}
	cmd.app.Scheduler.Tick(ctx)

	_, _ = fmt.Fprintf(c.Root().Writer, "updated %s\n", updated.ID)
	return nil
}

func (cmd *TaskCmd) runDone(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tempo task done <id>")
	}

	done := !c.Bool("undo")
	t, err := cmd.app.Tasks.SetCompleted(ctx, c.Args().Get(0), done)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	cmd.app.Scheduler.Tick(ctx)

	if done {
		_, _ = fmt.Fprintf(c.Root().Writer, "completed %s\n", t.Title)
	} else {
		_, _ = fmt.Fprintf(c.Root().Writer, "reopened %s\n", t.Title)
	}
	return nil
}

func (cmd *TaskCmd) runMove(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: tempo task move <id> <day>")
	}

	day := task.Day(strings.ToLower(c.Args().Get(1)))
	if !day.IsValid() {
		return fmt.Errorf("unknown day %q", c.Args().Get(1))
	}

	moved, err := cmd.app.Tasks.Move(ctx, c.Args().Get(0), day, cmd.start, cmd.end)
	if err != nil {
		return fmt.Errorf("move task: %w", err)
	}
	cmd.app.Scheduler.Tick(ctx)

	_, _ = fmt.Fprintf(c.Root().Writer, "moved %s to %s %s-%s\n",
		moved.Title, moved.Day, moved.StartTime, moved.EndTime)
	return nil
}

func (cmd *TaskCmd) runRm(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tempo task rm <id>")
	}

	if err := cmd.app.Tasks.Delete(ctx, c.Args().Get(0)); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "deleted")
	return nil
}

func (cmd *TaskCmd) runForm() error {
	dayOptions := make([]huh.Option[string], 0, len(task.Days))
	for _, d := range task.Days {
		dayOptions = append(dayOptions, huh.NewOption(string(d), string(d)))
	}

	if cmd.day == "" {
		cmd.day = string(task.DayOf(time.Now()))
	}
	if cmd.priority == "" {
		cmd.priority = string(task.PriorityMedium)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Validate(validateRequired).
				Value(&cmd.title),
			huh.NewSelect[string]().
				Title("Day").
				Options(dayOptions...).
				Value(&cmd.day),
			huh.NewInput().
				Title("Start time").
				Placeholder("09:00").
				Validate(validateClock).
				Value(&cmd.start),
			huh.NewInput().
				Title("End time").
				Placeholder("10:00").
				Validate(validateClock).
				Value(&cmd.end),
			huh.NewSelect[string]().
				Title("Priority").
				Options(
					huh.NewOption("low", string(task.PriorityLow)),
					huh.NewOption("medium", string(task.PriorityMedium)),
					huh.NewOption("high", string(task.PriorityHigh)),
				).
				Value(&cmd.priority),
			huh.NewSelect[string]().
				Title("Category").
				Options(huh.NewOptions(task.DefaultCategories...)...).
				Value(&cmd.category),
		),
	).Run()
}

func (cmd *TaskCmd) editIsEmpty() bool {
	return cmd.title == "" && cmd.day == "" && cmd.date == "" && cmd.start == "" &&
		cmd.end == "" && cmd.priority == "" && cmd.category == "" && cmd.tags == "" &&
		cmd.estimate == 0
}

func taskMarker(t task.Task) string {
	switch {
	case t.Completed:
		return "done"
	case t.Tracking.IsTracking:
		return "active"
	default:
		return ""
	}
}

func taskSummary(t task.Task, now time.Time) string {
	summary := t.Title
	if elapsed := t.Elapsed(now); elapsed > 0 {
		summary += fmt.Sprintf(" [%s]", timeutil.FormatDuration(int(elapsed.Seconds()), true))
	}
	return summary
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

func validateClock(s string) error {
	if _, ok := timeutil.ParseClock(s); !ok {
		return fmt.Errorf("use HH:MM")
	}
	return nil
}
