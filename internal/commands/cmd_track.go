package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tempo/internal/core/task"
	"github.com/colonyops/tempo/internal/core/timeutil"
	"github.com/colonyops/tempo/internal/tempo"
)

// TrackCmd implements the tempo track command group.
type TrackCmd struct {
	flags *Flags
	app   *tempo.App

	// add flags
	minutes int
}

// NewTrackCmd creates a new track command.
func NewTrackCmd(flags *Flags, app *tempo.App) *TrackCmd {
	return &TrackCmd{flags: flags, app: app}
}

// Register adds the track command to the application.
func (cmd *TrackCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "track",
		Usage: "Track time spent on tasks",
		Description: `Time tracking commands.

At most one task is tracked at a time: starting a task stops whichever
task was running. Time accumulates across sessions.

Examples:
  tempo track start <id>
  tempo track stop <id>
  tempo track add <id> --minutes 30
  tempo track status`,
		Commands: []*cli.Command{
			cmd.startCmd(),
			cmd.stopCmd(),
			cmd.toggleCmd(),
			cmd.addCmd(),
			cmd.resetCmd(),
			cmd.statusCmd(),
		},
	})

	return app
}

func (cmd *TrackCmd) startCmd() *cli.Command {
	return &cli.Command{
		Name:      "start",
		Usage:     "Start tracking a task",
		UsageText: "tempo track start <id>",
		Action:    cmd.runStart,
	}
}

func (cmd *TrackCmd) stopCmd() *cli.Command {
	return &cli.Command{
		Name:      "stop",
		Usage:     "Stop tracking a task",
		UsageText: "tempo track stop [id]",
		Description: `Stops the open tracking session.

With no argument, stops whichever task is currently tracking.`,
		Action: cmd.runStop,
	}
}

func (cmd *TrackCmd) toggleCmd() *cli.Command {
	return &cli.Command{
		Name:      "toggle",
		Usage:     "Start or stop tracking depending on current state",
		UsageText: "tempo track toggle <id>",
		Action:    cmd.runToggle,
	}
}

func (cmd *TrackCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add time manually",
		UsageText: "tempo track add <id> --minutes <n>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "minutes",
				Aliases:     []string{"m"},
				Usage:       "minutes to add",
				Required:    true,
				Destination: &cmd.minutes,
			},
		},
		Action: cmd.runAdd,
	}
}

func (cmd *TrackCmd) resetCmd() *cli.Command {
	return &cli.Command{
		Name:      "reset",
		Usage:     "Clear a task's tracked time",
		UsageText: "tempo track reset <id>",
		Description: `Clears all tracked time and session history on a task.

This cannot be undone.`,
		Action: cmd.runReset,
	}
}

func (cmd *TrackCmd) statusCmd() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show the currently tracked task",
		UsageText: "tempo track status",
		Action:    cmd.runStatus,
	}
}

func (cmd *TrackCmd) runStart(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tempo track start <id>")
	}

	t, err := cmd.app.Tracker.Start(ctx, c.Args().Get(0))
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "tracking %s\n", t.Title)
	return nil
}

func (cmd *TrackCmd) runStop(ctx context.Context, c *cli.Command) error {
	id := c.Args().Get(0)
	if id == "" {
		active, err := cmd.app.Tracker.Active(ctx)
		if err != nil {
			return err
		}
		if active == nil {
			_, _ = fmt.Fprintln(c.Root().Writer, "nothing is being tracked")
			return nil
		}
		id = active.ID
	}

	t, err := cmd.app.Tracker.Stop(ctx, id)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "stopped %s, total %s\n",
		t.Title, timeutil.FormatDuration(t.ActualDuration, false))
	return nil
}

func (cmd *TrackCmd) runToggle(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tempo track toggle <id>")
	}

	t, err := cmd.app.Tracker.Toggle(ctx, c.Args().Get(0))
	if err != nil {
		return err
	}

	if t.Tracking.IsTracking {
		_, _ = fmt.Fprintf(c.Root().Writer, "tracking %s\n", t.Title)
	} else {
		_, _ = fmt.Fprintf(c.Root().Writer, "stopped %s\n", t.Title)
	}
	return nil
}

func (cmd *TrackCmd) runAdd(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tempo track add <id> --minutes <n>")
	}

	t, err := cmd.app.Tracker.AddManual(ctx, c.Args().Get(0), cmd.minutes)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "added %dm to %s, total %s\n",
		cmd.minutes, t.Title, timeutil.FormatDuration(t.ActualDuration, false))
	return nil
}

func (cmd *TrackCmd) runReset(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tempo track reset <id>")
	}

	t, err := cmd.app.Tracker.Reset(ctx, c.Args().Get(0))
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "reset %s\n", t.Title)
	return nil
}

func (cmd *TrackCmd) runStatus(ctx context.Context, c *cli.Command) error {
	active, err := cmd.app.Tracker.Active(ctx)
	if err != nil {
		return err
	}
	if active == nil {
		_, _ = fmt.Fprintln(c.Root().Writer, "nothing is being tracked")
		return nil
	}

	now := time.Now()
	_, _ = fmt.Fprintf(c.Root().Writer, "%s (%s) elapsed %s%s\n",
		active.Title, active.ID,
		timeutil.FormatDuration(int(active.Elapsed(now).Seconds()), false),
		progressSuffix(active, now))
	return nil
}

func progressSuffix(t *task.Task, now time.Time) string {
	if t.EstimatedDuration <= 0 {
		return ""
	}
	return fmt.Sprintf(" (%.0f%% of estimate)", t.ProgressPercent(now))
}
