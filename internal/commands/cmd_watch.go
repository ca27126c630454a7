package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tempo/internal/tempo"
)

// WatchCmd runs the notification engine in the foreground.
type WatchCmd struct {
	flags *Flags
	app   *tempo.App
}

// NewWatchCmd creates a new watch command.
func NewWatchCmd(flags *Flags, app *tempo.App) *WatchCmd {
	return &WatchCmd{flags: flags, app: app}
}

// Register adds the watch command to the application.
func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "watch",
		Usage:     "Run the notification engine headless",
		UsageText: "tempo watch",
		Description: `Evaluates notification rules once per interval until interrupted.

Use this when the board is not open, for example under a user service
manager, so reminders still fire.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *WatchCmd) run(ctx context.Context, c *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, _ = fmt.Fprintf(c.Root().Writer, "watching, evaluating every %s\n", cmd.flags.Config.EvalInterval())

	cmd.app.Scheduler.Run(ctx)
	return nil
}
