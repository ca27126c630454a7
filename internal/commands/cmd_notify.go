package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tempo/internal/tempo"
	"github.com/colonyops/tempo/pkg/iojson"
)

// NotifyCmd implements the tempo notify command group.
type NotifyCmd struct {
	flags *Flags
	app   *tempo.App

	// list flags
	unreadOnly bool
	jsonOutput bool
}

// NewNotifyCmd creates a new notify command.
func NewNotifyCmd(flags *Flags, app *tempo.App) *NotifyCmd {
	return &NotifyCmd{flags: flags, app: app}
}

// Register adds the notify command to the application.
func (cmd *NotifyCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "notify",
		Usage: "View the notification log",
		Description: `Notification log commands.

The log keeps the 50 most recent notifications, newest first.

Examples:
  tempo notify list
  tempo notify list --unread
  tempo notify read <id>
  tempo notify read-all
  tempo notify clear`,
		Commands: []*cli.Command{
			cmd.listCmd(),
			cmd.readCmd(),
			cmd.readAllCmd(),
			cmd.clearCmd(),
		},
	})

	return app
}

func (cmd *NotifyCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List notifications, newest first",
		UsageText: "tempo notify list [--unread] [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "unread",
				Aliases:     []string{"u"},
				Usage:       "only unread notifications",
				Destination: &cmd.unreadOnly,
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

func (cmd *NotifyCmd) readCmd() *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "Mark a notification as read",
		UsageText: "tempo notify read <id>",
		Action:    cmd.runRead,
	}
}

func (cmd *NotifyCmd) readAllCmd() *cli.Command {
	return &cli.Command{
		Name:      "read-all",
		Usage:     "Mark every notification as read",
		UsageText: "tempo notify read-all",
		Action:    cmd.runReadAll,
	}
}

func (cmd *NotifyCmd) clearCmd() *cli.Command {
	return &cli.Command{
		Name:      "clear",
		Usage:     "Empty the notification log",
		UsageText: "tempo notify clear",
		Action:    cmd.runClear,
	}
}

func (cmd *NotifyCmd) runList(ctx context.Context, c *cli.Command) error {
	entries, err := cmd.app.Notifications.List(ctx)
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}

	out := c.Root().Writer

	shown := 0
	for _, n := range entries {
		if cmd.unreadOnly && n.Read {
			continue
		}
		shown++

		if cmd.jsonOutput {
			if err := iojson.WriteLine(out, n); err != nil {
				return fmt.Errorf("encode notification: %w", err)
			}
			continue
		}

		marker := " "
		if !n.Read {
			marker = "*"
		}
		_, _ = fmt.Fprintf(out, "%s %s  %-10s  %s  %s\n",
			marker, n.Timestamp.Format("Jan 02 15:04"), n.Type, n.ID, n.Message)
	}

	if shown == 0 && !cmd.jsonOutput {
		_, _ = fmt.Fprintln(os.Stderr, "No notifications")
	}
	return nil
}

func (cmd *NotifyCmd) runRead(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tempo notify read <id>")
	}

	if err := cmd.app.Notifications.MarkRead(ctx, c.Args().Get(0)); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "read")
	return nil
}

func (cmd *NotifyCmd) runReadAll(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Notifications.MarkAllRead(ctx); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "all read")
	return nil
}

func (cmd *NotifyCmd) runClear(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Notifications.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "cleared")
	return nil
}
