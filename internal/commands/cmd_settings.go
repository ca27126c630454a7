package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/tempo/internal/core/notify"
	"github.com/colonyops/tempo/internal/tempo"
	"github.com/colonyops/tempo/pkg/iojson"
)

// SettingsCmd implements the tempo settings command group.
type SettingsCmd struct {
	flags *Flags
	app   *tempo.App

	// show flags
	jsonOutput bool
}

// NewSettingsCmd creates a new settings command.
func NewSettingsCmd(flags *Flags, app *tempo.App) *SettingsCmd {
	return &SettingsCmd{flags: flags, app: app}
}

// Register adds the settings command to the application.
func (cmd *SettingsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "settings",
		Usage: "View and change notification settings",
		Description: `Notification settings commands.

Settings persist in the data directory and take effect on the next
evaluation tick.

Examples:
  tempo settings show
  tempo settings set reminder_timing 10
  tempo settings set quiet_hours on
  tempo settings set overdue_frequency 10min`,
		Commands: []*cli.Command{
			cmd.showCmd(),
			cmd.setCmd(),
		},
	})

	return app
}

func (cmd *SettingsCmd) showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print current settings",
		UsageText: "tempo settings show [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.runShow,
	}
}

func (cmd *SettingsCmd) setCmd() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Change one setting",
		UsageText: "tempo settings set <key> <value>",
		Description: `Changes one setting and persists the result.

Keys:
  enabled                   on|off   master switch
  reminder_timing           minutes before start (>= 1)
  sound                     on|off
  push                      on|off
  break_reminders           on|off
  daily_summary             on|off
  quiet_hours               on|off
  quiet_start               HH:MM
  quiet_end                 HH:MM
  reminder_frequency        once|5min|10min|until_start
  overdue_frequency         once|5min|10min|until_done
  show_in_progress_overdue  on|off
  max_reminders_per_task    cap per task (>= 1)`,
		Action: cmd.runSet,
	}
}

func (cmd *SettingsCmd) runShow(ctx context.Context, c *cli.Command) error {
	settings, err := cmd.app.Settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	if cmd.jsonOutput {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, settings)
	}

	bits, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = fmt.Fprint(c.Root().Writer, string(bits))
	return err
}

func (cmd *SettingsCmd) runSet(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: tempo settings set <key> <value>")
	}

	settings, err := cmd.app.Settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	key, value := c.Args().Get(0), c.Args().Get(1)
	if err := applySetting(&settings, key, value); err != nil {
		return err
	}

	if err := cmd.app.Settings.Set(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	// Settings changes re-evaluate the rules right away.
	cmd.app.Scheduler.Tick(ctx)

	_, _ = fmt.Fprintf(c.Root().Writer, "%s = %s\n", key, value)
	return nil
}

func applySetting(s *notify.Settings, key, value string) error {
	switch key {
	case "enabled":
		return parseBool(value, &s.Enabled)
	case "reminder_timing":
		return parseInt(value, &s.ReminderTiming)
	case "sound":
		return parseBool(value, &s.SoundEnabled)
	case "push":
		return parseBool(value, &s.PushEnabled)
	case "break_reminders":
		return parseBool(value, &s.BreakReminders)
	case "daily_summary":
		return parseBool(value, &s.DailySummary)
	case "quiet_hours":
		return parseBool(value, &s.QuietHours.Enabled)
	case "quiet_start":
		s.QuietHours.Start = value
		return nil
	case "quiet_end":
		s.QuietHours.End = value
		return nil
	case "reminder_frequency":
		s.ReminderFrequency = notify.Frequency(value)
		return nil
	case "overdue_frequency":
		s.OverdueFrequency = notify.Frequency(value)
		return nil
	case "show_in_progress_overdue":
		return parseBool(value, &s.ShowInProgressOverdue)
	case "max_reminders_per_task":
		return parseInt(value, &s.MaxRemindersPerTask)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
}

func parseBool(value string, dst *bool) error {
	switch value {
	case "on", "true", "yes", "1":
		*dst = true
	case "off", "false", "no", "0":
		*dst = false
	default:
		return fmt.Errorf("expected on or off, got %q", value)
	}
	return nil
}

func parseInt(value string, dst *int) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("expected a number, got %q", value)
	}
	*dst = n
	return nil
}
