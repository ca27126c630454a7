package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tempo/internal/tempo"
	"github.com/colonyops/tempo/internal/tui"
)

// BoardCmd runs the interactive weekly board.
type BoardCmd struct {
	flags *Flags
	app   *tempo.App
}

// NewBoardCmd creates a new board command.
func NewBoardCmd(flags *Flags, app *tempo.App) *BoardCmd {
	return &BoardCmd{flags: flags, app: app}
}

// Register adds the board command to the application.
func (cmd *BoardCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "board",
		Usage:     "Open the interactive weekly board",
		UsageText: "tempo board",
		Description: `Opens the weekly board.

The board shows the week's tasks grouped by day, tracks time with live
elapsed display, and evaluates notification rules while open.

This is also the default when tempo is run with no arguments.`,
		Action: cmd.run,
	})

	return app
}

// Run executes the board. Exported for use as default command.
func (cmd *BoardCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *BoardCmd) run(ctx context.Context, _ *cli.Command) error {
	model := tui.New(cmd.app, log.Logger)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run board: %w", err)
	}
	return nil
}
