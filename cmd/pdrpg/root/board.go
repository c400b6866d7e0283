package root

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/AssQ222/PDRPG/internal/engine"
	"github.com/AssQ222/PDRPG/internal/tui"
)

func newBoardCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the TUI dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				return tui.RunBoard(ctx, svc, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}

	return cmd
}
