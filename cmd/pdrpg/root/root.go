package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AssQ222/PDRPG/internal/config"
	"github.com/AssQ222/PDRPG/internal/ui"
)

const Version = "1.0.0"

// globals holds the persistent flags and the configuration they resolve to.
type globals struct {
	dbPath   string
	envFiles []string
	cfg      config.Config
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	cmd := &cobra.Command{
		Use:           "pdrpg",
		Short:         "PDRPG: personal development RPG",
		Long:          "PDRPG tracks tasks, habits, weekly quests and achievements and turns them into character progression.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.envFiles...)
			if err != nil {
				return err
			}
			if g.dbPath != "" {
				cfg.DBPath = g.dbPath
			}
			g.cfg = cfg
			return nil
		},
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	cmd.PersistentFlags().StringVar(&g.dbPath, "db", "", "Database file (overrides PDRPG_DB_PATH)")
	cmd.PersistentFlags().StringSliceVar(&g.envFiles, "env-file", nil, "Env files to load (default .env)")

	cmd.AddCommand(
		newCharacterCmd(g),
		newTaskCmd(g),
		newHabitCmd(g),
		newQuestCmd(g),
		newAchievementCmd(g),
		newStatusCmd(g),
		newBoardCmd(g),
		newServeCmd(g),
	)
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
