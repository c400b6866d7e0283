package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AssQ222/PDRPG/internal/engine"
	"github.com/AssQ222/PDRPG/internal/storage"
	"github.com/AssQ222/PDRPG/internal/ui"
)

func newAchievementCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "achievement",
		Aliases: []string{"ach"},
		Short:   "Achievements and badges",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List achievements, optionally by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				var (
					all []storage.Achievement
					err error
				)
				if status == "" {
					all, err = svc.ListAchievements(ctx)
				} else {
					var st engine.AchievementStatus
					if st, err = engine.ParseAchievementStatus(status); err == nil {
						all, err = svc.AchievementsByStatus(ctx, st)
					}
				}
				if err != nil {
					return err
				}
				printAchievements(cmd.OutOrStdout(), all)
				return nil
			})
		},
	}
	list.Flags().StringVarP(&status, "status", "s", "", "Status (locked|available|earned)")

	check := &cobra.Command{
		Use:   "check",
		Short: "Re-evaluate achievements against current progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				changed, err := svc.CheckAndUpdate(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(changed) == 0 {
					fmt.Fprintln(out, ui.Muted.Render("No achievements changed."))
					return nil
				}
				printAchievements(out, changed)
				return nil
			})
		},
	}

	earn := &cobra.Command{
		Use:   "earn <id>",
		Short: "Claim an available achievement",
		Args:  idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				a, err := svc.EarnAchievement(ctx, parseID(args[0]))
				if err != nil {
					return err
				}
				bonus := engine.BonusExp(engine.AchievementType(a.Type), a.RequiredValue)
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n", ui.Good.Render(ui.IconTrophy+" Earned"), a.Icon, a.Name, ui.Gold.Render(fmt.Sprintf("+%d XP", bonus)))
				return nil
			})
		},
	}

	var (
		aType     string
		aRequired int
		aDesc     string
		aIcon     string
	)
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom achievement",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("name is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := engine.ParseAchievementType(aType)
			if err != nil {
				return err
			}
			in := engine.CreateAchievementInput{
				Name:          strings.Join(args, " "),
				Description:   aDesc,
				Type:          typ,
				RequiredValue: aRequired,
				Icon:          aIcon,
			}
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				a, err := svc.CreateAchievement(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s\n", ui.Good.Render(ui.IconPlus+" Added achievement"), a.ID, a.Name)
				return nil
			})
		},
	}
	add.Flags().StringVarP(&aType, "type", "t", string(engine.AchievementTaskCount), "Type (habitstreak|taskcount|characterlevel|questcount)")
	add.Flags().IntVar(&aRequired, "required", 1, "Required value")
	add.Flags().StringVar(&aDesc, "desc", "", "Description")
	add.Flags().StringVar(&aIcon, "icon", ui.IconTrophy, "Icon")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Count achievements by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				s, err := svc.AchievementStats(ctx)
				if err != nil {
					return err
				}
				printStats(cmd.OutOrStdout(), s)
				return nil
			})
		},
	}

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Install the default achievement set into an empty table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				n, err := svc.SeedDefaultAchievements(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", ui.Key.Render("Seeded:"), n)
				return nil
			})
		},
	}

	cmd.AddCommand(list, check, earn, add, stats, seed)
	return cmd
}

func printAchievements(w io.Writer, list []storage.Achievement) {
	if len(list) == 0 {
		fmt.Fprintln(w, ui.Muted.Render("(no achievements)"))
		return
	}
	for _, a := range list {
		fmt.Fprintf(w, "#%d %s %s %s %s\n", a.ID, a.Icon, a.Name, ui.StatusText(a.Status), ui.Muted.Render(fmt.Sprintf("(%s %d)", a.Type, a.RequiredValue)))
	}
}

func printStats(w io.Writer, s engine.AchievementStats) {
	fmt.Fprintf(w, "%s %s %s %s\n",
		ui.LabelValue("Earned", s.Earned),
		ui.LabelValue("Available", s.Available),
		ui.LabelValue("Locked", s.Locked),
		ui.LabelValue("Total", s.Total))
}
