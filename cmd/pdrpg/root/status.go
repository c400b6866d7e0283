package root

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AssQ222/PDRPG/internal/engine"
	"github.com/AssQ222/PDRPG/internal/ui"
)

func newStatusCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show character, today's habits, quests and achievements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				out := cmd.OutOrStdout()

				// Bring quest and achievement state up to date before reading it.
				if _, err := svc.ExpireOverdueQuests(ctx); err != nil {
					return err
				}
				if _, err := svc.UpdateAllQuestProgress(ctx); err != nil {
					return err
				}
				if _, err := svc.CheckAndUpdate(ctx); err != nil {
					return err
				}

				c, err := svc.GetCharacter(ctx)
				if err != nil {
					return err
				}
				printCharacter(out, c)
				fmt.Fprintln(out, "")

				items, date, err := svc.TodayHabits(ctx)
				if err != nil {
					return err
				}
				printToday(out, items, date)
				fmt.Fprintln(out, "")

				qs, err := svc.ActiveQuests(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, ui.H2.Render(ui.IconQuest+" Active quests"))
				printQuests(out, qs)
				fmt.Fprintln(out, "")

				stats, err := svc.AchievementStats(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, ui.H2.Render(ui.IconTrophy+" Achievements"))
				printStats(out, stats)
				return nil
			})
		},
	}

	return cmd
}

func printToday(w io.Writer, items []engine.HabitToday, date string) {
	fmt.Fprintln(w, ui.H2.Render(fmt.Sprintf("%s Habits %s", ui.IconHabit, date)))
	if len(items) == 0 {
		fmt.Fprintln(w, ui.Muted.Render("(no habits)"))
		return
	}
	for _, it := range items {
		value := ""
		if it.Habit.Type == string(engine.HabitCounter) {
			v := 0
			if it.TodayEntry != nil {
				v = it.TodayEntry.Value
			}
			value = ui.Muted.Render(fmt.Sprintf(" %d", v))
			if it.Habit.TargetValue != nil {
				value = ui.Muted.Render(fmt.Sprintf(" %d/%d", v, *it.Habit.TargetValue))
			}
		}
		fmt.Fprintf(w, "%s #%d %s%s %s\n", ui.Check(it.TodayCompleted), it.Habit.ID, it.Habit.Title, value, streakText(it.Habit.CurrentStreak))
	}
}
