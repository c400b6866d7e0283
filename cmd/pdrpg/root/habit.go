package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AssQ222/PDRPG/internal/engine"
	"github.com/AssQ222/PDRPG/internal/storage"
	"github.com/AssQ222/PDRPG/internal/ui"
)

func newHabitCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "Manage habits and log daily entries",
	}

	var (
		habitType string
		target    int
	)
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a habit",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := engine.ParseHabitType(habitType)
			if err != nil {
				return err
			}
			in := engine.CreateHabitInput{Title: strings.Join(args, " "), Type: typ}
			if cmd.Flags().Changed("target") {
				in.TargetValue = &target
			}
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				h, err := svc.CreateHabit(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s %s\n", ui.Good.Render(ui.IconPlus+" Added"), h.ID, h.Title, ui.Muted.Render("("+h.Type+")"))
				return nil
			})
		},
	}
	add.Flags().StringVarP(&habitType, "type", "t", string(engine.HabitBoolean), "Habit type (boolean|counter)")
	add.Flags().IntVar(&target, "target", 0, "Daily target for counter habits")

	list := &cobra.Command{
		Use:   "list",
		Short: "List habits with their current streaks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				habits, err := svc.ListHabits(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, ui.Heading(ui.IconHabit, "Habits"))
				if len(habits) == 0 {
					fmt.Fprintln(out, ui.Muted.Render("(no habits)"))
				}
				for _, h := range habits {
					fmt.Fprintf(out, "#%d %s %s %s\n", h.ID, h.Title, ui.Muted.Render(habitDetail(h)), streakText(h.CurrentStreak))
				}
				return nil
			})
		},
	}

	var (
		editTitle  string
		editTarget int
	)
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a habit's title or target",
		Args:  idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := parseID(args[0])
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				var in engine.UpdateHabitInput
				if cmd.Flags().Changed("title") {
					in.Title = &editTitle
				}
				if cmd.Flags().Changed("target") {
					in.TargetValue = &editTarget
				}
				updated, err := svc.UpdateHabit(ctx, id, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s %s\n", ui.Good.Render("Updated"), updated.ID, updated.Title, ui.Muted.Render(habitDetail(*updated)))
				return nil
			})
		},
	}
	edit.Flags().StringVar(&editTitle, "title", "", "New title")
	edit.Flags().IntVar(&editTarget, "target", 0, "New daily target")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a habit and all of its entries",
		Args:  idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				id := parseID(args[0])
				if err := svc.DeleteHabit(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s #%d\n", ui.Muted.Render("Deleted habit"), id)
				return nil
			})
		},
	}

	var (
		logDate  string
		logValue int
		logUndo  bool
	)
	logCmd := &cobra.Command{
		Use:   "log <id>",
		Short: "Record a habit entry (today by default)",
		Long: `Record the entry for one habit and day, replacing any earlier entry.

Boolean habits are marked done unless --undo is given. Counter habits
record --value. The streak is recomputed and a completed entry earns a
streak-scaled reward.`,
		Args: idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := engine.LogEntryInput{
				HabitID:   parseID(args[0]),
				Date:      logDate,
				Completed: !logUndo,
				Value:     logValue,
			}
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				res, err := svc.LogHabitEntry(ctx, in)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s habit #%d on %s %s\n", ui.Good.Render(ui.IconDone+" Logged"), res.Entry.HabitID, res.Entry.Date, streakText(res.Streak))
				printReward(out, res.Reward, res.RewardApplied)
				return nil
			})
		},
	}
	logCmd.Flags().StringVar(&logDate, "date", "", "Day to log (YYYY-MM-DD, default today)")
	logCmd.Flags().IntVarP(&logValue, "value", "v", 0, "Counter value")
	logCmd.Flags().BoolVar(&logUndo, "undo", false, "Record the day as not done")

	var entriesDate string
	entries := &cobra.Command{
		Use:   "entries [id]",
		Short: "List entries for a habit, or for every habit on --date",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if !cmd.Flags().Changed("date") {
					return errors.New("habit id or --date is required")
				}
				return nil
			}
			return idArg(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				var (
					list []storage.HabitEntry
					err  error
				)
				if len(args) == 1 {
					list, err = svc.ListHabitEntries(ctx, parseID(args[0]))
				} else {
					list, err = svc.EntriesForDate(ctx, entriesDate)
				}
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, ui.Muted.Render("(no entries)"))
				}
				for _, e := range list {
					fmt.Fprintf(out, "%s habit #%d %s value=%d\n", ui.Check(e.Completed), e.HabitID, e.Date, e.Value)
				}
				return nil
			})
		},
	}
	entries.Flags().StringVar(&entriesDate, "date", "", "Day to list (YYYY-MM-DD)")

	today := &cobra.Command{
		Use:   "today",
		Short: "Show every habit with today's progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				items, date, err := svc.TodayHabits(ctx)
				if err != nil {
					return err
				}
				printToday(cmd.OutOrStdout(), items, date)
				return nil
			})
		},
	}

	cmd.AddCommand(add, list, edit, rm, logCmd, entries, today)
	return cmd
}

func habitDetail(h storage.Habit) string {
	if h.Type == string(engine.HabitCounter) && h.TargetValue != nil {
		return fmt.Sprintf("(%s, target %d)", h.Type, *h.TargetValue)
	}
	return "(" + h.Type + ")"
}

func streakText(n int) string {
	if n == 0 {
		return ui.Muted.Render("no streak")
	}
	return ui.Warn.Render(fmt.Sprintf("%s %d day streak", ui.IconFire, n))
}
