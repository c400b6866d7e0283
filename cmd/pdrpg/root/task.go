package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AssQ222/PDRPG/internal/engine"
	"github.com/AssQ222/PDRPG/internal/ui"
)

func newTaskCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	var goal bool
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				t, err := svc.CreateTask(ctx, engine.CreateTaskInput{Title: strings.Join(args, " "), GoalRelated: goal})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s\n", ui.Good.Render(ui.IconPlus+" Added"), t.ID, t.Title)
				return nil
			})
		},
	}
	add.Flags().BoolVarP(&goal, "goal", "g", false, "Mark the task as goal related (bigger reward)")

	var showAll bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				tasks, err := svc.ListTasks(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, ui.Heading(ui.IconTask, "Tasks"))
				shown := 0
				for _, t := range tasks {
					if t.Completed && !showAll {
						continue
					}
					goal := ""
					if t.GoalRelated {
						goal = " " + ui.Gold.Render("[goal]")
					}
					fmt.Fprintf(out, "%s #%d %s%s\n", ui.Check(t.Completed), t.ID, t.Title, goal)
					shown++
				}
				if shown == 0 {
					fmt.Fprintln(out, ui.Muted.Render("(no tasks)"))
				}
				return nil
			})
		},
	}
	list.Flags().BoolVarP(&showAll, "all", "a", false, "Include completed tasks")

	toggle := &cobra.Command{
		Use:     "toggle <id>",
		Aliases: []string{"do"},
		Short:   "Toggle a task between open and completed",
		Args:    idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				res, err := svc.ToggleTask(ctx, parseID(args[0]))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !res.Task.Completed {
					fmt.Fprintf(out, "%s #%d %s\n", ui.Warn.Render("Reopened"), res.Task.ID, res.Task.Title)
					return nil
				}
				fmt.Fprintf(out, "%s #%d %s\n", ui.Good.Render(ui.IconDone+" Completed"), res.Task.ID, res.Task.Title)
				printReward(out, res.Reward, res.RewardApplied)
				return nil
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				id := parseID(args[0])
				if err := svc.DeleteTask(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s #%d\n", ui.Muted.Render("Deleted task"), id)
				return nil
			})
		},
	}

	cmd.AddCommand(add, list, toggle, rm)
	return cmd
}

func printReward(w io.Writer, r *engine.Reward, applied bool) {
	if r == nil {
		return
	}
	line := ui.Gold.Render(fmt.Sprintf("+%d XP", r.Exp))
	if r.HasAttribute {
		line += " " + ui.Key.Render(fmt.Sprintf("+1 %s", r.Attribute))
	}
	if !applied {
		line += " " + ui.Warn.Render(ui.IconWarn+" reward not applied, see log")
	}
	fmt.Fprintln(w, line)
}
