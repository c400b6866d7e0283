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

func newQuestCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quest",
		Short: "Weekly quests",
	}

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate this week's quests (no-op if they exist)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				qs, err := svc.GenerateWeeklyQuests(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(qs) == 0 {
					fmt.Fprintln(out, ui.Muted.Render("Quests for this week already exist."))
					return nil
				}
				fmt.Fprintln(out, ui.Heading(ui.IconQuest, fmt.Sprintf("Generated %d quests", len(qs))))
				printQuests(out, qs)
				return nil
			})
		},
	}

	var (
		week   string
		status string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List quests, optionally for one week or status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := engine.QuestFilter{Week: week}
			if status != "" {
				st, err := engine.ParseQuestStatus(status)
				if err != nil {
					return err
				}
				f.Status = st
			}
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				qs, err := svc.ListQuests(ctx, f)
				if err != nil {
					return err
				}
				printQuests(cmd.OutOrStdout(), qs)
				return nil
			})
		},
	}
	list.Flags().StringVarP(&week, "week", "w", "", "ISO week (YYYY-WW)")
	list.Flags().StringVarP(&status, "status", "s", "", "Status (active|completed|expired)")

	active := &cobra.Command{
		Use:   "active",
		Short: "List this week's active quests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				qs, err := svc.ActiveQuests(ctx)
				if err != nil {
					return err
				}
				printQuests(cmd.OutOrStdout(), qs)
				return nil
			})
		},
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Recompute progress of this week's active quests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				changed, err := svc.UpdateAllQuestProgress(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(changed) == 0 {
					fmt.Fprintln(out, ui.Muted.Render("No quest progress changed."))
					return nil
				}
				printQuests(out, changed)
				return nil
			})
		},
	}

	expire := &cobra.Command{
		Use:   "expire",
		Short: "Expire active quests past their deadline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				n, err := svc.ExpireOverdueQuests(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", ui.Key.Render("Expired:"), n)
				return nil
			})
		},
	}

	complete := &cobra.Command{
		Use:   "complete <id>",
		Short: "Complete an active quest and collect its reward",
		Args:  idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				q, err := svc.CompleteQuest(ctx, parseID(args[0]))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s %s\n", ui.Good.Render(ui.IconTrophy+" Completed"), q.ID, q.Title, ui.Gold.Render(fmt.Sprintf("+%d XP", q.RewardExp)))
				return nil
			})
		},
	}

	var (
		qType     string
		qTarget   int
		qReward   int64
		qDesc     string
		qCategory string
		qHabit    int64
	)
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a custom quest for this week",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := engine.ParseQuestType(qType)
			if err != nil {
				return err
			}
			in := engine.CreateQuestInput{
				Title:       strings.Join(args, " "),
				Description: qDesc,
				Type:        typ,
				TargetValue: qTarget,
				RewardExp:   qReward,
			}
			if qCategory != "" {
				in.Category = &qCategory
			}
			if cmd.Flags().Changed("habit") {
				in.HabitID = &qHabit
			}
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				q, err := svc.CreateQuest(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s\n", ui.Good.Render(ui.IconPlus+" Added quest"), q.ID, q.Title)
				return nil
			})
		},
	}
	add.Flags().StringVarP(&qType, "type", "t", string(engine.QuestTask), "Quest type (task|habit|character)")
	add.Flags().IntVar(&qTarget, "target", 1, "Target value")
	add.Flags().Int64Var(&qReward, "reward", 100, "Experience reward")
	add.Flags().StringVar(&qDesc, "desc", "", "Description")
	add.Flags().StringVar(&qCategory, "category", "", "Task keyword to count (task quests)")
	add.Flags().Int64Var(&qHabit, "habit", 0, "Habit id (habit quests)")

	cmd.AddCommand(generate, list, active, update, expire, complete, add)
	return cmd
}

func printQuests(w io.Writer, qs []storage.Quest) {
	if len(qs) == 0 {
		fmt.Fprintln(w, ui.Muted.Render("(no quests)"))
		return
	}
	for _, q := range qs {
		deadline := ""
		if q.Deadline != nil {
			deadline = " due " + q.Deadline.Format(engine.DateLayout)
		}
		fmt.Fprintf(w, "#%d %s %s %d/%d %s %s\n",
			q.ID,
			ui.ProgressBar(int64(q.CurrentProgress), int64(q.TargetValue), 10),
			q.Title,
			q.CurrentProgress, q.TargetValue,
			ui.StatusText(q.Status),
			ui.Muted.Render(fmt.Sprintf("(%s, +%d XP, week %s%s)", q.Type, q.RewardExp, q.Week, deadline)))
	}
}
