package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AssQ222/PDRPG/internal/engine"
	"github.com/AssQ222/PDRPG/internal/ui"
)

func newCharacterCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "character",
		Aliases: []string{"char"},
		Short:   "Show and manage the character",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show level, experience and attributes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				c, err := svc.GetCharacter(ctx)
				if err != nil {
					return err
				}
				printCharacter(cmd.OutOrStdout(), c)
				return nil
			})
		},
	}

	create := &cobra.Command{
		Use:   "create [class]",
		Short: "Create or reset the character (Warrior, Mage, Bard, Rogue)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			class := engine.DefaultClass
			if len(args) == 1 {
				c, err := engine.ParseCharacterClass(args[0])
				if err != nil {
					return err
				}
				class = c
			}
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				c, err := svc.CreateCharacter(ctx, class)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconSparkle+" Character created"))
				printCharacter(cmd.OutOrStdout(), c)
				return nil
			})
		},
	}

	class := &cobra.Command{
		Use:   "class <class>",
		Short: "Change the character class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := engine.ParseCharacterClass(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				view, err := svc.SetCharacterClass(ctx, c)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Class", view.Class))
				return nil
			})
		},
	}

	addExp := &cobra.Command{
		Use:   "add-exp <points>",
		Short: "Grant (or remove, if negative) experience points",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("points are required")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return errors.New("points must be an integer")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			points, _ := strconv.ParseInt(args[0], 10, 64)
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				res, err := svc.AddExperience(ctx, points)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
					ui.Gold.Render(fmt.Sprintf("%+d XP", points)),
					ui.Muted.Render(fmt.Sprintf("(total %d, level %d → %d)", res.Experience, res.LevelBefore, res.Level)))
				if res.LeveledUp {
					fmt.Fprintln(cmd.OutOrStdout(), ui.BadgeLevelUp)
				}
				return nil
			})
		},
	}

	addAttr := &cobra.Command{
		Use:   "add-attr <attribute> <points>",
		Short: "Add points to an attribute (str, int, cha, dex, wis, con)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("attribute and points are required")
			}
			if _, err := strconv.Atoi(args[1]); err != nil {
				return errors.New("points must be an integer")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			points, _ := strconv.Atoi(args[1])
			return withService(cmd, g, func(ctx context.Context, svc *engine.Service) error {
				c, err := svc.AddAttributePoints(ctx, args[0], points)
				if err != nil {
					return err
				}
				printAttributes(cmd.OutOrStdout(), c)
				return nil
			})
		},
	}

	cmd.AddCommand(show, create, class, addExp, addAttr)
	return cmd
}

func printCharacter(w io.Writer, c *engine.CharacterView) {
	p := c.LevelProgress
	fmt.Fprintln(w, ui.Heading(ui.IconCharacter, "Character"))
	fmt.Fprintln(w, ui.LabelValue("Class", c.Class))
	fmt.Fprintln(w, ui.LabelValue("Level", c.Level))
	fmt.Fprintln(w, ui.LabelValue("Experience", fmt.Sprintf("%d %s %.1f%% (%d to next level)",
		c.Experience,
		ui.ProgressBar(c.Experience-p.CurrentLevelExp, p.NextLevelExp-p.CurrentLevelExp, 20),
		p.ProgressPercentage,
		p.ExpToNextLevel)))
	fmt.Fprintln(w, "")
	printAttributes(w, c)
}

func printAttributes(w io.Writer, c *engine.CharacterView) {
	set := engine.AttributeSet(c.Attributes)
	fmt.Fprintln(w, ui.H2.Render("📊 Attributes"))
	for _, attr := range engine.Attributes {
		fmt.Fprintf(w, "- %-13s %d\n", attr, set.Get(attr))
	}
}
