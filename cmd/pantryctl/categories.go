package main

import (
	"context"
	"fmt"

	"pantry/internal/app"
	"pantry/internal/models"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"category"},
	Short:   "Manage categories and their order",
}

var categoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories in display order",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			summaries, err := a.Items.CategorySummaries(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "POS\tNAME\tITEMS\tCOLOR\tICON")
			for i, c := range summaries {
				fmt.Fprintf(out, "%d\t%s\t%d\t%s\t%s\n", i+1, c.Name, c.Count, c.Color.Hex(), c.Icon)
			}
			return nil
		})
	},
}

var (
	categoryColor string
	categoryIcon  string
)

var categoriesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category at the top, or recolor an existing one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var icon *models.IconID
		if categoryIcon != "" {
			id, ok := models.IconByName(categoryIcon)
			if !ok {
				return fmt.Errorf("unknown icon %q", categoryIcon)
			}
			icon = &id
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			var color models.ARGB
			if categoryColor != "" {
				c, err := models.ParseARGB(categoryColor)
				if err != nil {
					return err
				}
				color = c
			} else {
				summaries, err := a.Items.CategorySummaries(ctx)
				if err != nil {
					return err
				}
				color = models.Palette[len(summaries)%len(models.Palette)]
			}

			if err := a.Items.AddCategory(ctx, args[0], color, icon); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved category %q (%s)\n", args[0], color.Hex())
			return nil
		})
	},
}

var categoriesMoveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Move a category between positions (as shown by list)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parsePositionArg("from", args[0])
		if err != nil {
			return err
		}
		to, err := parsePositionArg("to", args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Items.MoveCategory(ctx, from-1, to-1); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order: %v\n", a.Items.Categories())
			return nil
		})
	},
}

var categoryCascade bool

var categoriesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a category; use --cascade to delete its items too",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			removed, err := a.Items.DeleteCategory(ctx, args[0], categoryCascade)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %q (%d items removed)\n", args[0], removed)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
	categoriesCmd.AddCommand(categoriesListCmd, categoriesAddCmd, categoriesMoveCmd, categoriesDeleteCmd)

	categoriesAddCmd.Flags().StringVar(&categoryColor, "color", "", "Color as #AARRGGBB")
	categoriesAddCmd.Flags().StringVar(&categoryIcon, "icon", "", "Icon name")
	categoriesDeleteCmd.Flags().BoolVar(&categoryCascade, "cascade", false, "Also delete the category's items")
}
