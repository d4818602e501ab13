package main

import (
	"context"
	"fmt"

	"pantry/internal/app"
	"pantry/internal/models"

	"github.com/spf13/cobra"
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Manage pantry items",
}

var itemsListCategory string

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items, soonest expiration first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			var (
				items []*models.Item
				err   error
			)
			if itemsListCategory != "" {
				items, err = a.Items.ListByCategory(ctx, itemsListCategory)
			} else {
				items, err = a.Items.ListItems(ctx)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "ID\tNAME\tCATEGORY\tCOUNT\tEXPIRES\tSTATUS")
			for _, it := range items {
				fmt.Fprintf(out, "%d\t%s\t%s\t%d\t%s\t%s\n",
					it.ID, it.Name, it.Category, it.Count, formatDate(it.ExpirationDate), a.Items.Status(it).Label)
			}
			return nil
		})
	},
}

var (
	itemName     string
	itemCategory string
	itemExpires  string
	itemCount    int64
	itemBarcode  string
)

var itemsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an item",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			expires, err := parseDate(itemExpires, a.Config.Pantry.Loc())
			if err != nil {
				return err
			}
			item := &models.Item{
				Name:           itemName,
				Category:       itemCategory,
				ExpirationDate: expires,
				Count:          itemCount,
				Barcode:        itemBarcode,
			}
			if err := a.Items.AddItem(ctx, item); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added item #%d %q (%s)\n", item.ID, item.Name, item.Category)
			return nil
		})
	},
}

var itemsConsumeCmd = &cobra.Command{
	Use:   "consume <id>",
	Short: "Use up one unit of an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			item, removed, err := a.Items.Consume(ctx, id)
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Item #%d %q used up and removed\n", id, item.Name)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Item #%d %q: %d left\n", id, item.Name, item.Count)
			return nil
		})
	},
}

var itemsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Items.DeleteItem(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted item #%d\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(itemsCmd)
	itemsCmd.AddCommand(itemsListCmd, itemsAddCmd, itemsConsumeCmd, itemsDeleteCmd)

	itemsListCmd.Flags().StringVar(&itemsListCategory, "category", "", "Only list items of this category")

	itemsAddCmd.Flags().StringVar(&itemName, "name", "", "Item name (looked up by --barcode when empty)")
	itemsAddCmd.Flags().StringVar(&itemCategory, "category", "", "Category name")
	itemsAddCmd.Flags().StringVar(&itemExpires, "expires", "", "Expiration date YYYY-MM-DD")
	itemsAddCmd.Flags().Int64Var(&itemCount, "count", 1, "Number of units")
	itemsAddCmd.Flags().StringVar(&itemBarcode, "barcode", "", "Product barcode")
	_ = itemsAddCmd.MarkFlagRequired("category")
}
