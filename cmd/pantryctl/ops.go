package main

import (
	"context"
	"fmt"
	"os"

	"pantry/internal/app"
	"pantry/internal/database"
	"pantry/internal/export"
	"pantry/internal/expiry"
	"pantry/internal/notify"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the expiration check once and print the buckets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			logger := a.Logger()
			checker := expiry.NewChecker(a.DB, notify.NewLogSink(logger), a.Config.Pantry.Loc(), logger)
			res, err := checker.Run(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Due today or overdue: %d\n", len(res.DueToday))
			for _, e := range res.DueToday {
				fmt.Fprintf(out, "  #%d %s\n", e.ItemID, e.Label)
			}
			fmt.Fprintf(out, "Expiring soon: %d\n", len(res.DueSoon))
			for _, e := range res.DueSoon {
				fmt.Fprintf(out, "  #%d %s\n", e.ItemID, e.Label)
			}
			return nil
		})
	},
}

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the inventory to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			dir := exportDir
			if dir == "" {
				dir = a.Config.Exports.Path
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create export directory: %w", err)
			}

			items, err := a.Items.ListItems(ctx)
			if err != nil {
				return err
			}
			summaries, err := a.Items.CategorySummaries(ctx)
			if err != nil {
				return err
			}
			path, err := export.WriteInventory(dir, items, summaries, a.Items.Today())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d items to %s\n", len(items), path)
			return nil
		})
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a backup copy of the database now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			backups := database.NewBackupService(a.DB, a.Config.Database.Path, a.Config.Backup, a.Logger())
			path, err := backups.PerformBackup(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", path)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(checkCmd, exportCmd, backupCmd)
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "Output directory (default exports.path)")
}
