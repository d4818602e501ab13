package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"pantry/internal/app"
	"pantry/internal/models"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// seedItem is one entry of the items file.
type seedItem struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Expires  string `yaml:"expires"`
	Count    int64  `yaml:"count"`
	Barcode  string `yaml:"barcode"`
}

type seedFile struct {
	Categories []string   `yaml:"categories"`
	Items      []seedItem `yaml:"items"`
}

func loadSeedFile(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &seed, nil
}

func (s seedItem) toItem(loc *time.Location) (*models.Item, error) {
	expires, err := parseDate(s.Expires, loc)
	if err != nil {
		return nil, fmt.Errorf("item %q: %w", s.Name, err)
	}
	return &models.Item{
		Name:           s.Name,
		Category:       s.Category,
		ExpirationDate: expires,
		Count:          s.Count,
		Barcode:        s.Barcode,
	}, nil
}

func itemKey(name, category string, expires *time.Time) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.TrimSpace(category) + "|" + formatDate(expires)
}

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load categories and items from a YAML file",
	Long:  "import adds the file's categories and items. Items already present with the same name, category and expiration date are skipped, so the command can be re-run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, err := loadSeedFile(importFile)
		if err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			loc := a.Config.Pantry.Loc()

			existing, err := a.Items.ListItems(ctx)
			if err != nil {
				return err
			}
			seen := make(map[string]bool, len(existing))
			for _, it := range existing {
				seen[itemKey(it.Name, it.Category, it.ExpirationDate)] = true
			}

			categories := 0
			known := a.Items.Categories()
			// added in reverse so the file order ends up on top
			for i := len(seed.Categories) - 1; i >= 0; i-- {
				name := strings.TrimSpace(seed.Categories[i])
				if name == "" || slices.Contains(known, name) {
					continue
				}
				color := models.Palette[(len(known)+categories)%len(models.Palette)]
				if err := a.Items.AddCategory(ctx, name, color, nil); err != nil {
					return err
				}
				categories++
			}

			added, skipped := 0, 0
			for _, s := range seed.Items {
				item, err := s.toItem(loc)
				if err != nil {
					return err
				}
				key := itemKey(item.Name, item.Category, item.ExpirationDate)
				if seen[key] {
					skipped++
					continue
				}
				if err := a.Items.AddItem(ctx, item); err != nil {
					return fmt.Errorf("item %q: %w", s.Name, err)
				}
				seen[key] = true
				added++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d categories, %d items (%d skipped)\n", categories, added, skipped)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importFile, "file", "configs/items.yaml", "Items file")
}
