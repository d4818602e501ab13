package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pantry/internal/app"

	"github.com/spf13/cobra"
)

func withApp(cmd *cobra.Command, run func(ctx context.Context, a *app.App) error) error {
	path := configPath
	if path == "" {
		path = app.ConfigPath()
	}

	cfg, logger, closer, err := app.Bootstrap(path, "pantryctl")
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return run(ctx, a)
}

func parseIDArg(value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("id must be > 0")
	}
	return v, nil
}

func parsePositionArg(name, value string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s position %q", name, value)
	}
	return v, nil
}

// parseDate reads YYYY-MM-DD; "" and "-" mean no expiration date.
func parseDate(value string, loc *time.Location) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "-" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", value)
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}
