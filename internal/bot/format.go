package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pantry/internal/expiry"
	"pantry/internal/models"
)

var severityIcon = map[expiry.Severity]string{
	expiry.SeverityNone:    "⚪️",
	expiry.SeverityFresh:   "🟢",
	expiry.SeverityWarning: "🟡",
	expiry.SeverityExpired: "🔴",
}

func formatItem(item *models.Item, today time.Time) string {
	st := expiry.StatusOf(item, today)
	line := fmt.Sprintf("%s #%d %s", severityIcon[st.Severity], item.ID, item.Name)
	if item.Count > 1 {
		line += fmt.Sprintf(" ×%d", item.Count)
	}
	return line + " · " + st.Label
}

// formatItems groups items by category in order of first appearance.
func formatItems(items []*models.Item, today time.Time) string {
	var order []string
	groups := make(map[string][]*models.Item)
	for _, it := range items {
		if _, ok := groups[it.Category]; !ok {
			order = append(order, it.Category)
		}
		groups[it.Category] = append(groups[it.Category], it)
	}

	var sb strings.Builder
	for i, category := range order {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("📂 " + category + "\n")
		for _, it := range groups[category] {
			sb.WriteString(formatItem(it, today) + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatTimeline(items []*models.Item, today time.Time) string {
	var sb strings.Builder
	sb.WriteString("📅 Timeline\n")
	for _, it := range items {
		st := expiry.StatusOf(it, today)
		sb.WriteString(fmt.Sprintf("%s %s %s (%s)\n",
			severityIcon[st.Severity],
			it.ExpirationDate.In(today.Location()).Format("02.01.2006"),
			it.Name,
			st.Label,
		))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatCategories(summaries []models.CategorySummary) string {
	var sb strings.Builder
	sb.WriteString("🗂 Categories\n")
	for i, c := range summaries {
		sb.WriteString(fmt.Sprintf("%d. %s (%d) · %s · %s\n", i+1, c.Name, c.Count, c.Icon, c.Color.RGBHex()))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatCheckResult(res *expiry.Result) string {
	if res == nil {
		return "Nothing to report."
	}
	text := fmt.Sprintf("🔎 %d due today or overdue, %d expiring soon.", len(res.DueToday), len(res.DueSoon))
	switch {
	case res.Skipped:
		text += "\nNotifications are off, nothing was sent."
	case res.Sent > 0:
		text += fmt.Sprintf("\n%d notifications sent.", res.Sent)
	}
	return text
}

// parseItem reads "name;category;YYYY-MM-DD|-;count;barcode". Only name and
// category are required; name may be empty when a barcode is given.
func parseItem(args string, loc *time.Location) (*models.Item, error) {
	parts := strings.Split(args, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	for len(parts) < 5 {
		parts = append(parts, "")
	}
	if len(parts) > 5 {
		return nil, errors.New("too many fields")
	}

	item := &models.Item{Name: parts[0], Category: parts[1], Barcode: parts[4]}
	if item.Name == "" && item.Barcode == "" {
		return nil, errors.New("name or barcode is required")
	}
	if item.Category == "" {
		return nil, errors.New("category is required")
	}

	if date := parts[2]; date != "" && date != "-" {
		exp, err := time.ParseInLocation("2006-01-02", date, loc)
		if err != nil {
			return nil, fmt.Errorf("bad date %q, expected YYYY-MM-DD", date)
		}
		item.ExpirationDate = &exp
	}

	if count := parts[3]; count != "" {
		n, err := strconv.ParseInt(count, 10, 64)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("bad count %q", count)
		}
		item.Count = n
	}
	return item, nil
}

// parseCategoryArgs reads "<name> [#color] [icon]"; the name may contain spaces.
func parseCategoryArgs(args string) (string, *models.ARGB, *models.IconID, error) {
	fields := strings.Fields(args)
	var (
		color *models.ARGB
		icon  *models.IconID
	)
	for len(fields) > 1 {
		last := fields[len(fields)-1]
		if id, ok := models.IconByName(last); ok && icon == nil {
			icon = &id
		} else if strings.HasPrefix(last, "#") && color == nil {
			c, err := models.ParseARGB(last)
			if err != nil {
				return "", nil, nil, err
			}
			color = &c
		} else {
			break
		}
		fields = fields[:len(fields)-1]
	}

	name := strings.Join(fields, " ")
	if name == "" {
		return "", nil, nil, errors.New("category name is required")
	}
	return name, color, icon, nil
}
