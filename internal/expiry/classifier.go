// Package expiry classifies items by days left until expiration and
// turns the result into slot notifications.
package expiry

import (
	"fmt"
	"strings"
	"time"

	"pantry/internal/models"
)

const secondsPerDay = 24 * 60 * 60

// Normalize returns local midnight of t in t's location.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysUntil counts calendar days from today to exp, both taken in today's
// location. Negative means exp is in the past.
func DaysUntil(exp, today time.Time) int {
	ey, em, ed := exp.In(today.Location()).Date()
	ty, tm, td := today.Date()
	// UTC midnights are whole multiples of a day apart; Unix seconds do not
	// saturate the way time.Duration does past ~292 years
	a := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int((a.Unix() - b.Unix()) / secondsPerDay)
}

// Classify splits items into the due-today (or overdue) bucket and the
// due-in-one-or-two-days bucket. Input order is kept; items without an
// expiration date and items further out are left out.
func Classify(items []*models.Item, today time.Time) (dueToday, dueSoon []models.ExpiringEntry) {
	for _, item := range items {
		if !item.HasExpiration() {
			continue
		}
		days := DaysUntil(*item.ExpirationDate, today)
		entry := models.ExpiringEntry{ItemID: item.ID, Name: item.Name, Days: days}
		switch {
		case days == 0:
			entry.Label = item.Name
			dueToday = append(dueToday, entry)
		case days < 0:
			entry.Label = fmt.Sprintf("%s (overdue by %d days)", item.Name, -days)
			dueToday = append(dueToday, entry)
		case days <= models.SoonWindowDays:
			entry.Label = fmt.Sprintf("%s (in %d days)", item.Name, days)
			dueSoon = append(dueSoon, entry)
		}
	}
	return dueToday, dueSoon
}

// Notifications builds one notification per non-empty bucket.
func Notifications(dueToday, dueSoon []models.ExpiringEntry) []models.Notification {
	var out []models.Notification
	if len(dueToday) > 0 {
		out = append(out, models.Notification{
			Slot:  models.SlotDueToday,
			Title: models.TitleDueToday,
			Body:  joinLabels(dueToday),
		})
	}
	if len(dueSoon) > 0 {
		out = append(out, models.Notification{
			Slot:  models.SlotDueSoon,
			Title: models.TitleDueSoon,
			Body:  joinLabels(dueSoon),
		})
	}
	return out
}

func joinLabels(entries []models.ExpiringEntry) string {
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.Label
	}
	return strings.Join(labels, ", ")
}
