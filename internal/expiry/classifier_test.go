package expiry

import (
	"testing"
	"time"

	"pantry/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t time.Time) *time.Time { return &t }

func TestClassify_Scenario(t *testing.T) {
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)
	items := []*models.Item{
		{ID: 1, Name: "Milk", ExpirationDate: at(today)},
		{ID: 2, Name: "Bread", ExpirationDate: at(today.AddDate(0, 0, 1))},
		{ID: 3, Name: "Eggs", ExpirationDate: at(today.AddDate(0, 0, 5))},
		{ID: 4, Name: "Rice"},
	}

	dueToday, dueSoon := Classify(items, today)

	require.Len(t, dueToday, 1)
	assert.Equal(t, "Milk", dueToday[0].Label)
	assert.Equal(t, 0, dueToday[0].Days)
	require.Len(t, dueSoon, 1)
	assert.Equal(t, "Bread (in 1 days)", dueSoon[0].Label)
}

func TestClassify_Buckets(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)
	// afternoon: classification must not depend on the time of day
	now := time.Date(2024, 3, 30, 15, 30, 0, 0, loc)

	items := []*models.Item{
		{Name: "Old cheese", ExpirationDate: at(time.Date(2024, 3, 27, 23, 0, 0, 0, loc))},
		{Name: "Yogurt", ExpirationDate: at(time.Date(2024, 3, 30, 8, 0, 0, 0, loc))},
		// spans the DST switch on 31 March
		{Name: "Ham", ExpirationDate: at(time.Date(2024, 4, 1, 0, 0, 0, 0, loc))},
		{Name: "Kefir", ExpirationDate: at(time.Date(2024, 3, 31, 23, 59, 0, 0, loc))},
		{Name: "Butter", ExpirationDate: at(time.Date(2024, 4, 2, 0, 0, 0, 0, loc))},
	}

	dueToday, dueSoon := Classify(items, now)

	labels := func(es []models.ExpiringEntry) []string {
		out := make([]string, 0, len(es))
		for _, e := range es {
			out = append(out, e.Label)
		}
		return out
	}
	assert.Equal(t, []string{"Old cheese (overdue by 3 days)", "Yogurt"}, labels(dueToday))
	assert.Equal(t, []string{"Ham (in 2 days)", "Kefir (in 1 days)"}, labels(dueSoon))
}

func TestClassify_UsesTodaysLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 23:00 UTC on the 9th is already the 10th in Tokyo
	exp := time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, tokyo)

	assert.Equal(t, 0, DaysUntil(exp, today))
	assert.Equal(t, -1, DaysUntil(exp, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))
}

func TestDaysUntil_DistantDates(t *testing.T) {
	today := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	old := time.Date(1700, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, -119359, DaysUntil(old, today))
	assert.Equal(t, 136310, DaysUntil(time.Date(2400, 1, 1, 0, 0, 0, 0, time.UTC), today))

	due, soon := Classify([]*models.Item{{ID: 1, Name: "Honey", ExpirationDate: &old}}, today)
	require.Len(t, due, 1)
	assert.Empty(t, soon)
	assert.Equal(t, "Honey (overdue by 119359 days)", due[0].Label)
}

func TestNormalize(t *testing.T) {
	in := time.Date(2024, 5, 6, 17, 45, 12, 99, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), Normalize(in))
}

func TestNotifications(t *testing.T) {
	assert.Empty(t, Notifications(nil, nil))

	today := []models.ExpiringEntry{{Label: "Milk"}, {Label: "Ham (overdue by 1 days)"}}
	soon := []models.ExpiringEntry{{Label: "Bread (in 2 days)"}}

	notes := Notifications(today, soon)
	require.Len(t, notes, 2)
	assert.Equal(t, models.Notification{Slot: 1, Title: "eat this today", Body: "Milk, Ham (overdue by 1 days)"}, notes[0])
	assert.Equal(t, models.Notification{Slot: 2, Title: "expiring soon", Body: "Bread (in 2 days)"}, notes[1])

	only := Notifications(nil, soon)
	require.Len(t, only, 1)
	assert.Equal(t, models.SlotDueSoon, only[0].Slot)
}
