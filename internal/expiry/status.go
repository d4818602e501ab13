package expiry

import (
	"fmt"
	"time"

	"pantry/internal/models"
)

type Severity string

const (
	SeverityNone    Severity = "none"
	SeverityFresh   Severity = "fresh"
	SeverityWarning Severity = "warning"
	SeverityExpired Severity = "expired"
)

// Status is the short human label shown next to an item.
type Status struct {
	Label    string   `json:"label"`
	Severity Severity `json:"severity"`
	Days     *int     `json:"days,omitempty"`
}

// StatusOf describes how far an item is from its expiration date.
func StatusOf(item *models.Item, today time.Time) Status {
	if !item.HasExpiration() {
		return Status{Label: "no expiry", Severity: SeverityNone}
	}

	days := DaysUntil(*item.ExpirationDate, today)
	st := Status{Days: &days, Severity: SeverityFresh}
	switch {
	case days < 0:
		st.Severity = SeverityExpired
	case days < 2:
		st.Severity = SeverityWarning
	}

	switch {
	case days < 0:
		st.Label = "expired"
	case days == 0:
		st.Label = "today"
	case days == 1:
		st.Label = "tomorrow"
	case days <= 7:
		st.Label = fmt.Sprintf("%d days", days)
	default:
		st.Label = item.ExpirationDate.In(today.Location()).Format("02.01.2006")
	}
	return st
}
