package bot

import (
	"errors"

	"pantry/internal/service"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, service.ErrItemNotFound):
		return "⚠️ No item with that id."
	case errors.Is(err, service.ErrInvalidItem):
		return "⚠️ " + err.Error()
	case errors.Is(err, service.ErrCategoryNotFound):
		return "⚠️ No such category. See /categories."
	case errors.Is(err, service.ErrInvalidCategory):
		return "⚠️ " + err.Error()
	case errors.Is(err, service.ErrCategoryInUse):
		return "⚠️ The category still has items. Use /delcat <name> cascade to delete them too."
	}

	// Default error message
	return "❌ Something went wrong. Please try again later."
}
