package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pantry/internal/expiry"
	"pantry/internal/export"
	"pantry/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type commandHandler func(ctx context.Context, msg *tgbotapi.Message, args string)

const helpText = `🥫 Pantry

/list [category] - items, optionally of one category
/timeline - dated items, soonest first
/add name;category;YYYY-MM-DD|-;count;barcode - add an item
/consume <id> - use up one unit
/delete <id> - remove an item
/categories - categories in order
/addcat <name> [#AARRGGBB] [icon] - add or recolor a category
/movecat <from> <to> - move a category
/delcat <name> [cascade] - delete a category
/notify on|off - expiration notifications for this chat
/check - run the expiration check now
/export - inventory as a spreadsheet`

func (b *Bot) commandTable() map[string]commandHandler {
	return map[string]commandHandler{
		"start":      b.handleStart,
		"help":       b.handleHelp,
		"list":       b.handleList,
		"timeline":   b.handleTimeline,
		"add":        b.handleAdd,
		"consume":    b.handleConsume,
		"delete":     b.handleDelete,
		"categories": b.handleCategories,
		"addcat":     b.handleAddCategory,
		"movecat":    b.handleMoveCategory,
		"delcat":     b.handleDeleteCategory,
		"notify":     b.handleNotify,
		"check":      b.handleCheck,
		"export":     b.handleExport,
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	l := zerolog.Ctx(ctx)
	l.Debug().
		Int64("user_id", msg.From.ID).
		Str("username", msg.From.UserName).
		Str("text", msg.Text).
		Msg("Handling message")

	if !msg.IsCommand() {
		b.sendMessage(msg.Chat.ID, "Send /help for the list of commands.")
		return
	}

	command := msg.Command()
	handler, ok := b.commands[command]
	if !ok {
		b.sendMessage(msg.Chat.ID, "Unknown command. Send /help for the list of commands.")
		return
	}
	if b.metrics != nil {
		b.metrics.CommandsProcessed.WithLabelValues(command).Inc()
	}
	handler(ctx, msg, strings.TrimSpace(msg.CommandArguments()))
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.tgService.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) replyError(ctx context.Context, chatID int64, err error) {
	if b.metrics != nil {
		b.metrics.ErrorsTotal.Inc()
	}
	zerolog.Ctx(ctx).Warn().Err(err).Int64("chat_id", chatID).Msg("Command failed")
	b.sendMessage(chatID, b.getErrorMessage(err))
}

func (b *Bot) today() time.Time {
	return expiry.Normalize(b.now().In(b.loc))
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message, _ string) {
	if b.subs != nil {
		if _, err := b.subs.Subscribe(ctx, msg.Chat.ID); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to subscribe chat")
		}
	}
	b.sendMessage(msg.Chat.ID, "👋 This chat will get expiration reminders.\n\n"+helpText)
}

func (b *Bot) handleHelp(_ context.Context, msg *tgbotapi.Message, _ string) {
	b.sendMessage(msg.Chat.ID, helpText)
}

func (b *Bot) handleList(ctx context.Context, msg *tgbotapi.Message, args string) {
	var (
		items []*models.Item
		err   error
	)
	if args != "" {
		items, err = b.pantry.ListByCategory(ctx, args)
	} else {
		items, err = b.pantry.ListItems(ctx)
	}
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}
	if len(items) == 0 {
		b.sendMessage(msg.Chat.ID, "The pantry is empty.")
		return
	}
	b.sendMessage(msg.Chat.ID, formatItems(items, b.today()))
}

func (b *Bot) handleTimeline(ctx context.Context, msg *tgbotapi.Message, _ string) {
	items, err := b.pantry.Timeline(ctx)
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}
	if len(items) == 0 {
		b.sendMessage(msg.Chat.ID, "No items with an expiration date.")
		return
	}
	b.sendMessage(msg.Chat.ID, formatTimeline(items, b.today()))
}

func (b *Bot) handleAdd(ctx context.Context, msg *tgbotapi.Message, args string) {
	item, err := parseItem(args, b.loc)
	if err != nil {
		b.sendMessage(msg.Chat.ID, "⚠️ "+err.Error()+"\nUsage: /add name;category;YYYY-MM-DD|-;count;barcode")
		return
	}
	if err := b.pantry.AddItem(ctx, item); err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}
	b.sendMessage(msg.Chat.ID, "✅ Added "+formatItem(item, b.today()))
}

func (b *Bot) handleConsume(ctx context.Context, msg *tgbotapi.Message, args string) {
	id, ok := b.parseID(msg.Chat.ID, args, "/consume <id>")
	if !ok {
		return
	}
	item, removed, err := b.pantry.Consume(ctx, id)
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}
	if removed {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("🍽 %s used up and removed.", item.Name))
		return
	}
	b.sendMessage(msg.Chat.ID, fmt.Sprintf("🍽 %s: %d left.", item.Name, item.Count))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message, args string) {
	id, ok := b.parseID(msg.Chat.ID, args, "/delete <id>")
	if !ok {
		return
	}
	if err := b.pantry.DeleteItem(ctx, id); err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}
	b.sendMessage(msg.Chat.ID, fmt.Sprintf("🗑 Item #%d deleted.", id))
}

func (b *Bot) handleCategories(ctx context.Context, msg *tgbotapi.Message, _ string) {
	summaries, err := b.pantry.CategorySummaries(ctx)
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}
	if len(summaries) == 0 {
		b.sendMessage(msg.Chat.ID, "No categories yet.")
		return
	}
	b.sendMessage(msg.Chat.ID, formatCategories(summaries))
}

func (b *Bot) handleAddCategory(ctx context.Context, msg *tgbotapi.Message, args string) {
	name, color, icon, err := parseCategoryArgs(args)
	if err != nil {
		b.sendMessage(msg.Chat.ID, "⚠️ "+err.Error()+"\nUsage: /addcat <name> [#AARRGGBB] [icon]")
		return
	}
	if color == nil {
		summaries, err := b.pantry.CategorySummaries(ctx)
		if err != nil {
			b.replyError(ctx, msg.Chat.ID, err)
			return
		}
		c := models.Palette[len(summaries)%len(models.Palette)]
		color = &c
	}
	if err := b.pantry.AddCategory(ctx, name, *color, icon); err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}
	b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Category %s saved (%s).", name, color.Hex()))
}

func (b *Bot) handleMoveCategory(ctx context.Context, msg *tgbotapi.Message, args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		b.sendMessage(msg.Chat.ID, "Usage: /movecat <from> <to> (positions from /categories)")
		return
	}
	from, errFrom := strconv.Atoi(fields[0])
	to, errTo := strconv.Atoi(fields[1])
	if errFrom != nil || errTo != nil {
		b.sendMessage(msg.Chat.ID, "⚠️ Positions must be numbers.")
		return
	}
	// positions are shown 1-based
	if err := b.pantry.MoveCategory(ctx, from-1, to-1); err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}
	b.handleCategories(ctx, msg, "")
}

func (b *Bot) handleDeleteCategory(ctx context.Context, msg *tgbotapi.Message, args string) {
	name, cascade := args, false
	if trimmed, ok := strings.CutSuffix(args, " cascade"); ok {
		name, cascade = strings.TrimSpace(trimmed), true
	}
	if name == "" {
		b.sendMessage(msg.Chat.ID, "Usage: /delcat <name> [cascade]")
		return
	}

	removed, err := b.pantry.DeleteCategory(ctx, name, cascade)
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}
	text := fmt.Sprintf("🗑 Category %s deleted.", name)
	if removed > 0 {
		text += fmt.Sprintf(" %d items removed.", removed)
	}
	b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) handleNotify(ctx context.Context, msg *tgbotapi.Message, args string) {
	if b.subs == nil {
		b.sendMessage(msg.Chat.ID, "Notifications are not configured.")
		return
	}

	var err error
	switch strings.ToLower(args) {
	case "on":
		if err = b.subs.SetEnabled(ctx, true); err == nil {
			_, err = b.subs.Subscribe(ctx, msg.Chat.ID)
		}
		if err == nil {
			b.sendMessage(msg.Chat.ID, "🔔 Notifications on for this chat.")
		}
	case "off":
		if err = b.subs.Unsubscribe(ctx, msg.Chat.ID); err == nil {
			b.sendMessage(msg.Chat.ID, "🔕 Notifications off for this chat.")
		}
	case "":
		var enabled bool
		if enabled, err = b.subs.Enabled(ctx); err == nil {
			state := "off"
			if enabled {
				state = "on"
			}
			b.sendMessage(msg.Chat.ID, "Notifications are "+state+". Use /notify on|off.")
		}
	default:
		b.sendMessage(msg.Chat.ID, "Usage: /notify on|off")
	}
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
	}
}

func (b *Bot) handleCheck(ctx context.Context, msg *tgbotapi.Message, _ string) {
	if b.checker == nil {
		b.sendMessage(msg.Chat.ID, "The expiration check is not configured.")
		return
	}
	res, err := b.checker.Run(ctx)
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}
	b.sendMessage(msg.Chat.ID, formatCheckResult(res))
}

func (b *Bot) handleExport(ctx context.Context, msg *tgbotapi.Message, _ string) {
	items, err := b.pantry.ListItems(ctx)
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}
	summaries, err := b.pantry.CategorySummaries(ctx)
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}

	path, err := export.WriteInventory(b.config.Exports.Path, items, summaries, b.today())
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}
	if _, err := b.tgService.SendDocument(msg.Chat.ID, path, fmt.Sprintf("📦 %d items", len(items))); err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
	}
}

func (b *Bot) parseID(chatID int64, args, usage string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimPrefix(args, "#"), 10, 64)
	if err != nil || id <= 0 {
		b.sendMessage(chatID, "Usage: "+usage)
		return 0, false
	}
	return id, true
}
