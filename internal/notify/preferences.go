// Package notify delivers expiration notifications.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strconv"

	"pantry/internal/config"
	"pantry/internal/domain"
	"pantry/internal/models"
)

// Preferences holds the notification switch and the subscribed chats in
// the settings store.
type Preferences struct {
	store          domain.SettingsStore
	defaultEnabled bool
	staticChats    []int64
}

func NewPreferences(store domain.SettingsStore, cfg config.NotificationsConfig) *Preferences {
	return &Preferences{
		store:          store,
		defaultEnabled: cfg.Enabled,
		staticChats:    cfg.ChatIDs,
	}
}

func (p *Preferences) Enabled(ctx context.Context) (bool, error) {
	raw, ok, err := p.store.Get(ctx, models.KeyNotificationsEnabled)
	if err != nil {
		return false, fmt.Errorf("read notification switch: %w", err)
	}
	if !ok {
		return p.defaultEnabled, nil
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return p.defaultEnabled, nil
	}
	return enabled, nil
}

func (p *Preferences) SetEnabled(ctx context.Context, enabled bool) error {
	return p.store.Set(ctx, models.KeyNotificationsEnabled, strconv.FormatBool(enabled))
}

// Chats returns configured and subscribed chats, sorted and unique.
// Configured chats that opted out with Unsubscribe are left out.
func (p *Preferences) Chats(ctx context.Context) ([]int64, error) {
	stored, err := p.readIDs(ctx, models.KeyNotifyChats)
	if err != nil {
		return nil, err
	}
	muted, err := p.readIDs(ctx, models.KeyNotifyMuted)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]bool)
	for _, id := range muted {
		seen[id] = true
	}
	var out []int64
	for _, id := range append(append([]int64(nil), p.staticChats...), stored...) {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (p *Preferences) readIDs(ctx context.Context, key string) ([]int64, error) {
	raw, ok, err := p.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return ids, nil
}

func (p *Preferences) saveIDs(ctx context.Context, key string, ids []int64) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return p.store.Set(ctx, key, string(data))
}

func (p *Preferences) isStatic(chatID int64) bool {
	return slices.Contains(p.staticChats, chatID)
}

// Subscribe turns notifications on for a chat; it reports false when the
// chat was already receiving them.
func (p *Preferences) Subscribe(ctx context.Context, chatID int64) (bool, error) {
	muted, err := p.readIDs(ctx, models.KeyNotifyMuted)
	if err != nil {
		return false, err
	}
	if i := slices.Index(muted, chatID); i >= 0 {
		if err := p.saveIDs(ctx, models.KeyNotifyMuted, slices.Delete(muted, i, i+1)); err != nil {
			return false, err
		}
		return true, nil
	}
	if p.isStatic(chatID) {
		return false, nil
	}

	ids, err := p.readIDs(ctx, models.KeyNotifyChats)
	if err != nil {
		return false, err
	}
	if slices.Contains(ids, chatID) {
		return false, nil
	}
	return true, p.saveIDs(ctx, models.KeyNotifyChats, append(ids, chatID))
}

// Unsubscribe turns notifications off for a chat, including a configured one.
func (p *Preferences) Unsubscribe(ctx context.Context, chatID int64) error {
	ids, err := p.readIDs(ctx, models.KeyNotifyChats)
	if err != nil {
		return err
	}
	if i := slices.Index(ids, chatID); i >= 0 {
		if err := p.saveIDs(ctx, models.KeyNotifyChats, slices.Delete(ids, i, i+1)); err != nil {
			return err
		}
	}
	if !p.isStatic(chatID) {
		return nil
	}

	muted, err := p.readIDs(ctx, models.KeyNotifyMuted)
	if err != nil {
		return err
	}
	if slices.Contains(muted, chatID) {
		return nil
	}
	return p.saveIDs(ctx, models.KeyNotifyMuted, append(muted, chatID))
}
