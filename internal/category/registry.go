// Package category keeps the ordered category list and per-category
// color/icon attributes in a settings store.
package category

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"pantry/internal/domain"
	"pantry/internal/models"

	"github.com/rs/zerolog"
)

// Registry is safe for concurrent use. Mutations persist before returning.
type Registry struct {
	mu       sync.RWMutex
	store    domain.SettingsStore
	defaults []string
	logger   *zerolog.Logger

	categories []string
	attrs      map[string]models.CategoryAttributes
}

func NewRegistry(store domain.SettingsStore, defaults []string, logger *zerolog.Logger) *Registry {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	if len(defaults) == 0 {
		defaults = models.DefaultCategories
	}
	return &Registry{
		store:      store,
		defaults:   append([]string(nil), defaults...),
		logger:     logger,
		categories: dedupe(defaults),
		attrs:      make(map[string]models.CategoryAttributes),
	}
}

// Load reads the persisted order and attributes. Without a persisted order
// the default list is used.
func (r *Registry) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.refresh(ctx); err != nil {
		return err
	}
	if err := r.importLegacy(ctx); err != nil {
		return err
	}

	r.logger.Debug().Strs("categories", r.categories).Int("attributes", len(r.attrs)).Msg("category registry loaded")
	return nil
}

// refresh replaces the in-memory state with the stored one. Mutations call it
// first: the bot and the API server share one store, each with its own
// registry. Callers hold mu.
func (r *Registry) refresh(ctx context.Context) error {
	raw, ok, err := r.store.Get(ctx, models.KeyCategoriesOrder)
	if err != nil {
		return fmt.Errorf("load category order: %w", err)
	}
	categories := dedupe(r.defaults)
	if ok {
		categories = parseOrder(raw)
	}

	attrs := make(map[string]models.CategoryAttributes)
	raw, ok, err = r.store.Get(ctx, models.KeyCategoryAttributes)
	if err != nil {
		return fmt.Errorf("load category attributes: %w", err)
	}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
			r.logger.Warn().Err(err).Msg("Ignoring malformed category attributes")
			attrs = make(map[string]models.CategoryAttributes)
		}
	}

	r.categories = categories
	r.attrs = attrs
	return nil
}

// parseOrder accepts the JSON array form and the legacy comma-joined form.
func parseOrder(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		var names []string
		if err := json.Unmarshal([]byte(trimmed), &names); err == nil {
			return dedupe(names)
		}
	}
	return dedupe(strings.Split(raw, ","))
}

func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// importLegacy folds color_<name>/icon_idx_<name> keys into the attributes
// record and removes them. Values already in the record win.
func (r *Registry) importLegacy(ctx context.Context) error {
	colorKeys, err := r.store.Keys(ctx, models.LegacyColorPrefix)
	if err != nil {
		return fmt.Errorf("list legacy color keys: %w", err)
	}
	iconKeys, err := r.store.Keys(ctx, models.LegacyIconPrefix)
	if err != nil {
		return fmt.Errorf("list legacy icon keys: %w", err)
	}
	if len(colorKeys) == 0 && len(iconKeys) == 0 {
		return nil
	}

	imported := make(map[string]models.CategoryAttributes)
	get := func(name string) models.CategoryAttributes {
		if a, ok := imported[name]; ok {
			return a
		}
		return models.CategoryAttributes{Icon: models.IconNone}
	}

	for _, key := range colorKeys {
		name := strings.TrimPrefix(key, models.LegacyColorPrefix)
		v, ok, err := r.store.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("read %s: %w", key, err)
		}
		color, perr := parseLegacyColor(v)
		if !ok || perr != nil {
			r.logger.Warn().Str("key", key).Msg("Skipping unreadable legacy color")
			continue
		}
		a := get(name)
		a.Color = color
		imported[name] = a
	}
	for _, key := range iconKeys {
		name := strings.TrimPrefix(key, models.LegacyIconPrefix)
		v, ok, err := r.store.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("read %s: %w", key, err)
		}
		idx, perr := strconv.Atoi(strings.TrimSpace(v))
		if !ok || perr != nil {
			r.logger.Warn().Str("key", key).Msg("Skipping unreadable legacy icon")
			continue
		}
		a := get(name)
		a.Icon = models.IconID(idx)
		imported[name] = a
	}

	attrs := maps.Clone(r.attrs)
	for name, a := range imported {
		cur, exists := attrs[name]
		if !exists {
			attrs[name] = a
			continue
		}
		if cur.Color == 0 {
			cur.Color = a.Color
		}
		if !cur.Icon.Valid() {
			cur.Icon = a.Icon
		}
		attrs[name] = cur
	}

	if err := r.saveAttributes(ctx, attrs); err != nil {
		return err
	}
	keys := append(colorKeys, iconKeys...)
	if err := r.store.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("remove legacy category keys: %w", err)
	}
	r.logger.Info().Int("categories", len(imported)).Msg("Imported legacy category attributes")
	return nil
}

// parseLegacyColor reads a color stored as a signed 32-bit int.
func parseLegacyColor(v string) (models.ARGB, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.ParseInt(v, 10, 32); err == nil {
		return models.ARGB(uint32(int32(n))), nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, err
	}
	return models.ARGB(n), nil
}

// Categories returns a copy of the ordered list.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.categories...)
}

// Reorder moves the category at from to position to. Equal or
// out-of-range indices are ignored.
func (r *Registry) Reorder(ctx context.Context, from, to int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.refresh(ctx); err != nil {
		return err
	}

	n := len(r.categories)
	if from == to || from < 0 || to < 0 || from >= n || to >= n {
		return nil
	}

	name := r.categories[from]
	list := append(r.categories[:from:from], r.categories[from+1:]...)
	list = append(list[:to], append([]string{name}, list[to:]...)...)
	return r.saveOrder(ctx, list)
}

// SyncWithItems appends categories referenced by items but missing from the
// list, in first-seen order. Nothing is written when nothing is missing.
func (r *Registry) SyncWithItems(ctx context.Context, items []*models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.refresh(ctx); err != nil {
		return err
	}

	known := make(map[string]bool, len(r.categories))
	for _, c := range r.categories {
		known[c] = true
	}

	var added []string
	for _, it := range items {
		if it == nil || strings.TrimSpace(it.Category) == "" || known[it.Category] {
			continue
		}
		known[it.Category] = true
		added = append(added, it.Category)
	}
	if len(added) == 0 {
		return nil
	}

	r.logger.Debug().Strs("added", added).Msg("categories synced from items")
	return r.saveOrder(ctx, append(slices.Clone(r.categories), added...))
}

// AddCategory puts a new name at the front of the list and records its color,
// and icon when given. For an existing name only the attributes change.
func (r *Registry) AddCategory(ctx context.Context, name string, color models.ARGB, icon *models.IconID) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("category name must not be blank")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.refresh(ctx); err != nil {
		return err
	}

	if !r.contains(name) {
		if err := r.saveOrder(ctx, append([]string{name}, r.categories...)); err != nil {
			return err
		}
	}

	a, ok := r.attrs[name]
	if !ok {
		a.Icon = models.IconNone
	}
	a.Color = color
	if icon != nil {
		a.Icon = *icon
	}
	attrs := maps.Clone(r.attrs)
	attrs[name] = a
	return r.saveAttributes(ctx, attrs)
}

// UpdateColor changes a category color and keeps its icon.
func (r *Registry) UpdateColor(ctx context.Context, name string, color models.ARGB) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.refresh(ctx); err != nil {
		return err
	}

	a, ok := r.attrs[name]
	if !ok {
		a.Icon = models.IconNone
	}
	a.Color = color
	attrs := maps.Clone(r.attrs)
	attrs[name] = a
	return r.saveAttributes(ctx, attrs)
}

// RemoveCategory drops the name and its attributes. Items are left alone.
func (r *Registry) RemoveCategory(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.refresh(ctx); err != nil {
		return err
	}

	if i := slices.Index(r.categories, name); i >= 0 {
		if err := r.saveOrder(ctx, slices.Delete(slices.Clone(r.categories), i, i+1)); err != nil {
			return err
		}
	}

	if _, ok := r.attrs[name]; ok {
		attrs := maps.Clone(r.attrs)
		delete(attrs, name)
		return r.saveAttributes(ctx, attrs)
	}
	return nil
}

// Contains reports whether name is registered.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.contains(name)
}

func (r *Registry) contains(name string) bool {
	for _, c := range r.categories {
		if c == name {
			return true
		}
	}
	return false
}

// ColorOf resolves a display color: stored color, the built-in color of a
// default category, the palette entry for the list position, then gray.
func (r *Registry) ColorOf(name string) models.ARGB {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.attrs[name]; ok && a.Color != 0 {
		return a.Color
	}
	if c, ok := models.DefaultCategoryColors[name]; ok {
		return c
	}
	for i, c := range r.categories {
		if c == name {
			return models.Palette[i%len(models.Palette)]
		}
	}
	return models.ColorGray
}

// IconOf resolves the stored icon or a thematic one matched by name.
func (r *Registry) IconOf(name string) models.IconID {
	r.mu.RLock()
	a, ok := r.attrs[name]
	r.mu.RUnlock()

	if ok && a.Icon.Valid() {
		return a.Icon
	}
	return ThematicIcon(name)
}

var thematic = []struct {
	keywords []string
	icon     models.IconID
}{
	{[]string{"vegetable", "fruit", "veg"}, models.IconEco},
	{[]string{"dairy", "egg", "milk", "cheese"}, models.IconEgg},
	{[]string{"meat", "sausage"}, models.IconRestaurantMenu},
	{[]string{"bread", "bakery", "pastry"}, models.IconBreakfastDining},
	{[]string{"drink", "juice", "water"}, models.IconLocalDrink},
	{[]string{"frozen", "freezer"}, models.IconAcUnit},
	{[]string{"snack", "sweet", "cookie"}, models.IconCookie},
	{[]string{"coffee", "tea"}, models.IconLocalCafe},
	{[]string{"fish", "seafood"}, models.IconSetMeal},
	{[]string{"alcohol", "wine", "beer"}, models.IconLiquor},
}

// ThematicIcon guesses an icon from the category name, IconNone if nothing fits.
func ThematicIcon(name string) models.IconID {
	lower := strings.ToLower(name)
	for _, t := range thematic {
		for _, k := range t.keywords {
			if strings.Contains(lower, k) {
				return t.icon
			}
		}
	}
	return models.IconNone
}

// saveOrder persists list and only then makes it current.
func (r *Registry) saveOrder(ctx context.Context, list []string) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode category order: %w", err)
	}
	if err := r.store.Set(ctx, models.KeyCategoriesOrder, string(data)); err != nil {
		return fmt.Errorf("save category order: %w", err)
	}
	r.categories = list
	return nil
}

func (r *Registry) saveAttributes(ctx context.Context, attrs map[string]models.CategoryAttributes) error {
	data, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("encode category attributes: %w", err)
	}
	if err := r.store.Set(ctx, models.KeyCategoryAttributes, string(data)); err != nil {
		return fmt.Errorf("save category attributes: %w", err)
	}
	r.attrs = attrs
	return nil
}
