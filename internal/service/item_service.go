package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"pantry/internal/config"
	"pantry/internal/domain"
	"pantry/internal/events"
	"pantry/internal/expiry"
	"pantry/internal/models"

	"github.com/rs/zerolog"
)

// ItemService owns item mutations and keeps the category registry in step
// with the items after each of them.
type ItemService struct {
	repo     domain.ItemRepository
	registry domain.CategoryRegistry
	barcodes domain.BarcodeResolver
	events   domain.EventPublisher
	location string
	loc      *time.Location
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewItemService(
	repo domain.ItemRepository,
	registry domain.CategoryRegistry,
	barcodes domain.BarcodeResolver,
	publisher domain.EventPublisher,
	cfg config.PantryConfig,
	logger *zerolog.Logger,
) *ItemService {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	location := cfg.Location
	if location == "" {
		location = models.DefaultLocation
	}
	return &ItemService{
		repo:     repo,
		registry: registry,
		barcodes: barcodes,
		events:   publisher,
		location: location,
		loc:      cfg.Loc(),
		logger:   logger,
		now:      time.Now,
	}
}

// Location is the storage location new items are filed under.
func (s *ItemService) Location() string {
	return s.location
}

// Today is local midnight in the configured timezone.
func (s *ItemService) Today() time.Time {
	return expiry.Normalize(s.now().In(s.loc))
}

func (s *ItemService) ListItems(ctx context.Context) ([]*models.Item, error) {
	return s.repo.GetItemsByLocation(ctx, s.location)
}

func (s *ItemService) ListByCategory(ctx context.Context, category string) ([]*models.Item, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Item, 0, len(items))
	for _, it := range items {
		if strings.EqualFold(it.Category, category) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *ItemService) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	return s.repo.GetItemByID(ctx, id)
}

func (s *ItemService) prepare(ctx context.Context, item *models.Item) error {
	if item == nil {
		return fmt.Errorf("%w: nil item", ErrInvalidItem)
	}
	item.Name = strings.TrimSpace(item.Name)
	item.Category = strings.TrimSpace(item.Category)
	item.Barcode = strings.TrimSpace(item.Barcode)
	if item.Name == "" && item.Barcode != "" && s.barcodes != nil {
		item.Name = s.barcodes.ResolveName(ctx, item.Barcode)
	}
	if item.StorageLocation == "" {
		item.StorageLocation = s.location
	}
	if item.Count == 0 {
		item.Count = 1
	}
	return nil
}

func (s *ItemService) AddItem(ctx context.Context, item *models.Item) error {
	if err := s.prepare(ctx, item); err != nil {
		return err
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return err
	}
	s.logger.Info().Int64("item_id", item.ID).Str("name", item.Name).Str("category", item.Category).Msg("Item added")
	s.reconcile(ctx)
	s.publish(events.EventItemCreated, item, false)
	return nil
}

func (s *ItemService) UpdateItem(ctx context.Context, item *models.Item) error {
	if err := s.prepare(ctx, item); err != nil {
		return err
	}
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return err
	}
	s.reconcile(ctx)
	s.publish(events.EventItemUpdated, item, false)
	return nil
}

func (s *ItemService) DeleteItem(ctx context.Context, id int64) error {
	item, err := s.repo.GetItemByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("item_id", id).Msg("Item deleted")
	s.reconcile(ctx)
	s.publish(events.EventItemDeleted, item, true)
	return nil
}

// Consume takes one unit; removed reports whether that was the last one.
func (s *ItemService) Consume(ctx context.Context, id int64) (*models.Item, bool, error) {
	item, removed, err := s.repo.ConsumeItem(ctx, id)
	if err != nil {
		return nil, false, err
	}
	s.reconcile(ctx)
	s.publish(events.EventItemConsumed, item, removed)
	return item, removed, nil
}

// Timeline lists dated items, soonest first.
func (s *ItemService) Timeline(ctx context.Context) ([]*models.Item, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Item, 0, len(items))
	for _, it := range items {
		if it.HasExpiration() {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExpirationDate.Before(*out[j].ExpirationDate)
	})
	return out, nil
}

// Expiring classifies all items against now's calendar day.
func (s *ItemService) Expiring(ctx context.Context, now time.Time) (dueToday, dueSoon []models.ExpiringEntry, err error) {
	items, err := s.repo.GetAllItems(ctx)
	if err != nil {
		return nil, nil, err
	}
	dueToday, dueSoon = expiry.Classify(items, expiry.Normalize(now.In(s.loc)))
	return dueToday, dueSoon, nil
}

// Status labels an item relative to today.
func (s *ItemService) Status(item *models.Item) expiry.Status {
	return expiry.StatusOf(item, s.Today())
}

func (s *ItemService) ResolveBarcode(ctx context.Context, barcode string) string {
	if s.barcodes == nil {
		return ""
	}
	return s.barcodes.ResolveName(ctx, barcode)
}

// Categories returns the registry order.
func (s *ItemService) Categories() []string {
	return s.registry.Categories()
}

// CategorySummaries returns one tile per registered category with its item count.
func (s *ItemService) CategorySummaries(ctx context.Context) ([]models.CategorySummary, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.registry.SyncWithItems(ctx, items); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to sync categories")
	}

	counts := make(map[string]int64)
	for _, it := range items {
		counts[it.Category]++
	}

	names := s.registry.Categories()
	out := make([]models.CategorySummary, 0, len(names))
	for _, name := range names {
		out = append(out, models.CategorySummary{
			Name:  name,
			Color: s.registry.ColorOf(name),
			Icon:  s.registry.IconOf(name).String(),
			Count: counts[name],
		})
	}
	return out, nil
}

func (s *ItemService) AddCategory(ctx context.Context, name string, color models.ARGB, icon *models.IconID) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCategory)
	}
	if icon != nil && !icon.Valid() {
		return fmt.Errorf("%w: unknown icon %d", ErrInvalidCategory, *icon)
	}
	return s.registry.AddCategory(ctx, name, color, icon)
}

func (s *ItemService) UpdateCategoryColor(ctx context.Context, name string, color models.ARGB) error {
	if !s.registry.Contains(name) {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, name)
	}
	return s.registry.UpdateColor(ctx, name, color)
}

func (s *ItemService) MoveCategory(ctx context.Context, from, to int) error {
	return s.registry.Reorder(ctx, from, to)
}

// DeleteCategory removes a category. With cascade its items at the storage
// location go too; without it the category must be unused, since a category
// still referenced by items would be re-added on the next reconcile.
func (s *ItemService) DeleteCategory(ctx context.Context, name string, cascade bool) (int64, error) {
	if !s.registry.Contains(name) {
		return 0, fmt.Errorf("%w: %s", ErrCategoryNotFound, name)
	}

	var removed int64
	if cascade {
		n, err := s.repo.DeleteItemsByCategoryAndLocation(ctx, name, s.location)
		if err != nil {
			return 0, err
		}
		removed = n
	} else {
		items, err := s.repo.GetAllItems(ctx)
		if err != nil {
			return 0, err
		}
		for _, it := range items {
			if it.Category == name {
				return 0, fmt.Errorf("%w: %s", ErrCategoryInUse, name)
			}
		}
	}

	if err := s.registry.RemoveCategory(ctx, name); err != nil {
		return removed, err
	}
	s.logger.Info().Str("category", name).Int64("items_removed", removed).Msg("Category deleted")

	if s.events != nil {
		payload := events.CategoryEventPayload{Name: name, ItemsRemoved: removed}
		if err := s.events.PublishJSON(events.EventCategoryDeleted, payload); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to publish category event")
		}
	}
	return removed, nil
}

// Reconcile registers categories referenced by items but not yet known.
func (s *ItemService) Reconcile(ctx context.Context) error {
	items, err := s.repo.GetAllItems(ctx)
	if err != nil {
		return err
	}
	return s.registry.SyncWithItems(ctx, items)
}

func (s *ItemService) reconcile(ctx context.Context) {
	if err := s.Reconcile(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to reconcile categories")
	}
}

func (s *ItemService) publish(eventType string, item *models.Item, removed bool) {
	if s.events == nil || item == nil {
		return
	}
	payload := events.ItemEventPayload{
		ItemID:         item.ID,
		Name:           item.Name,
		Category:       item.Category,
		Count:          item.Count,
		ExpirationDate: item.ExpirationDate,
		Removed:        removed,
	}
	if err := s.events.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("Failed to publish item event")
	}
}
