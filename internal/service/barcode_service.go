package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"pantry/internal/database"
	"pantry/internal/domain"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// BarcodeService fills in product names: names already stored locally
// first, then the external catalogue. Lookups never fail; an unknown
// barcode resolves to "".
type BarcodeService struct {
	repo    domain.ItemRepository
	lookup  domain.ProductLookup
	cache   *cache.Cache
	timeout time.Duration
	logger  *zerolog.Logger
}

func NewBarcodeService(repo domain.ItemRepository, lookup domain.ProductLookup, ttl, timeout time.Duration, logger *zerolog.Logger) *BarcodeService {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &BarcodeService{
		repo:    repo,
		lookup:  lookup,
		cache:   cache.New(ttl, 2*ttl),
		timeout: timeout,
		logger:  logger,
	}
}

func (s *BarcodeService) ResolveName(ctx context.Context, barcode string) string {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return ""
	}

	name, err := s.repo.GetNameByBarcode(ctx, barcode)
	if err == nil && name != "" {
		return name
	}
	if err != nil && !errors.Is(err, database.ErrItemNotFound) {
		s.logger.Debug().Err(err).Str("barcode", barcode).Msg("local barcode lookup failed")
	}

	if cached, ok := s.cache.Get(barcode); ok {
		return cached.(string)
	}
	if s.lookup == nil {
		return ""
	}

	lookupCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	name, err = s.lookup.LookupName(lookupCtx, barcode)
	if err != nil {
		s.logger.Debug().Err(err).Str("barcode", barcode).Msg("external barcode lookup failed")
		return ""
	}
	s.cache.Set(barcode, name, cache.DefaultExpiration)
	return name
}
