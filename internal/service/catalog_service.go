package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/redisclient"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// CatalogService handles product and category reads
type CatalogService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store, redis *redisclient.Client) *CatalogService {
	return &CatalogService{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// ListProducts lists active products matching the filter
func (s *CatalogService) ListProducts(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	return s.store.GetProducts(ctx, filter)
}

// GetProduct returns one product, cache-aside. Stock changes at checkout
// evict the cached entry, so a stale read lasts at most until eviction or TTL.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProduct")
	defer span.End()

	key := redisclient.ProductKey(id)

	var cached models.Product
	if err := s.redis.GetJSON(ctx, key, &cached); err == nil {
		util.CacheHitsTotal.WithLabelValues("product").Inc()
		return &cached, nil
	} else if !errors.Is(err, redisclient.ErrCacheMiss) {
		s.logger.Warn("Product cache read failed", zap.Int64("product_id", id), zap.Error(err))
	}
	util.CacheMissesTotal.WithLabelValues("product").Inc()

	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.redis.SetJSON(ctx, key, product); err != nil {
		s.logger.Warn("Product cache write failed", zap.Int64("product_id", id), zap.Error(err))
	}

	return product, nil
}

// GetProductsByIDs loads a batch of products in one query, bypassing the
// cache. Callers that just reacted to a stock change want current rows, not
// possibly stale cached ones.
func (s *CatalogService) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProductsByIDs")
	defer span.End()

	return s.store.GetProductsByIDs(ctx, ids)
}

// ListCategories lists all categories
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListCategories")
	defer span.End()

	return s.store.GetCategories(ctx)
}

// InvalidateProducts evicts cached product entries, used when stock levels
// changed outside a catalog read.
func (s *CatalogService) InvalidateProducts(ctx context.Context, ids []int64) error {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, redisclient.ProductKey(id))
	}
	if err := s.redis.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to invalidate product cache: %w", err)
	}
	return nil
}
