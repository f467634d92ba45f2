package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/redisclient"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrProductUnavailable is returned when a cart mutation references a product
// that does not exist or is not active.
var ErrProductUnavailable = errors.New("product not available")

// CartService handles shopping cart operations
type CartService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(store *store.Store, redis *redisclient.Client) *CartService {
	return &CartService{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// CartView is the cart payload returned to clients
type CartView struct {
	Items     []models.CartItemWithProduct `json:"items"`
	Total     decimal.Decimal              `json:"total"`
	ItemCount int                          `json:"item_count"`
}

// GetCart returns the user's cart with line subtotals summed, cache-aside
func (s *CartService) GetCart(ctx context.Context, userID int64) (*CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.GetCart")
	defer span.End()

	key := redisclient.CartKey(userID)

	var cached CartView
	if err := s.redis.GetJSON(ctx, key, &cached); err == nil {
		util.CacheHitsTotal.WithLabelValues("cart").Inc()
		return &cached, nil
	} else if !errors.Is(err, redisclient.ErrCacheMiss) {
		s.logger.Warn("Cart cache read failed", zap.Int64("user_id", userID), zap.Error(err))
	}
	util.CacheMissesTotal.WithLabelValues("cart").Inc()

	items, err := s.store.GetCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}

	view := &CartView{
		Items:     items,
		Total:     total,
		ItemCount: len(items),
	}

	if err := s.redis.SetJSON(ctx, key, view); err != nil {
		s.logger.Warn("Cart cache write failed", zap.Int64("user_id", userID), zap.Error(err))
	}

	return view, nil
}

// AddItem adds quantity of a product to the user's cart. The combined
// quantity must not exceed current stock.
func (s *CartService) AddItem(ctx context.Context, userID, productID int64, quantity int) error {
	ctx, span := util.StartSpan(ctx, "CartService.AddItem")
	defer span.End()

	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProductUnavailable
		}
		return fmt.Errorf("failed to load product: %w", err)
	}
	if product.Status != models.ProductStatusActive {
		return ErrProductUnavailable
	}

	existing, err := s.store.GetCartQuantity(ctx, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to check cart: %w", err)
	}
	if existing+quantity > product.StockQuantity {
		return &InsufficientStockError{ProductID: product.ID, Name: product.Name}
	}

	if _, err := s.store.UpsertCartItem(ctx, userID, productID, quantity); err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	util.CartMutationsTotal.WithLabelValues("add").Inc()
	s.invalidate(ctx, userID)
	return nil
}

// UpdateItem sets the quantity of one of the user's cart rows
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID int64, quantity int) error {
	ctx, span := util.StartSpan(ctx, "CartService.UpdateItem")
	defer span.End()

	item, err := s.store.GetCartItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if quantity > item.StockQuantity {
		return &InsufficientStockError{ProductID: item.ProductID, Name: item.ProductName}
	}

	if err := s.store.UpdateCartItemQuantity(ctx, userID, itemID, quantity); err != nil {
		return err
	}

	util.CartMutationsTotal.WithLabelValues("update").Inc()
	s.invalidate(ctx, userID)
	return nil
}

// RemoveItem deletes one of the user's cart rows
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID int64) error {
	ctx, span := util.StartSpan(ctx, "CartService.RemoveItem")
	defer span.End()

	if err := s.store.DeleteCartItem(ctx, userID, itemID); err != nil {
		return err
	}

	util.CartMutationsTotal.WithLabelValues("remove").Inc()
	s.invalidate(ctx, userID)
	return nil
}

// ClearCart deletes all of the user's cart rows
func (s *CartService) ClearCart(ctx context.Context, userID int64) error {
	ctx, span := util.StartSpan(ctx, "CartService.ClearCart")
	defer span.End()

	if err := s.store.ClearCart(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	util.CartMutationsTotal.WithLabelValues("clear").Inc()
	s.invalidate(ctx, userID)
	return nil
}

func (s *CartService) invalidate(ctx context.Context, userID int64) {
	if err := s.redis.Delete(ctx, redisclient.CartKey(userID)); err != nil {
		s.logger.Warn("Cart cache invalidation failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}
