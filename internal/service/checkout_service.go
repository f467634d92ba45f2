package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/redisclient"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutService converts a user's cart into a durable order
type CheckoutService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
) *CheckoutService {
	return &CheckoutService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// PlaceOrder transactionally converts the user's cart into an order: it loads
// the cart lines, decrements stock with a guarded atomic update, inserts the
// order and its lines with prices captured at purchase time, and clears the
// cart. Every write happens in one transaction; any failure rolls the whole
// placement back and leaves cart and stock untouched.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID int64, shippingAddress types.JSONText) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.PlaceOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	var order models.Order
	var eventLines []models.OrderLineData

	err := s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		lines, err := s.store.CartLinesTx(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		total := decimal.Zero
		eventLines = make([]models.OrderLineData, 0, len(lines))
		for _, line := range lines {
			remaining, err := s.store.DecrementStockTx(ctx, tx, line.ProductID, line.Quantity)
			if errors.Is(err, store.ErrInsufficientStock) {
				return &InsufficientStockError{ProductID: line.ProductID, Name: line.Name}
			}
			if err != nil {
				return err
			}

			total = total.Add(line.Subtotal())
			eventLines = append(eventLines, models.OrderLineData{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Price,
				StockLeft: remaining,
			})
		}

		order = models.Order{
			UserID:          userID,
			TotalAmount:     total,
			Status:          models.OrderStatusPending,
			PaymentStatus:   models.PaymentStatusPending,
			ShippingAddress: shippingAddress,
		}
		if err := s.store.InsertOrderTx(ctx, tx, &order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, line := range lines {
			item := models.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Price,
			}
			if err := s.store.InsertOrderItemTx(ctx, tx, &item); err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}

		if err := s.store.ClearCartTx(ctx, tx, userID); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		return nil
	})
	if err != nil {
		var stockErr *InsufficientStockError
		switch {
		case errors.Is(err, ErrEmptyCart):
			util.OrdersFailedTotal.WithLabelValues("empty_cart").Inc()
		case errors.As(err, &stockErr):
			util.OrdersFailedTotal.WithLabelValues("insufficient_stock").Inc()
			s.logger.Info("Order rejected: insufficient stock",
				zap.Int64("user_id", userID),
				zap.Int64("product_id", stockErr.ProductID))
		default:
			util.OrdersFailedTotal.WithLabelValues("store_error").Inc()
			s.logger.Error("Order placement failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		return nil, err
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", userID),
		zap.String("total_amount", order.TotalAmount.String()))

	// The committed transaction emptied the cart and changed stock levels;
	// drop the stale cached reads. Cache errors never unwind the order.
	keys := []string{redisclient.CartKey(userID)}
	for _, line := range eventLines {
		keys = append(keys, redisclient.ProductKey(line.ProductID))
	}
	if err := s.redis.Delete(ctx, keys...); err != nil {
		s.logger.Warn("Failed to invalidate caches after checkout", zap.Error(err))
	}

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Items:       eventLines,
	}
	if err := s.eventPublisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event",
			zap.Int64("order_id", order.ID), zap.Error(err))
	}

	return &order, nil
}
