package worker

import (
	"context"
	"log"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/service"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// OrderEventsWorker consumes order events and keeps read-side state fresh:
// cached products that sold are evicted and stock depletion is surfaced.
type OrderEventsWorker struct {
	consumer       *broker.Consumer
	eventHandler   *broker.EventHandler
	catalogService *service.CatalogService
	logger         *zap.Logger
}

// NewOrderEventsWorker creates a new order events worker
func NewOrderEventsWorker(consumer *broker.Consumer, catalogService *service.CatalogService) *OrderEventsWorker {
	w := &OrderEventsWorker{
		consumer:       consumer,
		catalogService: catalogService,
		logger:         util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderPlaced(w.handleOrderPlaced)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *OrderEventsWorker) Start(ctx context.Context) error {
	log.Println("Starting order events worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *OrderEventsWorker) Stop() error {
	log.Println("Stopping order events worker...")
	return w.consumer.Close()
}

func (w *OrderEventsWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	productIDs := make([]int64, 0, len(event.Items))
	depletedIDs := []int64{}
	for _, item := range event.Items {
		productIDs = append(productIDs, item.ProductID)

		if item.StockLeft == 0 {
			util.StockDepletedTotal.Inc()
			depletedIDs = append(depletedIDs, item.ProductID)
		}
	}

	// Eviction is idempotent, so redelivered events are harmless.
	if err := w.catalogService.InvalidateProducts(ctx, productIDs); err != nil {
		w.logger.Error("Failed to invalidate product cache",
			zap.Int64("order_id", event.OrderID), zap.Error(err))
		return err
	}

	w.reportDepleted(ctx, event.OrderID, depletedIDs)
	return nil
}

// reportDepleted logs sold-out products by name so restock alerts carry
// something actionable. A failed lookup degrades to IDs only; the event is
// already handled at this point.
func (w *OrderEventsWorker) reportDepleted(ctx context.Context, orderID int64, depletedIDs []int64) {
	if len(depletedIDs) == 0 {
		return
	}

	products, err := w.catalogService.GetProductsByIDs(ctx, depletedIDs)
	if err != nil {
		w.logger.Warn("Product stock depleted",
			zap.Int64s("product_ids", depletedIDs),
			zap.Int64("order_id", orderID),
			zap.Error(err))
		return
	}

	for _, p := range products {
		w.logger.Warn("Product stock depleted",
			zap.Int64("product_id", p.ID),
			zap.String("product", p.Name),
			zap.Int64("order_id", orderID))
	}
}
