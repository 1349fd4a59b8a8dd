package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fastenworks/partstore/internal/core/domain"
	"github.com/fastenworks/partstore/internal/port"
)

// maxPlacementAttempts bounds the retry loop driven by optimistic-lock
// conflicts. Counts total attempts, not additional retries.
const maxPlacementAttempts = 3

type PlaceOrderInput struct {
	CustomerName string
	Items        []LineItemInput
}

type LineItemInput struct {
	ProductID int64
	Quantity  int
}

// OrderService is the transactional state machine for creating an
// order. It owns no persistent state; it coordinates the product and
// order stores inside one transaction per attempt.
type OrderService struct {
	store     port.Store
	publisher port.OrderEventPublisher
	log       *logrus.Entry
}

func NewOrderService(store port.Store, publisher port.OrderEventPublisher, log *logrus.Entry) *OrderService {
	return &OrderService{store: store, publisher: publisher, log: log}
}

// PlaceOrder validates the request, then runs placement attempts until
// one commits, a terminal failure occurs, or the retry budget is spent.
// Version conflicts restart the whole attempt on a fresh transaction;
// every other failure aborts immediately and leaves durable state
// untouched.
func (s *OrderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	if err := validatePlaceOrder(input); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxPlacementAttempts; attempt++ {
		order, err := s.placeOnce(ctx, input)
		if err == nil {
			s.publishCreated(ctx, order)
			return order, nil
		}
		if errors.Is(err, domain.ErrVersionConflict) {
			s.log.WithFields(logrus.Fields{
				"attempt":      attempt,
				"max_attempts": maxPlacementAttempts,
			}).Warn("optimistic lock failure, retrying order placement")
			continue
		}
		return nil, err
	}

	return nil, domain.ErrInventoryRetriesExhausted
}

func validatePlaceOrder(input PlaceOrderInput) error {
	if strings.TrimSpace(input.CustomerName) == "" {
		return domain.ErrInvalidQuantity
	}
	if len(input.Items) == 0 {
		return domain.ErrInvalidQuantity
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
	}
	return nil
}

// placeOnce is a single placement attempt inside one serializable
// transaction. Line items are processed in caller order so partial
// application under retry stays deterministic.
func (s *OrderService) placeOnce(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	var order *domain.Order

	err := s.store.RunSerializable(ctx, func(ctx context.Context, tx port.TxStore) error {
		orderID, err := tx.CreateOrder(ctx, input.CustomerName, domain.OrderStatusPending)
		if err != nil {
			return err
		}

		for _, item := range input.Items {
			product, err := tx.FetchForUpdate(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if product.Inventory < item.Quantity {
				return domain.ErrInsufficientInventory
			}
			if err := tx.DecrementInventory(ctx, item.ProductID, item.Quantity, product.Version); err != nil {
				return err
			}
			if err := tx.LinkProduct(ctx, orderID, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		order, err = tx.GetOrderWithLineItems(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			// The row this transaction just inserted cannot be missing
			// under correct isolation; treat as a data-integrity fault.
			return domain.ErrOrderRetrievalFailed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *OrderService) publishCreated(ctx context.Context, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		// The order is already committed; event delivery is best effort.
		s.log.WithError(err).WithField("order_id", order.ID).
			Warn("failed to publish order.created event")
	}
}
