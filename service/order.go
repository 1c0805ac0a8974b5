package service

import (
	"context"
	"strconv"
	"time"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/order-inventory-platform/events"
	"github.com/rise-and-shine/order-inventory-platform/logger"
	"github.com/rise-and-shine/order-inventory-platform/models"
	"github.com/rise-and-shine/order-inventory-platform/pagination"
	"github.com/rise-and-shine/order-inventory-platform/repo"
	"github.com/rise-and-shine/order-inventory-platform/repos"
)

// OrderLine is one requested product within a new order.
type OrderLine struct {
	ProductID int64
	Quantity  int64
}

// OrderService implements order placement and lifecycle management.
type OrderService struct {
	db        bun.IDB
	orders    *repos.Orders
	items     *repos.OrderItems
	products  *repos.Products
	publisher events.Publisher
	logger    logger.Logger
}

// NewOrderService creates the order service. The db handle is used to
// open transactions that span multiple repositories.
func NewOrderService(
	db bun.IDB,
	orders *repos.Orders,
	items *repos.OrderItems,
	products *repos.Products,
	publisher events.Publisher,
) *OrderService {
	return &OrderService{
		db:        db,
		orders:    orders,
		items:     items,
		products:  products,
		publisher: publisher,
		logger:    logger.Named("service.order"),
	}
}

// PlaceOrder reserves stock for every line, creates the order with its
// items in one transaction and publishes an order.placed event.
//
// Stock is reserved with a locked single-row update guarded by a
// stock >= quantity predicate, so concurrent orders can never drive a
// product negative. Any failed line rolls back the whole order.
func (s *OrderService) PlaceOrder(ctx context.Context, userID int64, lines []OrderLine) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, errx.New("order has no lines",
			errx.WithCode(CodeEmptyOrder),
			errx.WithType(errx.T_Validation))
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, errx.New("line quantity must be positive",
				errx.WithCode(CodeInvalidQuantity),
				errx.WithType(errx.T_Validation),
				errx.WithDetails(errx.D{"product_id": line.ProductID}))
		}
	}

	var placed *models.Order

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		productsTx := s.products.WithDB(tx)
		ordersTx := s.orders.WithDB(tx)
		itemsTx := s.items.WithDB(tx)

		var total int64
		reserved := make([]*models.Product, 0, len(lines))

		for _, line := range lines {
			product, err := productsTx.UpdateOne(ctx,
				repo.Where(
					repo.Eq("id", line.ProductID),
					repo.Gte("stock", line.Quantity),
				),
				repo.Add("stock", -line.Quantity),
				repo.WithSkipLocked(),
			)
			if err != nil {
				return errx.Wrap(err)
			}
			if product == nil {
				exists, err := productsTx.Exists(ctx, repo.Where(repo.Eq("id", line.ProductID)))
				if err != nil {
					return errx.Wrap(err)
				}
				if !exists {
					return errx.New("product not found",
						errx.WithCode(CodeProductNotFound),
						errx.WithType(errx.T_NotFound),
						errx.WithDetails(errx.D{"product_id": line.ProductID}))
				}
				return errx.New("not enough stock for product",
					errx.WithCode(CodeInsufficientStock),
					errx.WithType(errx.T_Conflict),
					errx.WithDetails(errx.D{"product_id": line.ProductID, "quantity": line.Quantity}))
			}

			total += product.Price * line.Quantity
			reserved = append(reserved, product)
		}

		order, err := ordersTx.Create(ctx, &models.Order{
			UserID: userID,
			Status: models.OrderStatusPending,
			Total:  total,
		})
		if err != nil {
			return errx.Wrap(err)
		}

		for i, line := range lines {
			item, err := itemsTx.Create(ctx, &models.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: reserved[i].Price,
			})
			if err != nil {
				return errx.Wrap(err)
			}
			order.Items = append(order.Items, item)
		}

		placed = order
		return nil
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	if err := s.publisher.Publish(ctx, events.OrderPlaced, strconv.FormatInt(userID, 10), map[string]any{
		"order_id": placed.ID,
		"user_id":  userID,
		"total":    placed.Total,
	}); err != nil {
		s.logger.WithContext(ctx).With("error", err).Warn("failed to publish order.placed event")
	}

	return placed, nil
}

// GetOrder returns one of the user's orders with its items.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	found, err := s.orders.FindAllBy(ctx,
		repo.Where(repo.Eq("id", orderID), repo.Eq("user_id", userID)),
		repo.WithRelations("Items"),
	)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if len(found) == 0 {
		return nil, errx.New("order not found",
			errx.WithCode(CodeOrderNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithDetails(errx.D{"order_id": orderID}))
	}
	return &found[0], nil
}

// ListOrders returns a page of the user's orders with their items.
func (s *OrderService) ListOrders(
	ctx context.Context,
	userID int64,
	page pagination.Request,
) (pagination.Response[models.Order], error) {
	page.Normalize()

	userFilter := repo.Where(repo.Eq("user_id", userID))

	total, err := s.orders.Count(ctx, userFilter)
	if err != nil {
		return pagination.Response[models.Order]{}, errx.Wrap(err)
	}

	items, err := s.orders.ListByUser(ctx, userID,
		repo.WithOffset(page.Offset()),
		repo.WithLimit(page.Limit()),
	)
	if err != nil {
		return pagination.Response[models.Order]{}, errx.Wrap(err)
	}

	return pagination.NewResponse(items, int64(total), page), nil
}

// CancelStaleOrders cancels pending orders older than the given age and
// returns their reserved stock to the products. Runs as a periodic
// background task.
func (s *OrderService) CancelStaleOrders(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	var cancelled int64

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		ordersTx := s.orders.WithDB(tx)
		itemsTx := s.items.WithDB(tx)
		productsTx := s.products.WithDB(tx)

		stale, err := ordersTx.FindAllBy(ctx, repo.Where(
			repo.Eq("status", models.OrderStatusPending),
			repo.Lte("created_at", cutoff),
		))
		if err != nil {
			return errx.Wrap(err)
		}

		for i := range stale {
			// re-check the status under lock, another worker may have
			// cancelled the order already
			order, err := ordersTx.UpdateOne(ctx,
				repo.Where(
					repo.Eq("id", stale[i].ID),
					repo.Eq("status", models.OrderStatusPending),
				),
				repo.Set("status", models.OrderStatusCancelled),
				repo.WithSkipLocked(),
			)
			if err != nil {
				return errx.Wrap(err)
			}
			if order == nil {
				continue
			}

			items, err := itemsTx.FindAllBy(ctx, repo.Where(repo.Eq("order_id", order.ID)))
			if err != nil {
				return errx.Wrap(err)
			}
			for _, item := range items {
				_, err := productsTx.UpdateMany(ctx,
					repo.Where(repo.Eq("id", item.ProductID)),
					repo.Add("stock", item.Quantity),
				)
				if err != nil {
					return errx.Wrap(err)
				}
			}

			cancelled++
		}

		return nil
	})
	if err != nil {
		return 0, errx.Wrap(err)
	}

	if cancelled > 0 {
		s.logger.WithContext(ctx).With("count", cancelled).Info("cancelled stale pending orders")
	}

	return cancelled, nil
}
