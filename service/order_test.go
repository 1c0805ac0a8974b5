package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/order-inventory-platform/events"
	"github.com/rise-and-shine/order-inventory-platform/models"
	"github.com/rise-and-shine/order-inventory-platform/pagination"
	"github.com/rise-and-shine/order-inventory-platform/repo"
	"github.com/rise-and-shine/order-inventory-platform/repos"
	"github.com/rise-and-shine/order-inventory-platform/service"
)

type orderFixture struct {
	svc      *service.OrderService
	products *repos.Products
	orders   *repos.Orders
}

func newOrderFixture(t *testing.T, db *bun.DB) *orderFixture {
	t.Helper()

	products := repos.NewProducts(db)
	orders := repos.NewOrders(db)

	return &orderFixture{
		svc:      service.NewOrderService(db, orders, repos.NewOrderItems(db), products, events.NopPublisher{}),
		products: products,
		orders:   orders,
	}
}

func (f *orderFixture) seedProduct(t *testing.T, sku string, price, stock int64) *models.Product {
	t.Helper()

	p, err := f.products.Create(context.Background(), &models.Product{
		SKU:   sku,
		Name:  "product " + sku,
		Price: price,
		Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func (f *orderFixture) stockOf(t *testing.T, id int64) int64 {
	t.Helper()

	p, err := f.products.FindOneBy(context.Background(), repo.Where(repo.Eq("id", id)))
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("reserves stock and totals lines", func(t *testing.T) {
		f := newOrderFixture(t, newTestDB(t))
		coffee := f.seedProduct(t, "coffee", 500, 10)
		mug := f.seedProduct(t, "mug", 1200, 3)

		order, err := f.svc.PlaceOrder(ctx, 1, []service.OrderLine{
			{ProductID: coffee.ID, Quantity: 2},
			{ProductID: mug.ID, Quantity: 1},
		})
		require.NoError(t, err)

		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.EqualValues(t, 2*500+1200, order.Total)
		require.Len(t, order.Items, 2)
		assert.EqualValues(t, 500, order.Items[0].UnitPrice)

		assert.EqualValues(t, 8, f.stockOf(t, coffee.ID))
		assert.EqualValues(t, 2, f.stockOf(t, mug.ID))
	})

	t.Run("insufficient stock rolls back the whole order", func(t *testing.T) {
		f := newOrderFixture(t, newTestDB(t))
		coffee := f.seedProduct(t, "coffee", 500, 10)
		mug := f.seedProduct(t, "mug", 1200, 3)

		_, err := f.svc.PlaceOrder(ctx, 1, []service.OrderLine{
			{ProductID: coffee.ID, Quantity: 2},
			{ProductID: mug.ID, Quantity: 5},
		})
		require.Error(t, err)
		assert.True(t, errx.IsCodeIn(err, service.CodeInsufficientStock))

		// the first line's reservation must be rolled back
		assert.EqualValues(t, 10, f.stockOf(t, coffee.ID))
		assert.EqualValues(t, 3, f.stockOf(t, mug.ID))

		count, err := f.orders.Count(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newOrderFixture(t, newTestDB(t))

		_, err := f.svc.PlaceOrder(ctx, 1, []service.OrderLine{{ProductID: 404, Quantity: 1}})
		require.Error(t, err)
		assert.True(t, errx.IsCodeIn(err, service.CodeProductNotFound))
	})

	t.Run("empty order", func(t *testing.T) {
		f := newOrderFixture(t, newTestDB(t))

		_, err := f.svc.PlaceOrder(ctx, 1, nil)
		require.Error(t, err)
		assert.True(t, errx.IsCodeIn(err, service.CodeEmptyOrder))
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		f := newOrderFixture(t, newTestDB(t))
		coffee := f.seedProduct(t, "coffee", 500, 10)

		_, err := f.svc.PlaceOrder(ctx, 1, []service.OrderLine{{ProductID: coffee.ID, Quantity: 0}})
		require.Error(t, err)
		assert.True(t, errx.IsCodeIn(err, service.CodeInvalidQuantity))
	})
}

func TestGetOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t, newTestDB(t))
	coffee := f.seedProduct(t, "coffee", 500, 10)

	placed, err := f.svc.PlaceOrder(ctx, 7, []service.OrderLine{{ProductID: coffee.ID, Quantity: 1}})
	require.NoError(t, err)

	got, err := f.svc.GetOrder(ctx, 7, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.ID, got.ID)
	require.Len(t, got.Items, 1)

	// other users cannot see the order
	_, err = f.svc.GetOrder(ctx, 8, placed.ID)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, service.CodeOrderNotFound))
}

func TestListOrders(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t, newTestDB(t))
	coffee := f.seedProduct(t, "coffee", 500, 100)

	for range 3 {
		_, err := f.svc.PlaceOrder(ctx, 7, []service.OrderLine{{ProductID: coffee.ID, Quantity: 1}})
		require.NoError(t, err)
	}
	_, err := f.svc.PlaceOrder(ctx, 8, []service.OrderLine{{ProductID: coffee.ID, Quantity: 1}})
	require.NoError(t, err)

	page, err := f.svc.ListOrders(ctx, 7, pagination.Request{PageNumber: 1, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalCount)
	require.Len(t, page.PageContent, 2)
	require.Len(t, page.PageContent[0].Items, 1)
}

func TestCancelStaleOrders(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t, newTestDB(t))
	coffee := f.seedProduct(t, "coffee", 500, 10)

	stale, err := f.svc.PlaceOrder(ctx, 7, []service.OrderLine{{ProductID: coffee.ID, Quantity: 4}})
	require.NoError(t, err)
	fresh, err := f.svc.PlaceOrder(ctx, 7, []service.OrderLine{{ProductID: coffee.ID, Quantity: 1}})
	require.NoError(t, err)

	// age the first order past the cutoff
	_, err = f.orders.UpdateMany(ctx,
		repo.Where(repo.Eq("id", stale.ID)),
		repo.Set("created_at", time.Now().Add(-2*time.Hour)),
	)
	require.NoError(t, err)

	cancelled, err := f.svc.CancelStaleOrders(ctx, time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cancelled)

	got, err := f.svc.GetOrder(ctx, 7, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)

	gotFresh, err := f.svc.GetOrder(ctx, 7, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, gotFresh.Status)

	// the stale order's reservation is returned to stock
	assert.EqualValues(t, 9, f.stockOf(t, coffee.ID))
}
