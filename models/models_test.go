package models_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/rise-and-shine/order-inventory-platform/models"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, model := range []any{
		(*models.User)(nil),
		(*models.Product)(nil),
		(*models.Order)(nil),
		(*models.OrderItem)(nil),
		(*models.Task)(nil),
	} {
		_, err = db.NewCreateTable().Model(model).Exec(ctx)
		require.NoError(t, err)
	}

	return db
}

// Every model embeds bun.BaseModel for table metadata and pg.Model for
// the identifier and timestamps. Inserting through bun exercises both:
// the table binding and the promoted BeforeAppendModel hook.
func TestModelPersistence(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	user := &models.User{
		Email:        "a@x.com",
		Username:     "alice",
		PasswordHash: "hash",
		Role:         models.RoleUser,
		IsActive:     true,
	}
	_, err := db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.False(t, user.UpdatedAt.IsZero())

	product := &models.Product{SKU: "SKU-1", Name: "widget", Price: 500, Stock: 3}
	_, err = db.NewInsert().Model(product).Exec(ctx)
	require.NoError(t, err)
	assert.NotZero(t, product.ID)

	order := &models.Order{UserID: user.ID, Status: models.OrderStatusPending, Total: 500}
	_, err = db.NewInsert().Model(order).Exec(ctx)
	require.NoError(t, err)

	item := &models.OrderItem{OrderID: order.ID, ProductID: product.ID, Quantity: 1, UnitPrice: 500}
	_, err = db.NewInsert().Model(item).Exec(ctx)
	require.NoError(t, err)

	var loaded models.Order
	err = db.NewSelect().Model(&loaded).
		Where("o.id = ?", order.ID).
		Relation("Items").
		Scan(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, product.ID, loaded.Items[0].ProductID)
}
