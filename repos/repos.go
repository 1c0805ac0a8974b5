// Package repos binds the generic repository to the concrete entities.
//
// Each binding is pure composition: it fixes the entity type, wires the
// constraint-to-error-code mapping and adds the few lookup helpers the
// services use. All query semantics live in the repo package.
package repos

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/rise-and-shine/order-inventory-platform/models"
	"github.com/rise-and-shine/order-inventory-platform/repo"
)

// Error codes for unique constraint conflicts.
const (
	CodeEmailAlreadyExists = "EMAIL_ALREADY_EXISTS"
	CodeSKUAlreadyExists   = "SKU_ALREADY_EXISTS"
)

// Users is the repository for models.User.
type Users struct {
	*repo.Repository[models.User]
}

// NewUsers creates the user repository bound to the given database handle.
func NewUsers(idb bun.IDB) *Users {
	return &Users{
		Repository: repo.New[models.User](idb,
			repo.WithConflictCodes(map[string]string{
				"users_email_key": CodeEmailAlreadyExists,
			}),
		),
	}
}

// GetByEmail returns the user with the given email, or nil when absent.
func (r *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.FindOneBy(ctx, repo.Where(repo.Eq("email", email)))
}

// Products is the repository for models.Product.
type Products struct {
	*repo.Repository[models.Product]
}

// NewProducts creates the product repository bound to the given database handle.
func NewProducts(idb bun.IDB) *Products {
	return &Products{
		Repository: repo.New[models.Product](idb,
			repo.WithConflictCodes(map[string]string{
				"products_sku_key": CodeSKUAlreadyExists,
			}),
		),
	}
}

// GetBySKU returns the product with the given SKU, or nil when absent.
func (r *Products) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	return r.FindOneBy(ctx, repo.Where(repo.Eq("sku", sku)))
}

// Orders is the repository for models.Order.
type Orders struct {
	*repo.Repository[models.Order]
}

// NewOrders creates the order repository bound to the given database handle.
func NewOrders(idb bun.IDB) *Orders {
	return &Orders{
		Repository: repo.New[models.Order](idb),
	}
}

// ListByUser returns the user's orders with items eagerly loaded.
func (r *Orders) ListByUser(ctx context.Context, userID int64, opts ...repo.ListOption) ([]models.Order, error) {
	opts = append(opts, repo.WithRelations("Items"))
	return r.FindAllBy(ctx, repo.Where(repo.Eq("user_id", userID)), opts...)
}

// OrderItems is the repository for models.OrderItem.
type OrderItems struct {
	*repo.Repository[models.OrderItem]
}

// NewOrderItems creates the order item repository bound to the given database handle.
func NewOrderItems(idb bun.IDB) *OrderItems {
	return &OrderItems{
		Repository: repo.New[models.OrderItem](idb),
	}
}

// Tasks is the repository for models.Task.
type Tasks struct {
	*repo.Repository[models.Task]
}

// NewTasks creates the task repository bound to the given database handle.
func NewTasks(idb bun.IDB) *Tasks {
	return &Tasks{
		Repository: repo.New[models.Task](idb),
	}
}
