// Package store defines the record-store contract for the three collections
// and provides Postgres-backed and in-memory implementations. The store
// guarantees per-document atomicity only; nothing here spans two documents,
// and the schema declares no foreign keys between collections.
package store

import (
	"context"
	"fmt"

	"github.com/aibeh/order-management/pkg/models"
)

// NotFoundError reports a missing record in one of the collections.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, e.ID)
}

// DuplicateIDError reports an insert with an identifier that already exists
// in the target collection.
type DuplicateIDError struct {
	Entity string
	ID     string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("%s with ID %s already exists", e.Entity, e.ID)
}

type CustomerStore interface {
	InsertCustomer(ctx context.Context, c *models.Customer) error
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id string, c *models.Customer) error
	DeleteCustomer(ctx context.Context, id string) error
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
}

type ProductStore interface {
	InsertProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context) ([]*models.Product, error)
	// LatestProduct returns the most recently inserted product, by insertion
	// sequence rather than any field of the record.
	LatestProduct(ctx context.Context) (*models.Product, error)
}

type OrderStore interface {
	InsertOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateOrder(ctx context.Context, id string, o *models.Order) error
	DeleteOrder(ctx context.Context, id string) error
	ListOrders(ctx context.Context) ([]*models.Order, error)
	// LatestOrder returns the most recently inserted order, independent of
	// each order's own date field.
	LatestOrder(ctx context.Context) (*models.Order, error)
}

// Store bundles the three collections behind one handle with an explicit
// close lifecycle.
type Store interface {
	CustomerStore
	ProductStore
	OrderStore
	// Reset drops every record in all three collections. Used by the seeder.
	Reset(ctx context.Context) error
	Close() error
}

const (
	EntityCustomer = "Customer"
	EntityProduct  = "Product"
	EntityOrder    = "Order"
)
