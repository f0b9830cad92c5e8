package orders

import (
	"context"
	"errors"

	"github.com/aibeh/order-management/internal/store"
)

// Validator checks that an order draft's references resolve to existing
// records before a write is attempted. It is a pure read: no writes, and no
// lock is held across the caller's subsequent insert or update, so a
// referenced record can disappear between the check and the write. That race
// is accepted; the store enforces no foreign keys.
type Validator struct {
	customers store.CustomerStore
	products  store.ProductStore
}

func NewValidator(customers store.CustomerStore, products store.ProductStore) *Validator {
	return &Validator{customers: customers, products: products}
}

// ValidateOrderRefs resolves the customer first and fails immediately with
// CustomerNotFoundError if it is absent, without touching any product. It
// then resolves each product in the order supplied and stops at the first
// absent one with ProductNotFoundError.
func (v *Validator) ValidateOrderRefs(ctx context.Context, customerID string, productIDs []string) error {
	if _, err := v.customers.GetCustomer(ctx, customerID); err != nil {
		var nf *store.NotFoundError
		if errors.As(err, &nf) {
			return &CustomerNotFoundError{ID: customerID}
		}
		return err
	}

	for _, productID := range productIDs {
		if _, err := v.products.GetProduct(ctx, productID); err != nil {
			var nf *store.NotFoundError
			if errors.As(err, &nf) {
				return &ProductNotFoundError{ID: productID}
			}
			return err
		}
	}
	return nil
}
