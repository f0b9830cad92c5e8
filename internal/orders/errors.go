package orders

import "fmt"

// CustomerNotFoundError reports an order draft whose customer reference does
// not resolve. Surfaced to HTTP callers as 404, matching the store's own
// missing-record message shape.
type CustomerNotFoundError struct {
	ID string
}

func (e *CustomerNotFoundError) Error() string {
	return "Customer not found"
}

// ProductNotFoundError reports the first product reference in an order draft
// that does not resolve.
type ProductNotFoundError struct {
	ID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product with ID %s not found", e.ID)
}

// InvalidOrderError reports a draft that fails shape checks before any store
// lookup happens.
type InvalidOrderError struct {
	Reason string
}

func (e *InvalidOrderError) Error() string {
	return e.Reason
}
