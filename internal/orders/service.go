// Package orders implements the order-management core: reference validation
// on order writes and CRUD orchestration for the customers, products and
// orders collections.
package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/aibeh/order-management/internal/store"
	"github.com/aibeh/order-management/pkg/models"
)

// DefaultStatus is assigned to orders created without an explicit status.
// Status is a free-form label; no transitions are enforced afterwards.
const DefaultStatus = "Completed"

// EventSink receives order lifecycle notifications. Implementations are
// best-effort: a failed delivery must never fail the originating request.
type EventSink interface {
	OrderCreated(o *models.Order)
	OrderUpdated(o *models.Order)
	OrderDeleted(id string)
}

// Service orchestrates CRUD for all three collections and runs reference
// validation before every order write. The sink may be nil.
type Service struct {
	store     store.Store
	validator *Validator
	sink      EventSink
	logger    *logrus.Logger
	now       func() time.Time
}

func NewService(st store.Store, sink EventSink, logger *logrus.Logger) *Service {
	return &Service{
		store:     st,
		validator: NewValidator(st, st),
		sink:      sink,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateOrder validates the draft's references, applies defaults and inserts
// the order. Nothing is written when validation fails. The draft's ID is
// kept when supplied; otherwise a UUID is generated.
func (s *Service) CreateOrder(ctx context.Context, draft *models.Order) (*models.Order, error) {
	if err := checkDraft(draft); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateOrderRefs(ctx, draft.CustomerID, productIDs(draft.Items)); err != nil {
		return nil, err
	}

	order := *draft
	order.Items = append([]models.OrderItem(nil), draft.Items...)
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = s.now()
	}
	if order.Status == "" {
		order.Status = DefaultStatus
	}
	order.CreatedAt = s.now()

	if err := s.store.InsertOrder(ctx, &order); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"items_count": len(order.Items),
	}).Info("Order created")

	if s.sink != nil {
		s.sink.OrderCreated(&order)
	}
	return &order, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.store.GetOrder(ctx, id)
}

// UpdateOrder re-validates the proposed references, not the stored ones.
// Validation runs before the existence check on the order itself, so a bad
// reference is reported even when the target order is missing.
func (s *Service) UpdateOrder(ctx context.Context, id string, draft *models.Order) error {
	if err := checkDraft(draft); err != nil {
		return err
	}
	if err := s.validator.ValidateOrderRefs(ctx, draft.CustomerID, productIDs(draft.Items)); err != nil {
		return err
	}

	order := *draft
	order.ID = id
	if order.OrderDate.IsZero() {
		order.OrderDate = s.now()
	}
	if order.Status == "" {
		order.Status = DefaultStatus
	}

	if err := s.store.UpdateOrder(ctx, id, &order); err != nil {
		return err
	}

	s.logger.WithField("order_id", id).Info("Order updated")
	if s.sink != nil {
		s.sink.OrderUpdated(&order)
	}
	return nil
}

func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	if err := s.store.DeleteOrder(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("order_id", id).Info("Order deleted")
	if s.sink != nil {
		s.sink.OrderDeleted(id)
	}
	return nil
}

func (s *Service) ListOrders(ctx context.Context) ([]*models.Order, error) {
	return s.store.ListOrders(ctx)
}

// LatestOrder returns the most recently inserted order, by insertion
// sequence rather than the order's own date.
func (s *Service) LatestOrder(ctx context.Context) (*models.Order, error) {
	return s.store.LatestOrder(ctx)
}

// LatestOrderFeatures joins the latest order with its customer and first
// line item's product and flattens the fields the sales predictor consumes.
// Stale references surface as the store's not-found error.
func (s *Service) LatestOrderFeatures(ctx context.Context) (*models.OrderFeatures, error) {
	order, err := s.store.LatestOrder(ctx)
	if err != nil {
		return nil, err
	}
	customer, err := s.store.GetCustomer(ctx, order.CustomerID)
	if err != nil {
		return nil, err
	}

	features := &models.OrderFeatures{
		Order:      *order,
		Country:    customer.Country,
		State:      customer.State,
		OrderDay:   order.OrderDate.Day(),
		OrderMonth: int(order.OrderDate.Month()),
		OrderYear:  order.OrderDate.Year(),
	}
	if customer.PostalCode != nil {
		features.PostalCode = *customer.PostalCode
	}
	if len(order.Items) > 0 {
		product, err := s.store.GetProduct(ctx, order.Items[0].ProductID)
		if err != nil {
			return nil, err
		}
		features.Category = product.Description
	}
	return features, nil
}

// Customer CRUD. No cross-entity checks on write or delete; deleting a
// customer leaves orders that reference it untouched.

func (s *Service) CreateCustomer(ctx context.Context, draft *models.Customer) (*models.Customer, error) {
	customer := *draft
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	if err := s.store.InsertCustomer(ctx, &customer); err != nil {
		return nil, err
	}
	s.logger.WithField("customer_id", customer.ID).Info("Customer created")
	return &customer, nil
}

func (s *Service) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, draft *models.Customer) error {
	return s.store.UpdateCustomer(ctx, id, draft)
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	return s.store.DeleteCustomer(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	return s.store.ListCustomers(ctx)
}

// Product CRUD, same shape as customers.

func (s *Service) CreateProduct(ctx context.Context, draft *models.Product) (*models.Product, error) {
	product := *draft
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := s.store.InsertProduct(ctx, &product); err != nil {
		return nil, err
	}
	s.logger.WithField("product_id", product.ID).Info("Product created")
	return &product, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *Service) UpdateProduct(ctx context.Context, id string, draft *models.Product) error {
	return s.store.UpdateProduct(ctx, id, draft)
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.store.DeleteProduct(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context) ([]*models.Product, error) {
	return s.store.ListProducts(ctx)
}

func (s *Service) LatestProduct(ctx context.Context) (*models.Product, error) {
	return s.store.LatestProduct(ctx)
}

func checkDraft(draft *models.Order) error {
	if draft.CustomerID == "" {
		return &InvalidOrderError{Reason: "customer_id is required"}
	}
	if len(draft.Items) == 0 {
		return &InvalidOrderError{Reason: "order must contain at least one item"}
	}
	for _, item := range draft.Items {
		if item.ProductID == "" {
			return &InvalidOrderError{Reason: "item product_id is required"}
		}
		if item.Quantity <= 0 {
			return &InvalidOrderError{Reason: "item quantity must be a positive integer"}
		}
	}
	return nil
}

func productIDs(items []models.OrderItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}
