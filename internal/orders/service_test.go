package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aibeh/order-management/internal/store"
	"github.com/aibeh/order-management/pkg/models"
)

type recordingSink struct {
	created []string
	updated []string
	deleted []string
}

func (r *recordingSink) OrderCreated(o *models.Order) { r.created = append(r.created, o.ID) }
func (r *recordingSink) OrderUpdated(o *models.Order) { r.updated = append(r.updated, o.ID) }
func (r *recordingSink) OrderDeleted(id string)       { r.deleted = append(r.deleted, id) }

func newTestService(t *testing.T) (*Service, *store.MemoryStore, *recordingSink) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests

	st := store.NewMemoryStore()
	sink := &recordingSink{}
	return NewService(st, sink, logger), st, sink
}

func seedRefs(t *testing.T, st *store.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	pc := 90001
	if err := st.InsertCustomer(ctx, &models.Customer{ID: "C1", Name: "Ann", Country: "US", City: "X", State: "CA", PostalCode: &pc}); err != nil {
		t.Fatal(err)
	}
	if err := st.InsertProduct(ctx, &models.Product{ID: "P1", Name: "Widget", Price: 9.99}); err != nil {
		t.Fatal(err)
	}
}

func orderCount(t *testing.T, st *store.MemoryStore) int {
	t.Helper()
	list, err := st.ListOrders(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return len(list)
}

func TestCreateOrderMissingCustomerWritesNothing(t *testing.T) {
	ctx := context.Background()
	svc, st, sink := newTestService(t)
	seedRefs(t, st)

	draft := &models.Order{CustomerID: "C9", Items: []models.OrderItem{{ProductID: "P1", Quantity: 1}}}
	_, err := svc.CreateOrder(ctx, draft)

	var nf *CustomerNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected CustomerNotFoundError, got %v", err)
	}
	if n := orderCount(t, st); n != 0 {
		t.Errorf("orders collection count = %d, want 0", n)
	}
	if len(sink.created) != 0 {
		t.Errorf("sink notified despite validation failure: %v", sink.created)
	}
}

func TestCreateOrderMissingProductWritesNothing(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t)
	seedRefs(t, st)

	draft := &models.Order{CustomerID: "C1", Items: []models.OrderItem{{ProductID: "P9", Quantity: 1}}}
	_, err := svc.CreateOrder(ctx, draft)

	var nf *ProductNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected ProductNotFoundError, got %v", err)
	}
	if nf.ID != "P9" {
		t.Errorf("error carries ID %q, want P9", nf.ID)
	}
	if n := orderCount(t, st); n != 0 {
		t.Errorf("orders collection count = %d, want 0", n)
	}
}

func TestCreateOrderSucceedsAndReadsBack(t *testing.T) {
	ctx := context.Background()
	svc, st, sink := newTestService(t)
	seedRefs(t, st)

	draft := &models.Order{ID: "O1", CustomerID: "C1", Items: []models.OrderItem{{ProductID: "P1", Quantity: 2}}}
	created, err := svc.CreateOrder(ctx, draft)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "O1" {
		t.Errorf("caller-supplied ID replaced: %s", created.ID)
	}

	got, err := svc.GetOrder(ctx, "O1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.CustomerID != "C1" {
		t.Errorf("customer ref = %s, want C1", got.CustomerID)
	}
	if len(got.Items) != 1 || got.Items[0].ProductID != "P1" || got.Items[0].Quantity != 2 {
		t.Errorf("unexpected items: %+v", got.Items)
	}
	if got.Status != DefaultStatus {
		t.Errorf("status = %q, want %q", got.Status, DefaultStatus)
	}
	if got.OrderDate.IsZero() || got.CreatedAt.IsZero() {
		t.Error("timestamps were not defaulted")
	}
	if len(sink.created) != 1 || sink.created[0] != "O1" {
		t.Errorf("sink notifications = %v", sink.created)
	}
}

func TestCreateOrderGeneratesIDWhenAbsent(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t)
	seedRefs(t, st)

	created, err := svc.CreateOrder(ctx, &models.Order{CustomerID: "C1", Items: []models.OrderItem{{ProductID: "P1", Quantity: 1}}})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("no identifier generated")
	}
	if _, err := svc.GetOrder(ctx, created.ID); err != nil {
		t.Errorf("generated ID not readable: %v", err)
	}
}

func TestCreateOrderKeepsCallerTimestampAndStatus(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t)
	seedRefs(t, st)

	when := time.Date(2017, 11, 8, 0, 0, 0, 0, time.UTC)
	created, err := svc.CreateOrder(ctx, &models.Order{
		CustomerID: "C1",
		Items:      []models.OrderItem{{ProductID: "P1", Quantity: 1}},
		OrderDate:  when,
		Status:     "Pending",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !created.OrderDate.Equal(when) {
		t.Errorf("order date = %v, want %v", created.OrderDate, when)
	}
	if created.Status != "Pending" {
		t.Errorf("status = %q, want Pending", created.Status)
	}
}

func TestCreateOrderRejectsBadDrafts(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t)
	seedRefs(t, st)

	drafts := []*models.Order{
		{Items: []models.OrderItem{{ProductID: "P1", Quantity: 1}}}, // no customer
		{CustomerID: "C1"}, // no items
		{CustomerID: "C1", Items: []models.OrderItem{{Quantity: 1}}}, // no product ref
		{CustomerID: "C1", Items: []models.OrderItem{{ProductID: "P1", Quantity: 0}}},
		{CustomerID: "C1", Items: []models.OrderItem{{ProductID: "P1", Quantity: -2}}},
	}
	for i, draft := range drafts {
		_, err := svc.CreateOrder(ctx, draft)
		var invalid *InvalidOrderError
		if !errors.As(err, &invalid) {
			t.Errorf("draft %d: expected InvalidOrderError, got %v", i, err)
		}
	}
	if n := orderCount(t, st); n != 0 {
		t.Errorf("orders collection count = %d, want 0", n)
	}
}

func TestUpdateOrderInvalidRefLeavesStoredOrderUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t)
	seedRefs(t, st)

	if _, err := svc.CreateOrder(ctx, &models.Order{ID: "O1", CustomerID: "C1", Items: []models.OrderItem{{ProductID: "P1", Quantity: 2}}}); err != nil {
		t.Fatal(err)
	}

	err := svc.UpdateOrder(ctx, "O1", &models.Order{CustomerID: "C1", Items: []models.OrderItem{{ProductID: "P9", Quantity: 5}}})
	var nf *ProductNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected ProductNotFoundError, got %v", err)
	}

	got, err := svc.GetOrder(ctx, "O1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Items[0].ProductID != "P1" || got.Items[0].Quantity != 2 {
		t.Errorf("stored order changed by failed update: %+v", got.Items)
	}
}

func TestUpdateOrderValidationRunsBeforeExistenceCheck(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t)
	seedRefs(t, st)

	// The target order does not exist, but the bad reference is reported
	// first.
	err := svc.UpdateOrder(ctx, "O9", &models.Order{CustomerID: "C9", Items: []models.OrderItem{{ProductID: "P1", Quantity: 1}}})
	var cnf *CustomerNotFoundError
	if !errors.As(err, &cnf) {
		t.Fatalf("expected CustomerNotFoundError, got %v", err)
	}

	// With valid references the missing order surfaces as a store not-found.
	err = svc.UpdateOrder(ctx, "O9", &models.Order{CustomerID: "C1", Items: []models.OrderItem{{ProductID: "P1", Quantity: 1}}})
	var snf *store.NotFoundError
	if !errors.As(err, &snf) {
		t.Fatalf("expected store NotFoundError, got %v", err)
	}
}

func TestUpdateOrderRevalidatesProposedRefs(t *testing.T) {
	ctx := context.Background()
	svc, st, sink := newTestService(t)
	seedRefs(t, st)
	st.InsertCustomer(ctx, &models.Customer{ID: "C2", Name: "Ben"})

	if _, err := svc.CreateOrder(ctx, &models.Order{ID: "O1", CustomerID: "C1", Items: []models.OrderItem{{ProductID: "P1", Quantity: 1}}}); err != nil {
		t.Fatal(err)
	}
	if err := svc.UpdateOrder(ctx, "O1", &models.Order{CustomerID: "C2", Items: []models.OrderItem{{ProductID: "P1", Quantity: 3}}}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := svc.GetOrder(ctx, "O1")
	if got.CustomerID != "C2" || got.Items[0].Quantity != 3 {
		t.Errorf("update not applied: %+v", got)
	}
	if len(sink.updated) != 1 || sink.updated[0] != "O1" {
		t.Errorf("sink updates = %v", sink.updated)
	}
}

func TestLatestOrderIgnoresOrderDate(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t)
	seedRefs(t, st)

	older := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, o := range []*models.Order{
		{ID: "O1", CustomerID: "C1", OrderDate: newer, Items: []models.OrderItem{{ProductID: "P1", Quantity: 1}}},
		{ID: "O2", CustomerID: "C1", OrderDate: older, Items: []models.OrderItem{{ProductID: "P1", Quantity: 1}}},
	} {
		if _, err := svc.CreateOrder(ctx, o); err != nil {
			t.Fatal(err)
		}
	}

	latest, err := svc.LatestOrder(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != "O2" {
		t.Errorf("latest = %s, want last-inserted O2", latest.ID)
	}
}

func TestDeleteCustomerLeavesReferencingOrders(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t)
	seedRefs(t, st)

	if _, err := svc.CreateOrder(ctx, &models.Order{ID: "O1", CustomerID: "C1", Items: []models.OrderItem{{ProductID: "P1", Quantity: 2}}}); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteCustomer(ctx, "C1"); err != nil {
		t.Fatal(err)
	}

	got, err := svc.GetOrder(ctx, "O1")
	if err != nil {
		t.Fatalf("order gone after customer delete: %v", err)
	}
	if got.CustomerID != "C1" {
		t.Errorf("stale reference rewritten: %s", got.CustomerID)
	}
}

func TestDeleteOrderNotifiesSink(t *testing.T) {
	ctx := context.Background()
	svc, st, sink := newTestService(t)
	seedRefs(t, st)

	if _, err := svc.CreateOrder(ctx, &models.Order{ID: "O1", CustomerID: "C1", Items: []models.OrderItem{{ProductID: "P1", Quantity: 1}}}); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteOrder(ctx, "O1"); err != nil {
		t.Fatal(err)
	}
	if len(sink.deleted) != 1 || sink.deleted[0] != "O1" {
		t.Errorf("sink deletions = %v", sink.deleted)
	}
}

func TestLatestOrderFeaturesJoinsAndFlattens(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t)
	seedRefs(t, st)
	st.UpdateProduct(ctx, "P1", &models.Product{Name: "Widget", Price: 9.99, Description: "Furniture"})

	when := time.Date(2017, 11, 8, 0, 0, 0, 0, time.UTC)
	if _, err := svc.CreateOrder(ctx, &models.Order{ID: "O1", CustomerID: "C1", OrderDate: when, Items: []models.OrderItem{{ProductID: "P1", Quantity: 2}}}); err != nil {
		t.Fatal(err)
	}

	features, err := svc.LatestOrderFeatures(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if features.Country != "US" || features.State != "CA" || features.PostalCode != 90001 {
		t.Errorf("customer fields not flattened: %+v", features)
	}
	if features.Category != "Furniture" {
		t.Errorf("category = %q, want Furniture", features.Category)
	}
	if features.OrderDay != 8 || features.OrderMonth != 11 || features.OrderYear != 2017 {
		t.Errorf("date fields = %d/%d/%d", features.OrderDay, features.OrderMonth, features.OrderYear)
	}
	if features.Order.ID != "O1" {
		t.Errorf("embedded order = %s", features.Order.ID)
	}
}

func TestLatestOrderFeaturesStaleReferenceIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t)
	seedRefs(t, st)

	if _, err := svc.CreateOrder(ctx, &models.Order{ID: "O1", CustomerID: "C1", Items: []models.OrderItem{{ProductID: "P1", Quantity: 1}}}); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteCustomer(ctx, "C1"); err != nil {
		t.Fatal(err)
	}

	_, err := svc.LatestOrderFeatures(ctx)
	var nf *store.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected store NotFoundError for stale customer, got %v", err)
	}
}
