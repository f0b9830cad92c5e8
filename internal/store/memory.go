package store

import (
	"context"
	"sort"
	"sync"

	"github.com/aibeh/order-management/pkg/models"
)

// MemoryStore is a map-backed Store used by tests and by the seeder's
// dry-run mode. Records are copied on the way in and out so callers can
// never alias stored state.
type MemoryStore struct {
	mu        sync.RWMutex
	customers map[string]*models.Customer
	products  map[string]*models.Product
	orders    map[string]*models.Order
	seq       map[string]int64 // collection-qualified id -> insertion sequence
	nextSeq   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers: make(map[string]*models.Customer),
		products:  make(map[string]*models.Product),
		orders:    make(map[string]*models.Order),
		seq:       make(map[string]int64),
	}
}

func (m *MemoryStore) InsertCustomer(_ context.Context, c *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[c.ID]; ok {
		return &DuplicateIDError{Entity: EntityCustomer, ID: c.ID}
	}
	m.customers[c.ID] = copyCustomer(c)
	m.touch(EntityCustomer, c.ID)
	return nil
}

func (m *MemoryStore) GetCustomer(_ context.Context, id string) (*models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, &NotFoundError{Entity: EntityCustomer, ID: id}
	}
	return copyCustomer(c), nil
}

func (m *MemoryStore) UpdateCustomer(_ context.Context, id string, c *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[id]; !ok {
		return &NotFoundError{Entity: EntityCustomer, ID: id}
	}
	updated := copyCustomer(c)
	updated.ID = id
	m.customers[id] = updated
	return nil
}

func (m *MemoryStore) DeleteCustomer(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[id]; !ok {
		return &NotFoundError{Entity: EntityCustomer, ID: id}
	}
	delete(m.customers, id)
	delete(m.seq, EntityCustomer+"/"+id)
	return nil
}

func (m *MemoryStore) ListCustomers(_ context.Context) ([]*models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		out = append(out, copyCustomer(c))
	}
	sort.Slice(out, func(i, j int) bool {
		return m.seq[EntityCustomer+"/"+out[i].ID] < m.seq[EntityCustomer+"/"+out[j].ID]
	})
	return out, nil
}

func (m *MemoryStore) InsertProduct(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; ok {
		return &DuplicateIDError{Entity: EntityProduct, ID: p.ID}
	}
	cp := *p
	m.products[p.ID] = &cp
	m.touch(EntityProduct, p.ID)
	return nil
}

func (m *MemoryStore) GetProduct(_ context.Context, id string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, &NotFoundError{Entity: EntityProduct, ID: id}
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) UpdateProduct(_ context.Context, id string, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return &NotFoundError{Entity: EntityProduct, ID: id}
	}
	cp := *p
	cp.ID = id
	m.products[id] = &cp
	return nil
}

func (m *MemoryStore) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return &NotFoundError{Entity: EntityProduct, ID: id}
	}
	delete(m.products, id)
	delete(m.seq, EntityProduct+"/"+id)
	return nil
}

func (m *MemoryStore) ListProducts(_ context.Context) ([]*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Product, 0, len(m.products))
	for _, p := range m.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return m.seq[EntityProduct+"/"+out[i].ID] < m.seq[EntityProduct+"/"+out[j].ID]
	})
	return out, nil
}

func (m *MemoryStore) LatestProduct(_ context.Context) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.latestID(EntityProduct)
	if !ok {
		return nil, &NotFoundError{Entity: EntityProduct, ID: ""}
	}
	cp := *m.products[id]
	return &cp, nil
}

func (m *MemoryStore) InsertOrder(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.ID]; ok {
		return &DuplicateIDError{Entity: EntityOrder, ID: o.ID}
	}
	m.orders[o.ID] = copyOrder(o)
	m.touch(EntityOrder, o.ID)
	return nil
}

func (m *MemoryStore) GetOrder(_ context.Context, id string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, &NotFoundError{Entity: EntityOrder, ID: id}
	}
	return copyOrder(o), nil
}

func (m *MemoryStore) UpdateOrder(_ context.Context, id string, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return &NotFoundError{Entity: EntityOrder, ID: id}
	}
	updated := copyOrder(o)
	updated.ID = id
	m.orders[id] = updated
	return nil
}

func (m *MemoryStore) DeleteOrder(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return &NotFoundError{Entity: EntityOrder, ID: id}
	}
	delete(m.orders, id)
	delete(m.seq, EntityOrder+"/"+id)
	return nil
}

func (m *MemoryStore) ListOrders(_ context.Context) ([]*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		return m.seq[EntityOrder+"/"+out[i].ID] < m.seq[EntityOrder+"/"+out[j].ID]
	})
	return out, nil
}

func (m *MemoryStore) LatestOrder(_ context.Context) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.latestID(EntityOrder)
	if !ok {
		return nil, &NotFoundError{Entity: EntityOrder, ID: ""}
	}
	return copyOrder(m.orders[id]), nil
}

func (m *MemoryStore) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers = make(map[string]*models.Customer)
	m.products = make(map[string]*models.Product)
	m.orders = make(map[string]*models.Order)
	m.seq = make(map[string]int64)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// touch records insertion order. Callers hold the write lock.
func (m *MemoryStore) touch(entity, id string) {
	m.nextSeq++
	m.seq[entity+"/"+id] = m.nextSeq
}

// latestID returns the id with the greatest insertion sequence in a
// collection. Callers hold at least the read lock.
func (m *MemoryStore) latestID(entity string) (string, bool) {
	var (
		bestID  string
		bestSeq int64
		found   bool
	)
	prefix := entity + "/"
	for key, seq := range m.seq {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix && seq > bestSeq {
			bestSeq = seq
			bestID = key[len(prefix):]
			found = true
		}
	}
	return bestID, found
}

func copyCustomer(c *models.Customer) *models.Customer {
	cp := *c
	if c.PostalCode != nil {
		pc := *c.PostalCode
		cp.PostalCode = &pc
	}
	return &cp
}

func copyOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	return &cp
}
