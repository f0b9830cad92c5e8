// Package seed populates the three collections from the superstore-layout
// sales CSV. It writes directly to the record store, not through the HTTP
// API, and skips any record whose identifier already exists.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aibeh/order-management/internal/store"
	"github.com/aibeh/order-management/pkg/models"
)

// dateLayout matches the dataset's day-first order dates, e.g. 8/11/2017.
const dateLayout = "2/1/2006"

var requiredColumns = []string{
	"Order ID", "Order Date", "Customer ID", "Customer Name",
	"Country", "City", "State", "Postal Code",
	"Product ID", "Category", "Product Name", "Sales",
}

// Row is one parsed dataset line. Every entity field it feeds is already
// deduplicated by the caller.
type Row struct {
	OrderID      string
	OrderDate    time.Time
	CustomerID   string
	CustomerName string
	Country      string
	City         string
	State        string
	PostalCode   *int
	ProductID    string
	Category     string
	ProductName  string
	Sales        float64
}

// Summary counts what the run did per collection.
type Summary struct {
	Customers Counts
	Products  Counts
	Orders    Counts
	BadRows   int
}

type Counts struct {
	Inserted int
	Skipped  int
}

type Seeder struct {
	store  store.Store
	logger *logrus.Logger
}

func NewSeeder(st store.Store, logger *logrus.Logger) *Seeder {
	return &Seeder{store: st, logger: logger}
}

// Run parses the dataset and seeds customers, then products, then orders.
// With reset set, all three collections are cleared first. Records whose
// identifier already exists are skipped and counted, never an error;
// malformed rows are skipped with a warning.
func (s *Seeder) Run(ctx context.Context, r io.Reader, reset bool) (*Summary, error) {
	rows, badRows, err := ParseDataset(r, s.logger)
	if err != nil {
		return nil, err
	}

	if reset {
		if err := s.store.Reset(ctx); err != nil {
			return nil, fmt.Errorf("reset collections: %w", err)
		}
		s.logger.Info("Cleared existing records")
	}

	summary := &Summary{BadRows: badRows}
	if err := s.seedCustomers(ctx, rows, &summary.Customers); err != nil {
		return nil, err
	}
	if err := s.seedProducts(ctx, rows, &summary.Products); err != nil {
		return nil, err
	}
	if err := s.seedOrders(ctx, rows, &summary.Orders); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"customers_inserted": summary.Customers.Inserted,
		"products_inserted":  summary.Products.Inserted,
		"orders_inserted":    summary.Orders.Inserted,
		"bad_rows":           summary.BadRows,
	}).Info("Seeding completed")
	return summary, nil
}

// ParseDataset reads the CSV into rows, skipping malformed lines with a
// warning and returning how many were skipped. The header must carry every
// required column.
func ParseDataset(r io.Reader, logger *logrus.Logger) ([]Row, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, 0, fmt.Errorf("dataset is missing column %q", name)
		}
	}

	var (
		rows    []Row
		badRows int
	)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.WithError(err).WithField("line", line).Warn("Skipping malformed row")
			badRows++
			continue
		}

		row, err := parseRow(record, index)
		if err != nil {
			logger.WithError(err).WithField("line", line).Warn("Skipping malformed row")
			badRows++
			continue
		}
		rows = append(rows, row)
	}
	return rows, badRows, nil
}

func parseRow(record []string, index map[string]int) (Row, error) {
	field := func(name string) string {
		i := index[name]
		if i >= len(record) {
			return ""
		}
		return record[i]
	}

	row := Row{
		OrderID:      field("Order ID"),
		CustomerID:   field("Customer ID"),
		CustomerName: field("Customer Name"),
		Country:      field("Country"),
		City:         field("City"),
		State:        field("State"),
		ProductID:    field("Product ID"),
		Category:     field("Category"),
		ProductName:  field("Product Name"),
	}
	if row.OrderID == "" || row.CustomerID == "" || row.ProductID == "" {
		return Row{}, errors.New("missing identifier")
	}

	date, err := time.Parse(dateLayout, field("Order Date"))
	if err != nil {
		return Row{}, fmt.Errorf("order date: %w", err)
	}
	row.OrderDate = date

	if v := field("Postal Code"); v != "" {
		// Postal codes appear as floats in some exports ("90001.0").
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Row{}, fmt.Errorf("postal code: %w", err)
		}
		pc := int(f)
		row.PostalCode = &pc
	}

	if v := field("Sales"); v != "" {
		sales, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Row{}, fmt.Errorf("sales: %w", err)
		}
		row.Sales = sales
	}
	return row, nil
}

func (s *Seeder) seedCustomers(ctx context.Context, rows []Row, counts *Counts) error {
	seen := make(map[string]bool)
	for _, row := range rows {
		if seen[row.CustomerID] {
			continue
		}
		seen[row.CustomerID] = true

		customer := &models.Customer{
			ID:         row.CustomerID,
			Name:       row.CustomerName,
			Country:    row.Country,
			City:       row.City,
			State:      row.State,
			PostalCode: row.PostalCode,
		}
		if err := s.insertCounted(counts, "customer", customer.ID, s.store.InsertCustomer(ctx, customer)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedProducts(ctx context.Context, rows []Row, counts *Counts) error {
	seen := make(map[string]bool)
	for _, row := range rows {
		if seen[row.ProductID] {
			continue
		}
		seen[row.ProductID] = true

		product := &models.Product{
			ID:          row.ProductID,
			Name:        row.ProductName,
			Price:       row.Sales,
			Description: row.Category,
		}
		if err := s.insertCounted(counts, "product", product.ID, s.store.InsertProduct(ctx, product)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedOrders(ctx context.Context, rows []Row, counts *Counts) error {
	seen := make(map[string]bool)
	for _, row := range rows {
		if seen[row.OrderID] {
			continue
		}
		seen[row.OrderID] = true

		// The dataset carries no quantity; default to 1 like the source data
		// load did.
		order := &models.Order{
			ID:         row.OrderID,
			CustomerID: row.CustomerID,
			Items:      []models.OrderItem{{ProductID: row.ProductID, Quantity: 1}},
			OrderDate:  row.OrderDate,
			Status:     "Completed",
			CreatedAt:  time.Now(),
		}
		if err := s.insertCounted(counts, "order", order.ID, s.store.InsertOrder(ctx, order)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) insertCounted(counts *Counts, kind, id string, err error) error {
	var dup *store.DuplicateIDError
	switch {
	case err == nil:
		counts.Inserted++
	case errors.As(err, &dup):
		s.logger.WithFields(logrus.Fields{"kind": kind, "id": id}).Info("Record already exists, skipping insertion")
		counts.Skipped++
	default:
		return fmt.Errorf("insert %s %s: %w", kind, id, err)
	}
	return nil
}
