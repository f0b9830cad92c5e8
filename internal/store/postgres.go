package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/aibeh/order-management/pkg/models"
)

// PostgresStore keeps each collection in its own table. A BIGSERIAL seq
// column supplies insertion order for the latest-record reads. There are no
// foreign keys between collections; reference validation happens in the
// service layer at write time only.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects, waits for the database to accept connections and
// bootstraps the schema.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	for i := 0; i < 30; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			country VARCHAR(255) NOT NULL DEFAULT '',
			city VARCHAR(255) NOT NULL DEFAULT '',
			state VARCHAR(255) NOT NULL DEFAULT '',
			postal_code INTEGER,
			seq BIGSERIAL
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price DECIMAL(10,2) NOT NULL DEFAULT 0,
			description TEXT NOT NULL DEFAULT '',
			seq BIGSERIAL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id VARCHAR(255) PRIMARY KEY,
			customer_id VARCHAR(255) NOT NULL,
			order_date TIMESTAMP NOT NULL,
			status VARCHAR(50) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			seq BIGSERIAL
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id SERIAL PRIMARY KEY,
			order_id VARCHAR(255) NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id VARCHAR(255) NOT NULL,
			quantity INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) InsertCustomer(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO customers (id, name, country, city, state, postal_code)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query, c.ID, c.Name, c.Country, c.City, c.State, postalValue(c.PostalCode))
	return translateInsertErr(err, EntityCustomer, c.ID)
}

func (s *PostgresStore) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	c := &models.Customer{}
	var postal sql.NullInt64
	query := `SELECT id, name, country, city, state, postal_code FROM customers WHERE id = $1`
	err := s.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Country, &c.City, &c.State, &postal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: EntityCustomer, ID: id}
	}
	if err != nil {
		return nil, err
	}
	if postal.Valid {
		pc := int(postal.Int64)
		c.PostalCode = &pc
	}
	return c, nil
}

func (s *PostgresStore) UpdateCustomer(ctx context.Context, id string, c *models.Customer) error {
	query := `
		UPDATE customers SET name = $2, country = $3, city = $4, state = $5, postal_code = $6
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, id, c.Name, c.Country, c.City, c.State, postalValue(c.PostalCode))
	return translateWriteErr(res, err, EntityCustomer, id)
}

func (s *PostgresStore) DeleteCustomer(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	return translateWriteErr(res, err, EntityCustomer, id)
}

func (s *PostgresStore) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	query := `SELECT id, name, country, city, state, postal_code FROM customers ORDER BY seq`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Customer
	for rows.Next() {
		c := &models.Customer{}
		var postal sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Name, &c.Country, &c.City, &c.State, &postal); err != nil {
			return nil, err
		}
		if postal.Valid {
			pc := int(postal.Int64)
			c.PostalCode = &pc
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) InsertProduct(ctx context.Context, p *models.Product) error {
	query := `INSERT INTO products (id, name, price, description) VALUES ($1, $2, $3, $4)`
	_, err := s.db.ExecContext(ctx, query, p.ID, p.Name, p.Price, p.Description)
	return translateInsertErr(err, EntityProduct, p.ID)
}

func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p := &models.Product{}
	query := `SELECT id, name, price, description FROM products WHERE id = $1`
	err := s.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Price, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: EntityProduct, ID: id}
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, id string, p *models.Product) error {
	query := `UPDATE products SET name = $2, price = $3, description = $4 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, id, p.Name, p.Price, p.Description)
	return translateWriteErr(res, err, EntityProduct, id)
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	return translateWriteErr(res, err, EntityProduct, id)
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]*models.Product, error) {
	query := `SELECT id, name, price, description FROM products ORDER BY seq`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) LatestProduct(ctx context.Context) (*models.Product, error) {
	p := &models.Product{}
	query := `SELECT id, name, price, description FROM products ORDER BY seq DESC LIMIT 1`
	err := s.db.QueryRowContext(ctx, query).Scan(&p.ID, &p.Name, &p.Price, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: EntityProduct, ID: ""}
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostgresStore) InsertOrder(ctx context.Context, o *models.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (id, customer_id, order_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, query, o.ID, o.CustomerID, o.OrderDate, o.Status, o.CreatedAt); err != nil {
		return translateInsertErr(err, EntityOrder, o.ID)
	}
	if err := insertItems(ctx, tx, o.ID, o.Items); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	o := &models.Order{}
	query := `SELECT id, customer_id, order_date, status, created_at FROM orders WHERE id = $1`
	err := s.db.QueryRowContext(ctx, query, id).Scan(&o.ID, &o.CustomerID, &o.OrderDate, &o.Status, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: EntityOrder, ID: id}
	}
	if err != nil {
		return nil, err
	}
	if o.Items, err = s.orderItems(ctx, id); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *PostgresStore) UpdateOrder(ctx context.Context, id string, o *models.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE orders SET customer_id = $2, order_date = $3, status = $4, created_at = $5
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, query, id, o.CustomerID, o.OrderDate, o.Status, o.CreatedAt)
	if err := translateWriteErr(res, err, EntityOrder, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return err
	}
	if err := insertItems(ctx, tx, id, o.Items); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) DeleteOrder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	return translateWriteErr(res, err, EntityOrder, id)
}

func (s *PostgresStore) ListOrders(ctx context.Context) ([]*models.Order, error) {
	query := `SELECT id, customer_id, order_date, status, created_at FROM orders ORDER BY seq`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Order
	for rows.Next() {
		o := &models.Order{}
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.OrderDate, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range out {
		if o.Items, err = s.orderItems(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PostgresStore) LatestOrder(ctx context.Context) (*models.Order, error) {
	o := &models.Order{}
	query := `SELECT id, customer_id, order_date, status, created_at FROM orders ORDER BY seq DESC LIMIT 1`
	err := s.db.QueryRowContext(ctx, query).Scan(&o.ID, &o.CustomerID, &o.OrderDate, &o.Status, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: EntityOrder, ID: ""}
	}
	if err != nil {
		return nil, err
	}
	if o.Items, err = s.orderItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *PostgresStore) Reset(ctx context.Context) error {
	for _, query := range []string{
		`DELETE FROM order_items`,
		`DELETE FROM orders`,
		`DELETE FROM products`,
		`DELETE FROM customers`,
	} {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) orderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	query := `SELECT product_id, quantity FROM order_items WHERE order_id = $1 ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func insertItems(ctx context.Context, tx *sql.Tx, orderID string, items []models.OrderItem) error {
	query := `INSERT INTO order_items (order_id, product_id, quantity) VALUES ($1, $2, $3)`
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, query, orderID, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func postalValue(pc *int) sql.NullInt64 {
	if pc == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*pc), Valid: true}
}

func translateInsertErr(err error, entity, id string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return &DuplicateIDError{Entity: entity, ID: id}
	}
	return err
}

func translateWriteErr(res sql.Result, err error, entity, id string) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return nil
}
