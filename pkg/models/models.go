package models

import (
	"time"
)

// Customer is a buyer record. PostalCode is a pointer because the source
// dataset leaves it blank for some regions.
type Customer struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Country    string `json:"country"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode *int   `json:"postal_code,omitempty"`
}

// Product is a catalog record. Description carries the category label from
// the source dataset and feeds the sales predictor.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
}

type Order struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customer_id"`
	Items      []OrderItem `json:"items"`
	OrderDate  time.Time   `json:"order_date"`
	Status     string      `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

type OrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderFeatures is the flattened latest-order payload served by
// GET /orders/last for the prediction client. Category comes from the first
// line item's product.
type OrderFeatures struct {
	Order      Order  `json:"order"`
	Country    string `json:"country"`
	State      string `json:"state"`
	PostalCode int    `json:"postal_code"`
	Category   string `json:"category"`
	OrderDay   int    `json:"order_day"`
	OrderMonth int    `json:"order_month"`
	OrderYear  int    `json:"order_year"`
}

type OrderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   *Order `json:"order,omitempty"`
}
