// Package api exposes the CRUD surface over gorilla/mux. Handlers decode,
// delegate to the order service and translate its error taxonomy to HTTP
// statuses: missing records and bad references are both 404 with an
// entity-specific message, duplicate identifiers are 409, malformed drafts
// are 400.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/aibeh/order-management/internal/orders"
	"github.com/aibeh/order-management/internal/store"
	"github.com/aibeh/order-management/pkg/models"
)

type Handler struct {
	service *orders.Service
	logger  *logrus.Logger
}

func NewHandler(service *orders.Service, logger *logrus.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var draft models.Customer
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	customer, err := h.service.CreateCustomer(r.Context(), &draft)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, customer)
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.service.GetCustomer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, customer)
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var draft models.Customer
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdateCustomer(r.Context(), mux.Vars(r)["id"], &draft); err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]string{"message": "Customer updated successfully"})
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCustomer(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]string{"message": "Customer deleted successfully"})
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context())
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"customers": customers,
		"count":     len(customers),
	})
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var draft models.Product
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &draft)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, product)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, product)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var draft models.Product
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdateProduct(r.Context(), mux.Vars(r)["id"], &draft); err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]string{"message": "Product updated successfully"})
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"products": products,
		"count":    len(products),
	})
}

func (h *Handler) LatestProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.LatestProduct(r.Context())
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, product)
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var draft models.Order
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.service.CreateOrder(r.Context(), &draft)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, models.OrderResponse{
		Success: true,
		Message: "Order created successfully",
		Order:   order,
	})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, order)
}

func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var draft models.Order
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdateOrder(r.Context(), mux.Vars(r)["id"], &draft); err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]string{"message": "Order updated successfully"})
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteOrder(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]string{"message": "Order deleted successfully"})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListOrders(r.Context())
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"orders":  list,
		"count":   len(list),
	})
}

// LatestOrder serves the joined, flattened payload the prediction client
// consumes.
func (h *Handler) LatestOrder(w http.ResponseWriter, r *http.Request) {
	features, err := h.service.LatestOrderFeatures(r.Context())
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, features)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "order-service",
	})
}

func (h *Handler) respondWithServiceError(w http.ResponseWriter, err error) {
	var (
		customerNF *orders.CustomerNotFoundError
		productNF  *orders.ProductNotFoundError
		invalid    *orders.InvalidOrderError
		notFound   *store.NotFoundError
		duplicate  *store.DuplicateIDError
	)
	switch {
	case errors.As(err, &customerNF), errors.As(err, &productNF):
		h.respondWithError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &notFound):
		h.respondWithError(w, http.StatusNotFound, notFound.Entity+" not found")
	case errors.As(err, &duplicate):
		h.respondWithError(w, http.StatusConflict, err.Error())
	case errors.As(err, &invalid):
		h.respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.WithError(err).Error("Request failed")
		h.respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
