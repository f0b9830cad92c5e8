package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// FeedHandler serves the WebSocket order feed. Nil disables the /ws route.
type FeedHandler interface {
	HandleWebSocket(w http.ResponseWriter, r *http.Request)
}

// NewRouter wires every route. The fixed /products/last and /orders/last
// paths are registered before the {id} variants so mux matches them first.
func NewRouter(h *Handler, feed FeedHandler, logger *logrus.Logger) *mux.Router {
	r := mux.NewRouter().StrictSlash(true)

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	r.HandleFunc("/customers", h.CreateCustomer).Methods("POST")
	r.HandleFunc("/customers", h.ListCustomers).Methods("GET")
	r.HandleFunc("/customers/{id}", h.GetCustomer).Methods("GET")
	r.HandleFunc("/customers/{id}", h.UpdateCustomer).Methods("PUT")
	r.HandleFunc("/customers/{id}", h.DeleteCustomer).Methods("DELETE")

	r.HandleFunc("/products", h.CreateProduct).Methods("POST")
	r.HandleFunc("/products", h.ListProducts).Methods("GET")
	r.HandleFunc("/products/last", h.LatestProduct).Methods("GET")
	r.HandleFunc("/products/{id}", h.GetProduct).Methods("GET")
	r.HandleFunc("/products/{id}", h.UpdateProduct).Methods("PUT")
	r.HandleFunc("/products/{id}", h.DeleteProduct).Methods("DELETE")

	r.HandleFunc("/orders", h.CreateOrder).Methods("POST")
	r.HandleFunc("/orders", h.ListOrders).Methods("GET")
	r.HandleFunc("/orders/last", h.LatestOrder).Methods("GET")
	r.HandleFunc("/orders/{id}", h.GetOrder).Methods("GET")
	r.HandleFunc("/orders/{id}", h.UpdateOrder).Methods("PUT")
	r.HandleFunc("/orders/{id}", h.DeleteOrder).Methods("DELETE")

	if feed != nil {
		r.HandleFunc("/ws", feed.HandleWebSocket)
	}

	r.Use(loggingMiddleware(logger))
	return r
}

func loggingMiddleware(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"remote":   r.RemoteAddr,
				"duration": time.Since(start).Milliseconds(),
			}).Info("Request completed")
		})
	}
}
