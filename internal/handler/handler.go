// Package handler exposes the HTTP surface: order creation for the
// storefront, and listing/update/delete/export for the staff tooling.
package handler

import (
	"net/http"

	"github.com/tamilyouth/preorder-api/internal/domain/catalog"
	"github.com/tamilyouth/preorder-api/internal/domain/order"
)

// Handler holds the domain dependencies behind the HTTP routes.
type Handler struct {
	menu   *catalog.Catalog
	orders *order.Service
}

// New constructs a Handler.
func New(menu *catalog.Catalog, orders *order.Service) *Handler {
	return &Handler{
		menu:   menu,
		orders: orders,
	}
}

// Register mounts all API routes on the mux. Method matching is done by the
// mux patterns; an unmatched method yields the stdlib 405.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("POST /api/orders", h.CreateOrder)
	mux.HandleFunc("GET /api/orders", h.ListOrders)
	mux.HandleFunc("PUT /api/orders", h.UpdateOrder)
	mux.HandleFunc("DELETE /api/orders", h.DeleteOrder)
	mux.HandleFunc("GET /api/orders/export", h.ExportOrders)
}
