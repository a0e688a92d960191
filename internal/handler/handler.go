// Package handler exposes the terminal session and catalog editor over HTTP
// for the rendering layer. It owns no business logic: requests are decoded,
// delegated, and domain rejections mapped to status codes.
package handler

import (
	"net/http"

	"github.com/misagal/retail-pos/internal/catalog"
	"github.com/misagal/retail-pos/internal/pos"
)

// Handler serves the POS and catalog admin routes.
type Handler struct {
	terminal *pos.Terminal
	admin    *catalog.Admin
}

// NewHandler constructs a Handler over one terminal session and the catalog
// editor.
func NewHandler(terminal *pos.Terminal, admin *catalog.Admin) *Handler {
	return &Handler{terminal: terminal, admin: admin}
}

// Routes returns the API route table.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	// Catalog admin path.
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("POST /api/products", h.CreateProduct)
	mux.HandleFunc("PUT /api/products/{id}", h.UpdateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", h.DeleteProduct)

	// Sales session.
	mux.HandleFunc("GET /api/cart", h.GetCart)
	mux.HandleFunc("POST /api/cart/items", h.AddCartItem)
	mux.HandleFunc("POST /api/cart/items/{id}/increment", h.IncrementCartItem)
	mux.HandleFunc("POST /api/cart/items/{id}/decrement", h.DecrementCartItem)
	mux.HandleFunc("DELETE /api/cart", h.ClearCart)
	mux.HandleFunc("POST /api/checkout", h.Checkout)

	return mux
}
