package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/misagal/retail-pos/internal/catalog"
)

// GetCart returns the cart lines and running total.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	lines := h.terminal.CartLines()
	total := h.terminal.CartTotal()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("lines")
		e.ArrStart()
		for _, l := range lines {
			encodeLine(e, l)
		}
		e.ArrEnd()
		e.FieldStart("total")
		e.Num(jx.Num(total.String()))
		e.ObjEnd()
	})
}

// AddCartItem adds one unit of a product to the cart, creating or
// incrementing its line.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := decodeProductID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.terminal.AddToCart(r.Context(), productID); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.GetCart(w, r)
}

// IncrementCartItem raises an existing line by one unit.
func (h *Handler) IncrementCartItem(w http.ResponseWriter, r *http.Request) {
	if err := h.terminal.IncrementLine(r.Context(), r.PathValue("id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.GetCart(w, r)
}

// DecrementCartItem lowers a line by one unit, removing it at zero.
func (h *Handler) DecrementCartItem(w http.ResponseWriter, r *http.Request) {
	if err := h.terminal.DecrementLine(r.PathValue("id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.GetCart(w, r)
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.terminal.ClearCart()
	w.WriteHeader(http.StatusNoContent)
}

// decodeProductID parses a {"productId": "..."} body.
func decodeProductID(r *http.Request) (string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return "", errors.Wrap(err, "read body")
	}

	var productID string
	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		return "", &catalog.InvalidInputError{Field: "body", Reason: "expected a JSON object"}
	}
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key == "productId" {
			var err error
			productID, err = d.Str()
			return err
		}
		return d.Skip()
	}); err != nil {
		return "", &catalog.InvalidInputError{Field: "body", Reason: err.Error()}
	}

	if productID == "" {
		return "", &catalog.InvalidInputError{Field: "productId", Reason: "required"}
	}
	return productID, nil
}
