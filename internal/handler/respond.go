package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/misagal/retail-pos/internal/cart"
	"github.com/misagal/retail-pos/internal/catalog"
	"github.com/misagal/retail-pos/internal/checkout"
)

// writeJSON encodes one value with fn and writes it with the given status.
func writeJSON(w http.ResponseWriter, status int, fn func(e *jx.Encoder)) {
	var e jx.Encoder
	fn(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeErrorObj writes a {code, message} error body, optionally extended by
// extra.
func writeErrorObj(w http.ResponseWriter, status int, message string, extra func(e *jx.Encoder)) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(message)
		if extra != nil {
			extra(e)
		}
		e.ObjEnd()
	})
}

// respondError maps domain rejections to HTTP responses. Unknown errors are
// logged and reported opaquely.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *catalog.InvalidInputError
	if errors.As(err, &invalid) {
		writeErrorObj(w, http.StatusBadRequest, invalid.Error(), nil)
		return
	}

	if errors.Is(err, checkout.ErrEmptyCart) {
		writeErrorObj(w, http.StatusBadRequest, "cart is empty, add items before finalizing", nil)
		return
	}

	if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, cart.ErrLineNotFound) {
		writeErrorObj(w, http.StatusNotFound, err.Error(), nil)
		return
	}

	var missing *checkout.ProductNotFoundError
	if errors.As(err, &missing) {
		writeErrorObj(w, http.StatusUnprocessableEntity, missing.Error(), func(e *jx.Encoder) {
			e.FieldStart("productId")
			e.Str(missing.ProductID)
		})
		return
	}

	var stock *cart.InsufficientStockError
	if errors.As(err, &stock) {
		writeErrorObj(w, http.StatusConflict, stock.Error(), func(e *jx.Encoder) {
			e.FieldStart("productId")
			e.Str(stock.ProductID)
			e.FieldStart("requested")
			e.Int(stock.Requested)
			e.FieldStart("available")
			e.Int(stock.Available)
		})
		return
	}

	zctx.From(r.Context()).Error("Request failed", zap.Error(err))
	writeErrorObj(w, http.StatusInternalServerError, "internal error", nil)
}

// encodeProduct writes one product object.
func encodeProduct(e *jx.Encoder, p catalog.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("detail")
	e.Str(p.Detail)
	e.FieldStart("price")
	e.Num(jx.Num(p.Price.String()))
	e.FieldStart("stock")
	e.Int(p.Stock)
	e.FieldStart("image")
	e.Str(p.Image)
	e.ObjEnd()
}

// encodeLine writes one cart line object.
func encodeLine(e *jx.Encoder, l cart.Line) {
	e.ObjStart()
	e.FieldStart("productId")
	e.Str(l.ProductID)
	e.FieldStart("name")
	e.Str(l.Name)
	e.FieldStart("price")
	e.Num(jx.Num(l.Price.String()))
	e.FieldStart("quantity")
	e.Int(l.Quantity)
	e.FieldStart("subtotal")
	e.Num(jx.Num(l.Subtotal().String()))
	e.ObjEnd()
}
