package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/misagal/retail-pos/internal/catalog"
)

// maxBodyBytes bounds request bodies; product images arrive as data URLs and
// can be sizeable.
const maxBodyBytes = 4 << 20

// ListProducts returns the catalog, optionally filtered by ?q= name search.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.terminal.SearchCatalog(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, p := range products {
			encodeProduct(e, p)
		}
		e.ArrEnd()
	})
}

// CreateProduct adds a product to the catalog.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	p, err := h.admin.CreateProduct(r.Context(), fields)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeProduct(e, *p)
	})
}

// UpdateProduct replaces the editable fields of a product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	p, err := h.admin.UpdateProduct(r.Context(), r.PathValue("id"), fields)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeProduct(e, *p)
	})
}

// DeleteProduct removes a product from the catalog.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeFields parses a product edit body. Type mismatches surface as
// InvalidInput rejections, the same taxonomy as the admin service.
func decodeFields(r *http.Request) (catalog.Fields, error) {
	var f catalog.Fields

	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return f, errors.Wrap(err, "read body")
	}

	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		return f, &catalog.InvalidInputError{Field: "body", Reason: "expected a JSON object"}
	}

	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			f.Name, err = d.Str()
		case "detail":
			f.Detail, err = d.Str()
		case "price":
			var v float64
			v, err = d.Float64()
			f.Price = decimal.NewFromFloat(v)
		case "stock":
			f.Stock, err = d.Int()
		case "image":
			f.Image, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		return f, &catalog.InvalidInputError{Field: "body", Reason: err.Error()}
	}

	return f, nil
}
