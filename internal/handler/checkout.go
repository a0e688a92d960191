package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"
)

// Checkout finalizes the sale: the cart is re-validated against live stock
// and committed atomically, or rejected whole with a described reason.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.terminal.FinalizeSale(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(receipt.ID)
		e.FieldStart("total")
		e.Num(jx.Num(receipt.Total.String()))
		e.FieldStart("createdAt")
		e.Str(receipt.CreatedAt.UTC().Format(time.RFC3339))
		e.FieldStart("lines")
		e.ArrStart()
		for _, l := range receipt.Lines {
			encodeLine(e, l)
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}
