package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/misagal/retail-pos/internal/catalog"
	"github.com/misagal/retail-pos/internal/checkout"
	"github.com/misagal/retail-pos/internal/kvstore"
	"github.com/misagal/retail-pos/internal/pos"
)

func newTestHandler(t *testing.T, products ...catalog.Product) http.Handler {
	t.Helper()
	store := catalog.NewStore(kvstore.NewMemory(), "catalog", nil)
	require.NoError(t, store.Save(context.Background(), products))

	terminal := pos.NewTerminal(store, checkout.NewReconciler(store))
	return NewHandler(terminal, catalog.NewAdmin(store)).Routes()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Body.String(), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func testProducts() []catalog.Product {
	return []catalog.Product{
		{ID: "p1", Name: "Pen", Detail: "ballpoint", Price: decimal.RequireFromString("12.5"), Stock: 3, Image: "images/pen.jpg"},
		{ID: "p2", Name: "Notebook", Price: decimal.NewFromInt(45), Stock: 2},
	}
}

func TestListProducts(t *testing.T) {
	h := newTestHandler(t, testProducts()...)

	rec, _ := doJSON(t, h, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "p1", list[0]["id"])
	assert.Equal(t, "Pen", list[0]["name"])
	assert.Equal(t, 12.5, list[0]["price"])
	assert.Equal(t, float64(3), list[0]["stock"])
}

func TestListProducts_Search(t *testing.T) {
	h := newTestHandler(t, testProducts()...)

	rec, _ := doJSON(t, h, http.MethodGet, "/api/products?q=note", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "p2", list[0]["id"])
}

func TestCreateProduct(t *testing.T) {
	h := newTestHandler(t)

	rec, body := doJSON(t, h, http.MethodPost, "/api/products",
		`{"name":"Stapler","detail":"desktop","price":89.5,"stock":4}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "Stapler", body["name"])
	assert.Equal(t, 89.5, body["price"])
}

func TestCreateProduct_Invalid(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"price":10,"stock":4}`},
		{"negative price", `{"name":"X","price":-1}`},
		{"negative stock", `{"name":"X","stock":-1}`},
		{"not an object", `[1,2,3]`},
		{"wrong type", `{"name":"X","stock":"lots"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := doJSON(t, h, http.MethodPost, "/api/products", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, float64(http.StatusBadRequest), body["code"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	h := newTestHandler(t, testProducts()...)

	rec, body := doJSON(t, h, http.MethodPut, "/api/products/p1",
		`{"name":"Gel Pen","price":15,"stock":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", body["id"])
	assert.Equal(t, "Gel Pen", body["name"])
	assert.Equal(t, "images/pen.jpg", body["image"], "omitted image keeps the stored one")

	rec, _ = doJSON(t, h, http.MethodPut, "/api/products/missing", `{"name":"X"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProduct(t *testing.T) {
	h := newTestHandler(t, testProducts()...)

	rec, _ := doJSON(t, h, http.MethodDelete, "/api/products/p1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = doJSON(t, h, http.MethodDelete, "/api/products/p1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartFlow(t *testing.T) {
	h := newTestHandler(t, testProducts()...)

	rec, body := doJSON(t, h, http.MethodPost, "/api/cart/items", `{"productId":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	lines := body["lines"].([]any)
	require.Len(t, lines, 1)
	assert.Equal(t, 12.5, body["total"])

	rec, body = doJSON(t, h, http.MethodPost, "/api/cart/items/p1/increment", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(25), body["total"])

	rec, body = doJSON(t, h, http.MethodPost, "/api/cart/items/p1/decrement", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12.5, body["total"])

	rec, body = doJSON(t, h, http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	line := body["lines"].([]any)[0].(map[string]any)
	assert.Equal(t, "p1", line["productId"])
	assert.Equal(t, float64(1), line["quantity"])
	assert.Equal(t, 12.5, line["subtotal"])

	rec, _ = doJSON(t, h, http.MethodDelete, "/api/cart", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, body = doJSON(t, h, http.MethodGet, "/api/cart", "")
	assert.Empty(t, body["lines"])
	assert.Equal(t, float64(0), body["total"])
}

func TestAddCartItem_Errors(t *testing.T) {
	h := newTestHandler(t, testProducts()...)

	rec, _ := doJSON(t, h, http.MethodPost, "/api/cart/items", `{"productId":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPost, "/api/cart/items", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPost, "/api/cart/items/p1/increment", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "no line yet")
}

func TestAddCartItem_StockConflict(t *testing.T) {
	h := newTestHandler(t, catalog.Product{ID: "p1", Name: "Pen", Price: decimal.NewFromInt(10), Stock: 1})

	rec, _ := doJSON(t, h, http.MethodPost, "/api/cart/items", `{"productId":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, h, http.MethodPost, "/api/cart/items", `{"productId":"p1"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "p1", body["productId"])
	assert.Equal(t, float64(2), body["requested"])
	assert.Equal(t, float64(1), body["available"])
}

func TestCheckout(t *testing.T) {
	h := newTestHandler(t, testProducts()...)

	_, _ = doJSON(t, h, http.MethodPost, "/api/cart/items", `{"productId":"p1"}`)
	_, _ = doJSON(t, h, http.MethodPost, "/api/cart/items", `{"productId":"p2"}`)

	rec, body := doJSON(t, h, http.MethodPost, "/api/checkout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, 57.5, body["total"])
	assert.NotEmpty(t, body["createdAt"])
	assert.Len(t, body["lines"].([]any), 2)

	// The cart is cleared and the stock is deducted.
	_, cartBody := doJSON(t, h, http.MethodGet, "/api/cart", "")
	assert.Empty(t, cartBody["lines"])

	listRec, _ := doJSON(t, h, http.MethodGet, "/api/products", "")
	var list []map[string]any
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &list))
	assert.Equal(t, float64(2), list[0]["stock"])
	assert.Equal(t, float64(1), list[1]["stock"])
}

func TestCheckout_EmptyCart(t *testing.T) {
	h := newTestHandler(t, testProducts()...)

	rec, _ := doJSON(t, h, http.MethodPost, "/api/checkout", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckout_StaleCart(t *testing.T) {
	store := catalog.NewStore(kvstore.NewMemory(), "catalog", nil)
	pen := catalog.Product{ID: "p1", Name: "Pen", Price: decimal.NewFromInt(10), Stock: 2}
	require.NoError(t, store.Save(context.Background(), []catalog.Product{pen}))

	terminal := pos.NewTerminal(store, checkout.NewReconciler(store))
	h := NewHandler(terminal, catalog.NewAdmin(store)).Routes()

	rec, _ := doJSON(t, h, http.MethodPost, "/api/cart/items", `{"productId":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = doJSON(t, h, http.MethodPost, "/api/cart/items", `{"productId":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Stock drains between building the cart and finalizing.
	pen.Stock = 1
	require.NoError(t, store.Save(context.Background(), []catalog.Product{pen}))

	checkoutRec, body := doJSON(t, h, http.MethodPost, "/api/checkout", "")
	require.Equal(t, http.StatusConflict, checkoutRec.Code)
	assert.Equal(t, float64(2), body["requested"])
	assert.Equal(t, float64(1), body["available"])

	// The cart survives for correction.
	_, cartBody := doJSON(t, h, http.MethodGet, "/api/cart", "")
	assert.Len(t, cartBody["lines"].([]any), 1)
}

func TestCheckout_VanishedProduct(t *testing.T) {
	store := catalog.NewStore(kvstore.NewMemory(), "catalog", nil)
	pen := catalog.Product{ID: "p1", Name: "Pen", Price: decimal.NewFromInt(10), Stock: 2}
	require.NoError(t, store.Save(context.Background(), []catalog.Product{pen}))

	terminal := pos.NewTerminal(store, checkout.NewReconciler(store))
	h := NewHandler(terminal, catalog.NewAdmin(store)).Routes()

	rec, _ := doJSON(t, h, http.MethodPost, "/api/cart/items", `{"productId":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, store.Save(context.Background(), []catalog.Product{}))

	checkoutRec, body := doJSON(t, h, http.MethodPost, "/api/checkout", "")
	require.Equal(t, http.StatusUnprocessableEntity, checkoutRec.Code)
	assert.Equal(t, "p1", body["productId"])
}
