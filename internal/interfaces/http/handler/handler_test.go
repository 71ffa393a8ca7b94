package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogapp "storefront/internal/application/catalog"
	orderapp "storefront/internal/application/order"
	"storefront/internal/domain/catalog"
	domain "storefront/internal/domain/order"
	"storefront/internal/infrastructure/persistence/memory"
	"storefront/internal/interfaces/http/handler"
	"storefront/internal/interfaces/http/middleware"
	"storefront/internal/interfaces/http/router"
	"storefront/pkg/logger"
)

func setupRouter(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	log := logger.NewNop()

	products := handler.NewProductHandler(catalogapp.NewService(store, log))
	orders := handler.NewOrderHandler(orderapp.NewService(store, domain.DefaultPricing(), nil, log))

	engine := gin.New()
	router.RegisterRoutes(engine, products, orders)
	return engine, store
}

func seedProduct(t *testing.T, store *memory.Store, name, price string, stock int) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Category: "audio",
	}
	require.NoError(t, store.Products().Save(context.Background(), p))
	return p
}

func perform(t *testing.T, engine *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func asCustomer(id string) map[string]string {
	return map[string]string{middleware.HeaderCustomerID: id}
}

func asAdmin() map[string]string {
	return map[string]string{
		middleware.HeaderCustomerID: "admin-1",
		middleware.HeaderUserRole:   middleware.RoleAdmin,
	}
}

func TestListProducts_Endpoint(t *testing.T) {
	engine, store := setupRouter(t)
	seedProduct(t, store, "Headphones", "149.99", 25)
	seedProduct(t, store, "Speaker", "89.99", 28)

	rec := perform(t, engine, http.MethodGet, "/api/products?limit=1&page=2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	assert.EqualValues(t, 2, data["total"])
	assert.EqualValues(t, 2, data["pages"])
	items := data["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Speaker", items[0].(map[string]any)["name"])

	// an explicit limit=0 clamps to 1, it does not fall back to the default
	rec = perform(t, engine, http.MethodGet, "/api/products?limit=0", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeBody(t, rec)["data"].(map[string]any)
	assert.EqualValues(t, 1, data["limit"])
	assert.Len(t, data["items"].([]any), 1)
}

func TestShowProduct_Endpoint(t *testing.T) {
	engine, store := setupRouter(t)
	p := seedProduct(t, store, "Headphones", "149.99", 25)

	rec := perform(t, engine, http.MethodGet, "/api/products/1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, p.Name, data["name"])
	assert.EqualValues(t, 149.99, data["price"])

	rec = perform(t, engine, http.MethodGet, "/api/products/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = perform(t, engine, http.MethodGet, "/api/products/abc", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategories_Endpoint(t *testing.T) {
	engine, store := setupRouter(t)
	seedProduct(t, store, "Headphones", "149.99", 25)

	rec := perform(t, engine, http.MethodGet, "/api/products/categories", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, []any{"audio"}, body["data"])
}

func TestCreateProduct_RequiresAdmin(t *testing.T) {
	engine, _ := setupRouter(t)

	payload := gin.H{"name": "Keyboard", "price": 129.99, "stock": 32}

	rec := perform(t, engine, http.MethodPost, "/api/products", payload, asCustomer("customer-1"))
	require.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "ADMIN")

	rec = perform(t, engine, http.MethodPost, "/api/products", payload, asAdmin())
	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Keyboard", data["name"])
	assert.EqualValues(t, 1, data["id"])
}

func TestCreateProduct_ValidationErrors(t *testing.T) {
	engine, _ := setupRouter(t)

	rec := perform(t, engine, http.MethodPost, "/api/products",
		gin.H{"name": "", "price": 0, "stock": -2}, asAdmin())
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "price")
	assert.Contains(t, errs, "stock")
}

func TestUpdateProduct_Endpoint(t *testing.T) {
	engine, store := setupRouter(t)
	seedProduct(t, store, "Keyboard", "129.99", 32)

	rec := perform(t, engine, http.MethodPatch, "/api/products/1",
		gin.H{"stock": 30}, asAdmin())
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.EqualValues(t, 30, data["stock"])
	assert.Equal(t, "Keyboard", data["name"])
}

func TestCreateOrder_RequiresCustomerHeader(t *testing.T) {
	engine, store := setupRouter(t)
	seedProduct(t, store, "Headphones", "149.99", 25)

	rec := perform(t, engine, http.MethodPost, "/api/orders",
		gin.H{"items": []gin.H{{"productId": 1, "quantity": 1}}}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], middleware.HeaderCustomerID)
}

func TestCreateOrder_Endpoint(t *testing.T) {
	engine, store := setupRouter(t)
	seedProduct(t, store, "Headphones", "100.00", 25)

	rec := perform(t, engine, http.MethodPost, "/api/orders", gin.H{
		"items": []gin.H{{"productId": 1, "quantity": 2}},
		"shippingAddress": gin.H{
			"fullName": "Jane Doe",
			"city":     "Valencia",
		},
	}, asCustomer("customer-1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "order created successfully", body["message"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "pending", data["status"])
	assert.EqualValues(t, 200, data["subtotal"])
	assert.EqualValues(t, 0, data["shipping"])
	assert.EqualValues(t, 32, data["tax"])
	assert.EqualValues(t, 232, data["total"])
	assert.Equal(t, "Jane Doe", data["shippingAddress"].(map[string]any)["fullName"])

	items := data["items"].([]any)
	require.Len(t, items, 1)
	product := items[0].(map[string]any)["product"].(map[string]any)
	assert.Equal(t, "Headphones", product["name"])
}

func TestCreateOrder_UnprocessableItems(t *testing.T) {
	engine, store := setupRouter(t)
	seedProduct(t, store, "Headphones", "100.00", 2)

	rec := perform(t, engine, http.MethodPost, "/api/orders", gin.H{
		"items": []gin.H{
			{"productId": 999, "quantity": 1},
			{"productId": 1, "quantity": 5},
		},
	}, asCustomer("customer-1"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	errs := decodeBody(t, rec)["errors"].(map[string]any)
	assert.Contains(t, errs, "items[0].productId")
	assert.Equal(t, "insufficient stock for 'Headphones', available: 2", errs["items[1].quantity"])
}

func TestCreateOrder_InvalidJSON(t *testing.T) {
	engine, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader([]byte("{not-json")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderCustomerID, "customer-1")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShowOrder_Ownership(t *testing.T) {
	engine, store := setupRouter(t)
	seedProduct(t, store, "Headphones", "100.00", 25)

	rec := perform(t, engine, http.MethodPost, "/api/orders",
		gin.H{"items": []gin.H{{"productId": 1, "quantity": 1}}}, asCustomer("customer-b"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = perform(t, engine, http.MethodGet, "/api/orders/1", nil, asCustomer("customer-a"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = perform(t, engine, http.MethodGet, "/api/orders/1", nil, asCustomer("customer-b"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = perform(t, engine, http.MethodGet, "/api/orders/1", nil, asAdmin())
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = perform(t, engine, http.MethodGet, "/api/orders/42", nil, asCustomer("customer-b"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckout_Endpoint(t *testing.T) {
	engine, store := setupRouter(t)
	seedProduct(t, store, "Headphones", "50.00", 10)

	rec := perform(t, engine, http.MethodPost, "/api/orders",
		gin.H{"items": []gin.H{{"productId": 1, "quantity": 3}}}, asCustomer("customer-1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = perform(t, engine, http.MethodPost, "/api/orders/1/checkout", nil, asCustomer("customer-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "checkout completed successfully, payment has been processed", body["message"])
	assert.Equal(t, "completed", body["data"].(map[string]any)["status"])

	stock := perform(t, engine, http.MethodGet, "/api/products/1", nil, nil)
	assert.EqualValues(t, 7, decodeBody(t, stock)["data"].(map[string]any)["stock"])

	// a second checkout hits the status guard
	rec = perform(t, engine, http.MethodPost, "/api/orders/1/checkout", nil, asCustomer("customer-1"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decodeBody(t, rec)["errors"].(map[string]any)
	assert.Contains(t, errs["status"], "completed")
}

func TestListOrders_Endpoint(t *testing.T) {
	engine, store := setupRouter(t)
	seedProduct(t, store, "Headphones", "50.00", 100)

	for _, customer := range []string{"customer-a", "customer-b", "customer-a"} {
		rec := perform(t, engine, http.MethodPost, "/api/orders",
			gin.H{"items": []gin.H{{"productId": 1, "quantity": 1}}}, asCustomer(customer))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := perform(t, engine, http.MethodGet, "/api/orders", nil, asCustomer("customer-a"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["data"].([]any), 2)

	rec = perform(t, engine, http.MethodGet, "/api/orders", nil, asAdmin())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["data"].([]any), 3)
}
