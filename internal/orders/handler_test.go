package orders

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazaarlabs/orderhub/internal/domain"
)

func newTestMux(store *fakeStore) *http.ServeMux {
	svc := newTestService(store, &recordingPublisher{})
	handler := NewHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", handler.HandleCreate)
	mux.HandleFunc("GET /orders/{id}", handler.HandleGet)
	mux.HandleFunc("GET /orders", handler.HandleList)
	mux.HandleFunc("PATCH /orders/{id}/status", handler.HandleUpdateStatus)
	mux.HandleFunc("POST /orders/{id}/pickup", handler.HandleRequestPickup)
	mux.HandleFunc("PATCH /orders/{id}/courier", handler.HandleSetCourier)
	mux.HandleFunc("POST /shipping/quote", handler.HandleQuote)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleCreate(t *testing.T) {
	mux := newTestMux(newFakeStore())

	body := `{
		"name": "Asha Rao", "email": "asha@example.com", "phone": "9999900000",
		"address": "12 MG Road", "state": "Karnataka", "pincode": "560001",
		"payment_method": "COD",
		"items": [{"product_id": "prod-1", "store_id": "store-1", "quantity": 3, "unit_price": 100}]
	}`
	rec := doJSON(t, mux, http.MethodPost, "/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order domain.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
	assert.NotEmpty(t, order.ID)
	assert.EqualValues(t, 375, order.Total) // 300 + 50 flat + 25 COD
	assert.Len(t, order.Items, 1)
}

func TestHandleCreateMissingFields(t *testing.T) {
	mux := newTestMux(newFakeStore())

	rec := doJSON(t, mux, http.MethodPost, "/orders", `{"name": "Asha Rao"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error  string   `json:"error"`
		Fields []string `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "missing required fields", resp.Error)
	assert.Contains(t, resp.Fields, "pincode")
	assert.Contains(t, resp.Fields, "items")
	assert.NotContains(t, resp.Fields, "name")
}

func TestHandleCreateMalformedBody(t *testing.T) {
	mux := newTestMux(newFakeStore())
	rec := doJSON(t, mux, http.MethodPost, "/orders", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGet(t *testing.T) {
	store := newFakeStore()
	seedOrder(store, domain.OrderStatusConfirmed)
	mux := newTestMux(store)

	rec := doJSON(t, mux, http.MethodGet, "/orders/order-a", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/orders/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleUpdateStatus(t *testing.T) {
	store := newFakeStore()
	seedOrder(store, domain.OrderStatusPending)
	mux := newTestMux(store)

	rec := doJSON(t, mux, http.MethodPatch, "/orders/order-a/status", `{"status": "confirmed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success bool         `json:"success"`
		Order   domain.Order `json:"order"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, domain.OrderStatusConfirmed, resp.Order.Status)

	// delivered is not a legal successor of confirmed
	rec = doJSON(t, mux, http.MethodPatch, "/orders/order-a/status", `{"status": "delivered"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, mux, http.MethodPatch, "/orders/missing/status", `{"status": "confirmed"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, mux, http.MethodPatch, "/orders/order-a/status", `{"status": "teleported"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRequestPickup(t *testing.T) {
	store := newFakeStore()
	seedOrder(store, domain.OrderStatusShipped)
	mux := newTestMux(store)

	rec := doJSON(t, mux, http.MethodPost, "/orders/order-a/pickup", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stored, _ := store.GetByID(t.Context(), "order-a")
	assert.Equal(t, domain.OrderStatusShipped, stored.Status)

	rec = doJSON(t, mux, http.MethodPost, "/orders/missing/pickup", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSetCourier(t *testing.T) {
	store := newFakeStore()
	seedOrder(store, domain.OrderStatusPickedUp)
	mux := newTestMux(store)

	rec := doJSON(t, mux, http.MethodPatch, "/orders/order-a/courier",
		`{"courier": "bluedart", "tracking_id": "BD-123", "tracking_url": "https://track.example.com/BD-123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, mux, http.MethodPatch, "/orders/order-a/courier", `{"courier": "bluedart"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQuote(t *testing.T) {
	mux := newTestMux(newFakeStore())

	body := `{
		"payment_method": "PREPAID",
		"items": [{"product_id": "prod-1", "store_id": "store-1", "quantity": 2, "unit_price": 300}]
	}`
	rec := doJSON(t, mux, http.MethodPost, "/shipping/quote", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int64
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.EqualValues(t, 0, resp["fee"]) // subtotal 600 clears the 500 threshold
}

func TestHandleQuoteRejectsBadItems(t *testing.T) {
	mux := newTestMux(newFakeStore())

	body := `{
		"payment_method": "PREPAID",
		"items": [{"product_id": "prod-1", "store_id": "store-1", "quantity": 0, "unit_price": -300}]
	}`
	rec := doJSON(t, mux, http.MethodPost, "/shipping/quote", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "items")
}
