package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleOrders(t *testing.T) {
	t.Run("proxies GET /orders/{id}", func(t *testing.T) {
		ordersServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/orders/order-a" {
				t.Errorf("expected /orders/order-a, got %s", r.URL.Path)
			}
			if r.Header.Get("Authorization") != "Bearer staff-token" {
				t.Errorf("expected auth header to be forwarded, got %q", r.Header.Get("Authorization"))
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id":"order-a"}`))
		}))
		defer ordersServer.Close()

		handler := NewHandler(NewServiceProxy(ordersServer.URL, ordersServer.Client()), discardLogger())

		req := httptest.NewRequest(http.MethodGet, "/orders/order-a", nil)
		req.Header.Set("Authorization", "Bearer staff-token")
		rec := httptest.NewRecorder()

		handler.HandleOrders(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if rec.Body.String() != `{"id":"order-a"}` {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("forwards the query string", func(t *testing.T) {
		ordersServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/orders" {
				t.Errorf("expected /orders, got %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("store_id"); got != "store-1" {
				t.Errorf("expected store_id=store-1, got %q", got)
			}
			if got := r.URL.Query().Get("limit"); got != "10" {
				t.Errorf("expected limit=10, got %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`[]`))
		}))
		defer ordersServer.Close()

		handler := NewHandler(NewServiceProxy(ordersServer.URL, ordersServer.Client()), discardLogger())

		req := httptest.NewRequest(http.MethodGet, "/orders?store_id=store-1&limit=10", nil)
		rec := httptest.NewRecorder()

		handler.HandleOrders(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("proxies POST /orders with body", func(t *testing.T) {
		ordersServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"name":"Asha Rao"}` {
				t.Errorf("unexpected body: %s", body)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"new-id"}`))
		}))
		defer ordersServer.Close()

		handler := NewHandler(NewServiceProxy(ordersServer.URL, ordersServer.Client()), discardLogger())

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"name":"Asha Rao"}`))
		rec := httptest.NewRecorder()

		handler.HandleOrders(rec, req)

		if rec.Code != http.StatusCreated {
			t.Errorf("expected status 201, got %d", rec.Code)
		}
	})

	t.Run("preserves downstream error status", func(t *testing.T) {
		ordersServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"cannot transition order from \"shipped\" to \"cancelled\""}`))
		}))
		defer ordersServer.Close()

		handler := NewHandler(NewServiceProxy(ordersServer.URL, ordersServer.Client()), discardLogger())

		req := httptest.NewRequest(http.MethodPatch, "/orders/order-a/status", strings.NewReader(`{"status":"cancelled"}`))
		rec := httptest.NewRecorder()

		handler.HandleOrders(rec, req)

		if rec.Code != http.StatusConflict {
			t.Errorf("expected status 409, got %d", rec.Code)
		}
	})

	t.Run("returns 502 when orders service unavailable", func(t *testing.T) {
		handler := NewHandler(NewServiceProxy("http://localhost:99999", &http.Client{}), discardLogger())

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		rec := httptest.NewRecorder()

		handler.HandleOrders(rec, req)

		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected status 502, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["error"] != "service unavailable" {
			t.Errorf("expected 'service unavailable', got %s", resp["error"])
		}
	})
}
