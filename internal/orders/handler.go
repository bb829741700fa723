package orders

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bazaarlabs/orderhub/internal/domain"
)

type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.svc.Create(r.Context(), req)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "missing required fields",
				"fields": verr.Fields,
			})
			return
		}
		h.logger.Error("failed to create order", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("order created", "order_id", order.ID, "total", order.Total, "guest", order.Guest())
	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeOrderError(w, err, id)
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	filter := ListFilter{
		StoreID: r.URL.Query().Get("store_id"),
		Limit:   limit,
		Offset:  offset,
	}

	orders, err := h.svc.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("orders listed", "count", len(orders))
	h.writeJSON(w, http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.writeOrderError(w, err, id)
		return
	}

	h.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": order})
}

func (h *Handler) HandleRequestPickup(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.svc.RequestPickup(r.Context(), id)
	if err != nil {
		h.writeOrderError(w, err, id)
		return
	}

	h.logger.Info("pickup requested", "order_id", order.ID)
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": order})
}

type setCourierRequest struct {
	Courier     string `json:"courier"`
	TrackingID  string `json:"tracking_id"`
	TrackingURL string `json:"tracking_url"`
}

func (h *Handler) HandleSetCourier(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	var req setCourierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Courier == "" || req.TrackingID == "" {
		h.writeError(w, http.StatusBadRequest, "courier and tracking_id are required")
		return
	}

	order, err := h.svc.SetCourier(r.Context(), id, domain.Courier{
		Name:        req.Courier,
		TrackingID:  req.TrackingID,
		TrackingURL: req.TrackingURL,
	})
	if err != nil {
		h.writeOrderError(w, err, id)
		return
	}

	h.logger.Info("courier assigned", "order_id", order.ID, "courier", req.Courier, "tracking_id", req.TrackingID)
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": order})
}

type quoteRequest struct {
	Items         []domain.OrderItem   `json:"items"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
}

func (h *Handler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fee, err := h.svc.Quote(r.Context(), req.Items, req.PaymentMethod)
	if err != nil {
		h.writeOrderError(w, err, "")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]int64{"fee": fee})
}

// writeOrderError maps domain errors onto the HTTP taxonomy: validation
// 400, pickup guard 400, not found 404, illegal transition 409, everything
// else 500.
func (h *Handler) writeOrderError(w http.ResponseWriter, err error, orderID string) {
	var verr *domain.ValidationError
	var terr *domain.InvalidTransitionError
	var perr *domain.PickupUnavailableError

	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		h.writeError(w, http.StatusNotFound, "order not found")
	case errors.As(err, &verr):
		h.writeError(w, http.StatusBadRequest, verr.Error())
	case errors.As(err, &perr):
		h.writeError(w, http.StatusBadRequest, perr.Error())
	case errors.As(err, &terr):
		h.writeError(w, http.StatusConflict, terr.Error())
	default:
		h.logger.Error("order operation failed", "error", err, "order_id", orderID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
