package stores

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bazaarlabs/orderhub/internal/domain"
)

type Handler struct {
	repo   *ConfigRepository
	source *CachedConfigSource
	logger *slog.Logger
}

func NewHandler(repo *ConfigRepository, source *CachedConfigSource, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		source: source,
		logger: logger,
	}
}

func (h *Handler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	storeID := r.PathValue("storeId")
	if storeID == "" {
		h.writeError(w, http.StatusBadRequest, "missing store id")
		return
	}

	cfg, err := h.source.ShippingConfig(r.Context(), storeID)
	if err != nil {
		h.logger.Error("failed to get shipping config", "error", err, "store_id", storeID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if cfg == nil {
		h.writeError(w, http.StatusNotFound, "shipping config not found")
		return
	}

	h.writeJSON(w, http.StatusOK, cfg)
}

func (h *Handler) HandlePutConfig(w http.ResponseWriter, r *http.Request) {
	storeID := r.PathValue("storeId")
	if storeID == "" {
		h.writeError(w, http.StatusBadRequest, "missing store id")
		return
	}

	var cfg domain.ShippingConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cfg.StoreID = storeID

	if cfg.Type != domain.ShippingFlatRate && cfg.Type != domain.ShippingPerItem {
		h.writeError(w, http.StatusBadRequest, "shipping_type must be FLAT_RATE or PER_ITEM")
		return
	}
	if err := cfg.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.Upsert(r.Context(), &cfg); err != nil {
		h.logger.Error("failed to save shipping config", "error", err, "store_id", storeID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.source.Invalidate(r.Context(), storeID)

	h.logger.Info("shipping config updated", "store_id", storeID, "type", cfg.Type, "enabled", cfg.Enabled)
	h.writeJSON(w, http.StatusOK, &cfg)
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
