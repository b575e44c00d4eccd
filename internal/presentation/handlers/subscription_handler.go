package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Pavelevich/bagstats-backend/internal/application/services"
	"github.com/Pavelevich/bagstats-backend/internal/domain/repositories"
)

// SubscriptionHandler handles HTTP requests for wallet subscriptions
type SubscriptionHandler struct {
	service *services.SubscriptionService
	logger  *zap.Logger
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(service *services.SubscriptionService, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the subscription routes
func (h *SubscriptionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/subscriptions", h.Subscribe)
	r.Get("/subscriptions", h.ListByDevice)
	r.Delete("/subscriptions/{wallet}", h.Unsubscribe)
}

type subscribeRequest struct {
	DeviceToken string `json:"deviceToken"`
	Wallet      string `json:"wallet"`
	Platform    string `json:"platform"`
}

// Subscribe handles POST /api/v1/subscriptions
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DeviceToken == "" {
		h.respondError(w, http.StatusBadRequest, "deviceToken is required")
		return
	}

	sub, err := h.service.Subscribe(ctx, req.DeviceToken, req.Wallet, req.Platform)
	if err != nil {
		if errors.Is(err, services.ErrInvalidWallet) {
			h.respondError(w, http.StatusBadRequest, "Invalid wallet address")
			return
		}
		h.logger.Error("Failed to subscribe", zap.String("wallet", req.Wallet), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Failed to subscribe")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":      true,
		"message":      "Subscribed to wallet notifications",
		"subscription": sub,
	})
}

// ListByDevice handles GET /api/v1/subscriptions
func (h *SubscriptionHandler) ListByDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deviceToken := r.Header.Get("X-Device-Token")
	if deviceToken == "" {
		h.respondError(w, http.StatusBadRequest, "X-Device-Token header is required")
		return
	}

	subs, err := h.service.ListByDevice(ctx, deviceToken)
	if err != nil {
		h.logger.Error("Failed to list subscriptions", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Failed to list subscriptions")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"subscriptions": subs,
		"count":         len(subs),
	})
}

// Unsubscribe handles DELETE /api/v1/subscriptions/{wallet}
func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wallet := chi.URLParam(r, "wallet")

	deviceToken := r.Header.Get("X-Device-Token")
	if deviceToken == "" {
		h.respondError(w, http.StatusBadRequest, "X-Device-Token header is required")
		return
	}

	if err := h.service.Unsubscribe(ctx, deviceToken, wallet); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Subscription not found")
			return
		}
		h.logger.Error("Failed to unsubscribe", zap.String("wallet", wallet), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Failed to unsubscribe")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Unsubscribed from wallet notifications",
	})
}

func (h *SubscriptionHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *SubscriptionHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
