package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Pavelevich/bagstats-backend/internal/application/services"
	"github.com/Pavelevich/bagstats-backend/internal/domain/entities"
)

// WalletHandler handles HTTP requests for wallet earnings
type WalletHandler struct {
	stats  *services.StatsService
	subs   *services.SubscriptionService
	logger *zap.Logger
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(stats *services.StatsService, subs *services.SubscriptionService, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{
		stats:  stats,
		subs:   subs,
		logger: logger,
	}
}

// RegisterRoutes registers the wallet routes
func (h *WalletHandler) RegisterRoutes(r chi.Router) {
	r.Get("/wallets/{address}/stats", h.GetStats)
	r.Get("/wallets/{address}/history", h.GetHistory)
	r.Get("/wallets/{address}/notifications", h.GetNotifications)
}

// GetStats handles GET /api/v1/wallets/{address}/stats
func (h *WalletHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if !entities.IsValidWallet(address) {
		h.respondError(w, http.StatusBadRequest, "Invalid wallet address")
		return
	}

	view, err := h.stats.ComputeEarnings(ctx, address)
	if err != nil {
		var upstream *services.UpstreamError
		if errors.As(err, &upstream) {
			h.logger.Error("Upstream failure while computing earnings",
				zap.String("wallet", address),
				zap.String("source", upstream.Source),
				zap.Error(err),
			)
			h.respondError(w, http.StatusBadGateway, "Failed to fetch wallet earnings")
			return
		}
		h.logger.Error("Failed to compute earnings", zap.String("wallet", address), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Failed to compute earnings")
		return
	}

	h.respondJSON(w, http.StatusOK, view)
}

// GetHistory handles GET /api/v1/wallets/{address}/history
func (h *WalletHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	history, err := h.subs.History(ctx, address, limit)
	if err != nil {
		if errors.Is(err, services.ErrInvalidWallet) {
			h.respondError(w, http.StatusBadRequest, "Invalid wallet address")
			return
		}
		h.logger.Error("Failed to get wallet history", zap.String("wallet", address), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Failed to get wallet history")
		return
	}

	h.respondJSON(w, http.StatusOK, history)
}

// GetNotifications handles GET /api/v1/wallets/{address}/notifications
func (h *WalletHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}

	records, err := h.subs.RecentNotifications(ctx, address, limit)
	if err != nil {
		if errors.Is(err, services.ErrInvalidWallet) {
			h.respondError(w, http.StatusBadRequest, "Invalid wallet address")
			return
		}
		h.logger.Error("Failed to get notifications", zap.String("wallet", address), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Failed to get notifications")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"wallet":        address,
		"notifications": records,
	})
}

func (h *WalletHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *WalletHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
