package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Pavelevich/bagstats-backend/internal/application/services"
	"github.com/Pavelevich/bagstats-backend/internal/infrastructure/push"
)

// NotificationHandler exposes a development-only endpoint to exercise the
// push transport directly
type NotificationHandler struct {
	dispatcher services.Dispatcher
	enabled    bool
	logger     *zap.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(dispatcher services.Dispatcher, enabled bool, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		dispatcher: dispatcher,
		enabled:    enabled,
		logger:     logger,
	}
}

// RegisterRoutes registers the notification routes
func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/notifications/test", h.SendTest)
}

type testNotificationRequest struct {
	DeviceToken string `json:"deviceToken"`
	Title       string `json:"title"`
	Body        string `json:"body"`
}

// SendTest handles POST /api/v1/notifications/test
func (h *NotificationHandler) SendTest(w http.ResponseWriter, r *http.Request) {
	if !h.enabled {
		h.respondError(w, http.StatusNotFound, "Not found")
		return
	}

	var req testNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DeviceToken == "" {
		h.respondError(w, http.StatusBadRequest, "deviceToken is required")
		return
	}
	if req.Title == "" {
		req.Title = "Test Notification"
	}
	if req.Body == "" {
		req.Body = "BagStats push transport is working"
	}

	result := h.dispatcher.Send(r.Context(), req.DeviceToken, push.Notification{
		Title: req.Title,
		Body:  req.Body,
		Data:  map[string]interface{}{"type": "test"},
	})

	if !result.Success {
		h.logger.Warn("Test notification failed", zap.String("error", result.Error))
		h.respondJSON(w, http.StatusBadGateway, map[string]interface{}{
			"success": false,
			"error":   result.Error,
		})
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Test notification sent",
	})
}

func (h *NotificationHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *NotificationHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
