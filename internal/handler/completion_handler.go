package handler

import (
	"encoding/json"
	"net/http"

	"gig-market/internal/model"
	"gig-market/internal/service"

	"github.com/rs/zerolog"
)

// CompletionHandler handles completion-request HTTP endpoints.
type CompletionHandler struct {
	service service.CompletionService
	logger  zerolog.Logger
}

// NewCompletionHandler creates a new completion handler.
func NewCompletionHandler(service service.CompletionService, logger zerolog.Logger) *CompletionHandler {
	return &CompletionHandler{
		service: service,
		logger:  logger.With().Str("handler", "completion").Logger(),
	}
}

// OpenRequest handles POST /api/orders/{id}/completion-request requests.
func (h *CompletionHandler) OpenRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMessage(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	orderID, tail, ok := pathID(r.URL.Path, "/api/orders/")
	if !ok || tail != "/completion-request" {
		writeMessage(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid order ID", h.logger)
		return
	}

	sellerID, err := actorID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid or missing X-User-ID header", h.logger)
		return
	}

	result, err := h.service.OpenRequest(r.Context(), orderID, sellerID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// resolveRequestBody is the payload of a resolve call.
type resolveRequestBody struct {
	Decision string `json:"decision"`
}

// Resolve handles POST /api/completion-requests/{id}/resolve requests.
func (h *CompletionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMessage(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	requestID, tail, ok := pathID(r.URL.Path, "/api/completion-requests/")
	if !ok || tail != "/resolve" {
		writeMessage(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid request ID", h.logger)
		return
	}

	actor, err := actorID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid or missing X-User-ID header", h.logger)
		return
	}

	var body resolveRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	decision, err := model.ParseDecision(body.Decision)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	result, err := h.service.ResolveRequest(r.Context(), requestID, actor, decision)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
