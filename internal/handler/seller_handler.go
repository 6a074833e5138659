package handler

import (
	"net/http"

	"gig-market/internal/model"
	"gig-market/internal/service"

	"github.com/rs/zerolog"
)

// SellerHandler handles seller progression HTTP endpoints.
type SellerHandler struct {
	service service.ProgressionService
	logger  zerolog.Logger
}

// NewSellerHandler creates a new seller handler.
func NewSellerHandler(service service.ProgressionService, logger zerolog.Logger) *SellerHandler {
	return &SellerHandler{
		service: service,
		logger:  logger.With().Str("handler", "seller").Logger(),
	}
}

// Progress handles GET /api/sellers/{id}/progress requests.
func (h *SellerHandler) Progress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMessage(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	sellerID, tail, ok := pathID(r.URL.Path, "/api/sellers/")
	if !ok || tail != "/progress" {
		writeMessage(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid seller ID", h.logger)
		return
	}

	progress, err := h.service.GetProgress(r.Context(), sellerID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}
