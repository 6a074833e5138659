package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"gig-market/internal/model"
	"gig-market/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReviewHandler handles review HTTP endpoints.
type ReviewHandler struct {
	service service.ReviewService
	logger  zerolog.Logger
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(service service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger.With().Str("handler", "review").Logger(),
	}
}

// createReviewBody is the payload of a review submission.
type createReviewBody struct {
	PostID              string  `json:"postId"`
	SellerID            string  `json:"sellerId"`
	Rating              float64 `json:"rating"`
	ServiceAsDescribed  float64 `json:"serviceAsDescribed"`
	SellerCommunication float64 `json:"sellerCommunication"`
	ServiceDelivery     float64 `json:"serviceDelivery"`
	Body                string  `json:"body"`
}

// Create handles POST /api/reviews requests.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMessage(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	reviewerID, err := actorID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid or missing X-User-ID header", h.logger)
		return
	}

	var body createReviewBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	postID, err := uuid.Parse(body.PostID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid post ID", h.logger)
		return
	}
	sellerID, err := uuid.Parse(body.SellerID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid seller ID", h.logger)
		return
	}

	ratings := model.ReviewRatings{
		Rating:              body.Rating,
		ServiceAsDescribed:  body.ServiceAsDescribed,
		SellerCommunication: body.SellerCommunication,
		ServiceDelivery:     body.ServiceDelivery,
	}

	reviewID, err := h.service.RecordReview(r.Context(), reviewerID, postID, sellerID, ratings, body.Body)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"reviewId": reviewID.String()})
}

// Helpful handles POST and DELETE /api/reviews/{id}/helpful requests.
func (h *ReviewHandler) Helpful(w http.ResponseWriter, r *http.Request) {
	reviewID, tail, ok := pathID(r.URL.Path, "/api/reviews/")
	if !ok || tail != "/helpful" {
		writeMessage(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid review ID", h.logger)
		return
	}

	userID, err := actorID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid or missing X-User-ID header", h.logger)
		return
	}

	var count int
	switch r.Method {
	case http.MethodPost:
		count, err = h.service.MarkHelpful(r.Context(), reviewID, userID)
	case http.MethodDelete:
		count, err = h.service.UnmarkHelpful(r.Context(), reviewID, userID)
	default:
		writeMessage(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"foundHelpfulCount": count})
}

// ratingsResponse bundles the aggregate means with the star histogram.
type ratingsResponse struct {
	Summary   *model.RatingSummary `json:"summary"`
	Histogram *model.StarHistogram `json:"histogram"`
}

// Ratings handles GET /api/listings/{postID}/sellers/{sellerID}/ratings requests.
func (h *ReviewHandler) Ratings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMessage(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	postID, tail, ok := pathID(r.URL.Path, "/api/listings/")
	if !ok || !strings.HasPrefix(tail, "/sellers/") {
		writeMessage(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid listing ID", h.logger)
		return
	}

	sellerID, tail, ok := pathID(tail, "/sellers/")
	if !ok || tail != "/ratings" {
		writeMessage(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid seller ID", h.logger)
		return
	}

	summary, err := h.service.AggregateRatings(r.Context(), postID, sellerID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	histogram, err := h.service.Histogram(r.Context(), postID, sellerID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, ratingsResponse{Summary: summary, Histogram: histogram})
}
