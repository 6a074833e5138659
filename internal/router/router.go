package router

import (
	"net/http"
	"strings"

	"gig-market/internal/handler"
	"gig-market/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	completionHandler *handler.CompletionHandler,
	reviewHandler *handler.ReviewHandler,
	sellerHandler *handler.SellerHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Completion request routes
	mux.HandleFunc("/api/orders/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/completion-request") {
			completionHandler.OpenRequest(w, r)
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
	})

	mux.HandleFunc("/api/completion-requests/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/resolve") {
			completionHandler.Resolve(w, r)
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
	})

	// Review routes
	reviewRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && (r.URL.Path == "/api/reviews" || r.URL.Path == "/api/reviews/") {
			reviewHandler.Create(w, r)
			return
		}

		if strings.HasSuffix(r.URL.Path, "/helpful") {
			reviewHandler.Helpful(w, r)
			return
		}

		http.Error(w, "not found", http.StatusNotFound)
	}
	mux.HandleFunc("/api/reviews", reviewRouteHandler)
	mux.HandleFunc("/api/reviews/", reviewRouteHandler)

	// Rating aggregate routes
	mux.HandleFunc("/api/listings/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/ratings") {
			reviewHandler.Ratings(w, r)
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
	})

	// Seller progression routes
	mux.HandleFunc("/api/sellers/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/progress") {
			sellerHandler.Progress(w, r)
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
	})

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
