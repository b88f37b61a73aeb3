package httpapi

import (
	"net/http"
	"time"
)

// NewRouter wires the marketplace routes behind the middleware chain.
// All /v1 routes require an authenticated actor except the read-only
// zip lookup; health stays unauthenticated for probes.
func NewRouter(h *Handlers, jwtSecret string, development bool) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("POST /v1/listings", h.HandleCreateListing)
	mux.HandleFunc("GET /v1/listings", h.HandleListListings)
	mux.HandleFunc("GET /v1/listings/{listing_id}", h.HandleGetListing)
	mux.HandleFunc("POST /v1/listings/{listing_id}/cancel", h.HandleCancelListing)
	mux.HandleFunc("POST /v1/listings/{listing_id}/bids", h.HandleSubmitBid)
	mux.HandleFunc("GET /v1/listings/{listing_id}/bids", h.HandleListBids)
	mux.HandleFunc("GET /v1/listings/{listing_id}/bids/ranked", h.HandleRankBids)
	mux.HandleFunc("POST /v1/listings/{listing_id}/accept", h.HandleAcceptBid)
	mux.HandleFunc("POST /v1/listings/{listing_id}/complete", h.HandleCompleteJob)
	mux.HandleFunc("GET /v1/zip/{postal_code}", h.HandleResolveZip)
	mux.HandleFunc("PUT /v1/config/weights", h.HandleUpdateWeights)

	var handler http.Handler = mux
	handler = Auth(jwtSecret, development)(handler)
	handler = Logging(handler)
	handler = RequestID(handler)
	handler = Recovery(handler)
	return handler
}
