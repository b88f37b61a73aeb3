package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pure-justin/power-to-the-people-sub003/internal/model"
	"github.com/pure-justin/power-to-the-people-sub003/internal/scoring"
	"github.com/pure-justin/power-to-the-people-sub003/internal/service"
)

type Handlers struct {
	svc *service.Service
}

func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleCreateListing handles POST /v1/listings
func (h *Handlers) HandleCreateListing(w http.ResponseWriter, r *http.Request) {
	actorID := ActorID(r.Context())
	if actorID == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req model.CreateListingRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	listing, err := h.svc.CreateListing(r.Context(), actorID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

// HandleListListings handles GET /v1/listings
func (h *Handlers) HandleListListings(w http.ResponseWriter, r *http.Request) {
	status := model.ListingStatus(r.URL.Query().Get("status"))
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	listings, err := h.svc.ListListings(r.Context(), status, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"listings": listings, "count": len(listings)})
}

// HandleGetListing handles GET /v1/listings/{listing_id}
func (h *Handlers) HandleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.svc.GetListing(r.Context(), r.PathValue("listing_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// HandleCancelListing handles POST /v1/listings/{listing_id}/cancel
func (h *Handlers) HandleCancelListing(w http.ResponseWriter, r *http.Request) {
	actorID := ActorID(r.Context())
	if actorID == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	listing, err := h.svc.CancelListing(r.Context(), actorID, r.PathValue("listing_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// HandleSubmitBid handles POST /v1/listings/{listing_id}/bids
func (h *Handlers) HandleSubmitBid(w http.ResponseWriter, r *http.Request) {
	actorID := ActorID(r.Context())
	if actorID == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req model.SubmitBidRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	bid, err := h.svc.SubmitBid(r.Context(), actorID, r.PathValue("listing_id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bid)
}

// HandleListBids handles GET /v1/listings/{listing_id}/bids
func (h *Handlers) HandleListBids(w http.ResponseWriter, r *http.Request) {
	bids, err := h.svc.ListBids(r.Context(), r.PathValue("listing_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bids": bids, "count": len(bids)})
}

// HandleRankBids handles GET /v1/listings/{listing_id}/bids/ranked. Read-only;
// usable as a preview before acceptance.
func (h *Handlers) HandleRankBids(w http.ResponseWriter, r *http.Request) {
	ranked, err := h.svc.RankBids(r.Context(), r.PathValue("listing_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ranked_bids": ranked, "count": len(ranked)})
}

// HandleAcceptBid handles POST /v1/listings/{listing_id}/accept
func (h *Handlers) HandleAcceptBid(w http.ResponseWriter, r *http.Request) {
	actorID := ActorID(r.Context())
	if actorID == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req struct {
		BidID string `json:"bid_id"`
	}
	if err := decodeJSON(r, &req); err != nil || req.BidID == "" {
		http.Error(w, "bid_id is required", http.StatusBadRequest)
		return
	}

	listing, err := h.svc.AcceptBid(r.Context(), actorID, r.PathValue("listing_id"), req.BidID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// HandleCompleteJob handles POST /v1/listings/{listing_id}/complete
func (h *Handlers) HandleCompleteJob(w http.ResponseWriter, r *http.Request) {
	actorID := ActorID(r.Context())
	if actorID == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	listing, err := h.svc.CompleteJob(r.Context(), actorID, r.PathValue("listing_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// HandleResolveZip handles GET /v1/zip/{postal_code}
func (h *Handlers) HandleResolveZip(w http.ResponseWriter, r *http.Request) {
	coord, err := h.svc.ResolveZip(r.Context(), r.PathValue("postal_code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, coord)
}

// HandleUpdateWeights handles PUT /v1/config/weights
func (h *Handlers) HandleUpdateWeights(w http.ResponseWriter, r *http.Request) {
	if ActorID(r.Context()) == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var cfg scoring.WeightsConfig
	if err := decodeJSON(r, &cfg); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.svc.UpdateWeights(r.Context(), cfg); err != nil {
		writeError(w, r, err)
		return
	}

	resolved := cfg.Resolve()
	resp := map[string]any{"weights": resolved}
	if err := resolved.Validate(); err != nil {
		resp["warning"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return err
	}
	defer r.Body.Close()
	return json.Unmarshal(body, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrFailedPrecondition):
		status = http.StatusConflict
	case errors.Is(err, model.ErrPermissionDenied):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request_failed",
			"path", r.URL.Path,
			"error", err,
			"request_id", GetRequestID(r.Context()),
		)
		http.Error(w, "internal error", status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": err.Error()})
}
