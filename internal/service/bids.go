package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/pure-justin/power-to-the-people-sub003/internal/geo"
	"github.com/pure-justin/power-to-the-people-sub003/internal/model"
	"github.com/pure-justin/power-to-the-people-sub003/internal/notify"
	"github.com/pure-justin/power-to-the-people-sub003/internal/scoring"
)

// SubmitBid places a worker's bid on an open listing.
func (s *Service) SubmitBid(ctx context.Context, workerID, listingID string, req model.SubmitBidRequest) (model.Bid, error) {
	if req.Price <= 0 {
		return model.Bid{}, fmt.Errorf("%w: price must be positive", model.ErrInvalidInput)
	}

	listing, err := s.loadListing(ctx, listingID)
	if err != nil {
		return model.Bid{}, err
	}
	if listing.Status != model.ListingStatusOpen {
		return model.Bid{}, fmt.Errorf("%w: listing %s is %s", model.ErrFailedPrecondition, listingID, listing.Status)
	}
	if listing.PostedBy == workerID {
		return model.Bid{}, fmt.Errorf("%w: poster cannot bid on own listing", model.ErrFailedPrecondition)
	}

	worker, err := s.store.GetWorker(ctx, workerID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("%w: get worker: %v", model.ErrInternal, err)
	}
	if worker == nil {
		return model.Bid{}, fmt.Errorf("%w: worker %s", model.ErrNotFound, workerID)
	}
	if worker.Availability == model.WorkerSuspended {
		return model.Bid{}, fmt.Errorf("%w: worker %s is suspended", model.ErrFailedPrecondition, workerID)
	}

	now := time.Now().UTC()
	bid := model.Bid{
		ID:            generateID("bid_"),
		ListingID:     listing.ID,
		WorkerID:      workerID,
		Price:         req.Price,
		ProposedDays:  req.ProposedDays,
		Notes:         req.Notes,
		Status:        model.BidStatusPending,
		DistanceMiles: s.bidDistance(ctx, listing, worker),
		SubmittedAt:   now,
		UpdatedAt:     now,
	}

	if err := s.store.SaveBid(ctx, bid); err != nil {
		return model.Bid{}, fmt.Errorf("%w: save bid: %v", model.ErrInternal, err)
	}

	listing.BidsReceived++
	listing.UpdatedAt = now
	if err := s.store.UpdateListing(ctx, *listing); err != nil {
		slog.WarnContext(ctx, "bid_count_update_failed", "listing_id", listing.ID, "error", err)
	}

	_ = s.dispatcher.Publish(ctx, notify.EventBidSubmitted, map[string]any{
		"listing_id": listing.ID,
		"bid_id":     bid.ID,
		"worker_id":  workerID,
		"price":      bid.Price,
	})

	slog.InfoContext(ctx, "bid_submitted",
		"listing_id", listing.ID,
		"bid_id", bid.ID,
		"worker_id", workerID,
		"total_bids", listing.BidsReceived,
	)

	return bid, nil
}

// bidDistance computes the worker-to-listing distance at submission time.
// Nil when either side has no resolvable coordinates; scoring treats that as
// the worst case.
func (s *Service) bidDistance(ctx context.Context, listing *model.Listing, worker *model.WorkerProfile) *float64 {
	listingLat, listingLng := listing.Location.Lat, listing.Location.Lng
	if listingLat == 0 && listingLng == 0 {
		if listing.Location.PostalCode == "" {
			return nil
		}
		coord, err := s.resolver.Resolve(ctx, listing.Location.PostalCode)
		if err != nil {
			return nil
		}
		listingLat, listingLng = coord.Latitude, coord.Longitude
	}

	var workerLat, workerLng float64
	switch {
	case worker.Lat != nil && worker.Lng != nil:
		workerLat, workerLng = *worker.Lat, *worker.Lng
	case worker.PostalCode != "":
		coord, err := s.resolver.Resolve(ctx, worker.PostalCode)
		if err != nil {
			return nil
		}
		workerLat, workerLng = coord.Latitude, coord.Longitude
	default:
		return nil
	}

	d := geo.DistanceMiles(listingLat, listingLng, workerLat, workerLng)
	return &d
}

// RankBids loads all eligible pending bids for a listing and returns them
// scored and ordered best-first with 1-based ranks. An empty result is not an
// error. The sort is stable, so equal scores keep submission order.
func (s *Service) RankBids(ctx context.Context, listingID string) ([]model.RankedBid, error) {
	listing, err := s.loadListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	weights := s.currentWeights(ctx)

	bids, err := s.store.ListBidsByListing(ctx, listingID, model.BidStatusPending)
	if err != nil {
		return nil, fmt.Errorf("%w: list bids: %v", model.ErrInternal, err)
	}
	if len(bids) == 0 {
		return []model.RankedBid{}, nil
	}

	workerIDs := make([]string, 0, len(bids))
	for _, b := range bids {
		workerIDs = append(workerIDs, b.WorkerID)
	}
	workers, err := s.store.GetWorkers(ctx, workerIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: get workers: %v", model.ErrInternal, err)
	}

	ranked := make([]model.RankedBid, 0, len(bids))
	for _, bid := range bids {
		worker, ok := workers[bid.WorkerID]
		if !ok {
			slog.WarnContext(ctx, "bid_worker_missing", "bid_id", bid.ID, "worker_id", bid.WorkerID)
			continue
		}
		if worker.Availability == model.WorkerSuspended {
			continue
		}
		if worker.HasBlocked(listing.PostedBy) {
			continue
		}

		total, breakdown := scoring.Score(&bid, listing, &worker, weights)
		ranked = append(ranked, model.RankedBid{
			BidID:      bid.ID,
			WorkerID:   bid.WorkerID,
			Price:      bid.Price,
			TotalScore: total,
			Breakdown:  breakdown,
		})
	}

	// Stable: ties keep submission order, which ListBidsByListing guarantees.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].TotalScore > ranked[j].TotalScore })
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}

// ListBids returns all bids on a listing in submission order.
func (s *Service) ListBids(ctx context.Context, listingID string) ([]model.Bid, error) {
	if _, err := s.loadListing(ctx, listingID); err != nil {
		return nil, err
	}
	bids, err := s.store.ListBidsByListing(ctx, listingID, "")
	if err != nil {
		return nil, fmt.Errorf("%w: list bids: %v", model.ErrInternal, err)
	}
	return bids, nil
}
