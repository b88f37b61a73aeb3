package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pure-justin/power-to-the-people-sub003/internal/service"
	"github.com/pure-justin/power-to-the-people-sub003/internal/store"
)

// DefaultBidWindowInterval is the design cadence of the bid-window sweep.
const DefaultBidWindowInterval = 15 * time.Minute

// BidWindowSummary is the per-run outcome count.
type BidWindowSummary struct {
	Processed int `json:"processed"`
	Accepted  int `json:"accepted"`
	Extended  int `json:"extended"`
	Failed    int `json:"failed"`
}

// BidWindowSweep closes listings whose bidding deadline elapsed: the top
// ranked bid is auto-accepted, or the window is extended when nobody bid.
type BidWindowSweep struct {
	svc      *service.Service
	listings store.ListingStore
}

func NewBidWindowSweep(svc *service.Service, listings store.ListingStore) *BidWindowSweep {
	return &BidWindowSweep{svc: svc, listings: listings}
}

// Run processes every open listing whose window elapsed. Listings are
// independent: a failure on one is logged and counted, never aborts the rest.
func (s *BidWindowSweep) Run(ctx context.Context) (BidWindowSummary, error) {
	now := time.Now().UTC()
	expired, err := s.listings.ListOpenClosedBefore(ctx, now)
	if err != nil {
		return BidWindowSummary{}, fmt.Errorf("list expired listings: %w", err)
	}

	var sum BidWindowSummary
	for _, listing := range expired {
		sum.Processed++

		result, err := s.svc.AutoAcceptBestBid(ctx, listing.ID)
		if err != nil {
			sum.Failed++
			slog.ErrorContext(ctx, "bid_window_close_failed", "listing_id", listing.ID, "error", err)
			continue
		}
		if result.Accepted {
			sum.Accepted++
			continue
		}

		if _, err := s.svc.ExtendBidWindow(ctx, listing.ID); err != nil {
			sum.Failed++
			slog.ErrorContext(ctx, "bid_window_extend_failed", "listing_id", listing.ID, "error", err)
			continue
		}
		sum.Extended++
	}

	slog.InfoContext(ctx, "bid_window_sweep_completed",
		"processed", sum.Processed,
		"accepted", sum.Accepted,
		"extended", sum.Extended,
		"failed", sum.Failed,
	)
	return sum, nil
}
