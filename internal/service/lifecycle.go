package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pure-justin/power-to-the-people-sub003/internal/model"
	"github.com/pure-justin/power-to-the-people-sub003/internal/notify"
	"github.com/pure-justin/power-to-the-people-sub003/internal/scoring"
	"github.com/pure-justin/power-to-the-people-sub003/internal/store"
)

// PlatformFeeRate is the platform's cut of the winning price, recorded in the
// award snapshot for the settlement collaborator.
var PlatformFeeRate = decimal.RequireFromString("0.15")

// AcceptBid awards a listing to one bid. Poster-only. The listing transition,
// the winning bid's acceptance, and the rejection of every sibling pending bid
// commit as one atomic write; a concurrent accept observes the listing off
// OPEN and fails with ErrFailedPrecondition, leaving all records unchanged.
func (s *Service) AcceptBid(ctx context.Context, actorID, listingID, bidID string) (model.Listing, error) {
	listing, err := s.loadListing(ctx, listingID)
	if err != nil {
		return model.Listing{}, err
	}
	if listing.PostedBy != actorID {
		return model.Listing{}, fmt.Errorf("%w: only the poster may accept a bid", model.ErrPermissionDenied)
	}
	return s.accept(ctx, listing, bidID)
}

// AutoAcceptBestBid ranks a listing's bids and awards the top one. With no
// eligible bids it reports {accepted:false} and performs no writes.
func (s *Service) AutoAcceptBestBid(ctx context.Context, listingID string) (model.AutoAcceptResult, error) {
	ranked, err := s.RankBids(ctx, listingID)
	if err != nil {
		return model.AutoAcceptResult{}, err
	}
	if len(ranked) == 0 {
		return model.AutoAcceptResult{Accepted: false}, nil
	}

	top := ranked[0]
	listing, err := s.loadListing(ctx, listingID)
	if err != nil {
		return model.AutoAcceptResult{}, err
	}
	if _, err := s.accept(ctx, listing, top.BidID); err != nil {
		return model.AutoAcceptResult{}, err
	}
	return model.AutoAcceptResult{
		Accepted: true,
		BidID:    top.BidID,
		WorkerID: top.WorkerID,
		Score:    top.TotalScore,
	}, nil
}

func (s *Service) accept(ctx context.Context, listing *model.Listing, bidID string) (model.Listing, error) {
	if listing.Status != model.ListingStatusOpen {
		return model.Listing{}, fmt.Errorf("%w: listing %s is %s", model.ErrFailedPrecondition, listing.ID, listing.Status)
	}

	bid, err := s.store.GetBid(ctx, bidID)
	if err != nil {
		return model.Listing{}, fmt.Errorf("%w: get bid: %v", model.ErrInternal, err)
	}
	if bid == nil {
		return model.Listing{}, fmt.Errorf("%w: bid %s", model.ErrNotFound, bidID)
	}
	if bid.ListingID != listing.ID {
		return model.Listing{}, fmt.Errorf("%w: bid %s does not belong to listing %s", model.ErrFailedPrecondition, bidID, listing.ID)
	}
	if bid.Status != model.BidStatusPending {
		return model.Listing{}, fmt.Errorf("%w: bid %s is %s", model.ErrFailedPrecondition, bidID, bid.Status)
	}

	// Score the accepted bid for the snapshot. Worker absence degrades to a
	// zero-profile score rather than blocking the award.
	weights := s.currentWeights(ctx)
	worker, err := s.store.GetWorker(ctx, bid.WorkerID)
	if err != nil {
		return model.Listing{}, fmt.Errorf("%w: get worker: %v", model.ErrInternal, err)
	}
	if worker == nil {
		worker = &model.WorkerProfile{ID: bid.WorkerID}
	}
	total, breakdown := scoring.Score(bid, listing, worker, weights)

	now := time.Now().UTC()
	price := decimal.NewFromFloat(bid.Price)
	fee := price.Mul(PlatformFeeRate)

	accepted := *bid
	accepted.Status = model.BidStatusAccepted
	accepted.Score = &total
	accepted.ScoreBreakdown = &breakdown
	accepted.UpdatedAt = now

	updated := *listing
	updated.Status = model.ListingStatusAssigned
	updated.AssignedAt = &now
	updated.UpdatedAt = now
	updated.WinningBid = &model.WinningBid{
		BidID:        accepted.ID,
		WorkerID:     accepted.WorkerID,
		Price:        accepted.Price,
		Score:        total,
		PlatformFee:  fee.String(),
		WorkerPayout: price.Sub(fee).String(),
	}

	if err := s.store.ApplyAward(ctx, store.Award{
		Listing:     updated,
		AcceptedBid: accepted,
		Now:         now,
	}); err != nil {
		return model.Listing{}, err
	}

	_ = s.dispatcher.Publish(ctx, notify.EventBidAccepted, map[string]any{
		"listing_id": updated.ID,
		"bid_id":     accepted.ID,
		"worker_id":  accepted.WorkerID,
		"price":      accepted.Price,
		"score":      total,
	})
	_ = s.dispatcher.Send(ctx, "sms", accepted.WorkerID,
		fmt.Sprintf("Your bid on listing %s was accepted at $%.2f.", updated.ID, accepted.Price))

	slog.InfoContext(ctx, "bid_accepted",
		"listing_id", updated.ID,
		"bid_id", accepted.ID,
		"worker_id", accepted.WorkerID,
		"score", total,
	)

	return updated, nil
}

// CompleteJob closes out an assigned listing. Only the poster or the assigned
// worker may complete.
func (s *Service) CompleteJob(ctx context.Context, actorID, listingID string) (model.Listing, error) {
	listing, err := s.loadListing(ctx, listingID)
	if err != nil {
		return model.Listing{}, err
	}
	if listing.Status != model.ListingStatusAssigned {
		return model.Listing{}, fmt.Errorf("%w: listing %s is %s", model.ErrFailedPrecondition, listingID, listing.Status)
	}
	assignedWorker := ""
	if listing.WinningBid != nil {
		assignedWorker = listing.WinningBid.WorkerID
	}
	if actorID != listing.PostedBy && actorID != assignedWorker {
		return model.Listing{}, fmt.Errorf("%w: only the poster or assigned worker may complete", model.ErrPermissionDenied)
	}

	now := time.Now().UTC()
	listing.Status = model.ListingStatusCompleted
	listing.CompletedAt = &now
	listing.CompletedBy = actorID
	listing.UpdatedAt = now

	if err := s.store.UpdateListing(ctx, *listing); err != nil {
		return model.Listing{}, fmt.Errorf("%w: update listing: %v", model.ErrInternal, err)
	}

	_ = s.dispatcher.Publish(ctx, notify.EventListingCompleted, map[string]any{
		"listing_id":   listing.ID,
		"completed_by": actorID,
		"completed_at": now.Format(time.RFC3339),
	})

	slog.InfoContext(ctx, "job_completed", "listing_id", listing.ID, "completed_by", actorID)
	return *listing, nil
}

// CancelListing withdraws an open listing. Poster-only.
func (s *Service) CancelListing(ctx context.Context, actorID, listingID string) (model.Listing, error) {
	listing, err := s.loadListing(ctx, listingID)
	if err != nil {
		return model.Listing{}, err
	}
	if listing.PostedBy != actorID {
		return model.Listing{}, fmt.Errorf("%w: only the poster may cancel", model.ErrPermissionDenied)
	}
	if listing.Status != model.ListingStatusOpen {
		return model.Listing{}, fmt.Errorf("%w: listing %s is %s", model.ErrFailedPrecondition, listingID, listing.Status)
	}

	now := time.Now().UTC()
	listing.Status = model.ListingStatusCancelled
	listing.UpdatedAt = now

	if err := s.store.UpdateListing(ctx, *listing); err != nil {
		return model.Listing{}, fmt.Errorf("%w: update listing: %v", model.ErrInternal, err)
	}

	_ = s.dispatcher.Publish(ctx, notify.EventListingCancelled, map[string]any{
		"listing_id": listing.ID,
		"reason":     "poster_requested",
	})

	slog.InfoContext(ctx, "listing_cancelled", "listing_id", listing.ID)
	return *listing, nil
}

// RequeueListing returns an assigned listing to the open, re-biddable state
// after a missed deadline: fresh bid window, winning snapshot cleared, SLA
// flags reset, and the previously accepted bid rejected, all atomically.
func (s *Service) RequeueListing(ctx context.Context, listingID, workerID, reason string) (model.Listing, error) {
	listing, err := s.loadListing(ctx, listingID)
	if err != nil {
		return model.Listing{}, err
	}
	if listing.Status != model.ListingStatusAssigned {
		return model.Listing{}, fmt.Errorf("%w: listing %s is %s", model.ErrFailedPrecondition, listingID, listing.Status)
	}

	rejectBidID := ""
	if listing.WinningBid != nil {
		rejectBidID = listing.WinningBid.BidID
	}

	now := time.Now().UTC()
	reopened := *listing
	reopened.Status = model.ListingStatusOpen
	reopened.WinningBid = nil
	reopened.AssignedAt = nil
	reopened.SLAWarningSent = false
	reopened.SLAWarningSentAt = nil
	reopened.BidWindowClosesAt = now.Add(WindowExtension)
	reopened.UpdatedAt = now

	if err := s.store.ApplyRequeue(ctx, store.Requeue{
		Listing:     reopened,
		RejectBidID: rejectBidID,
		Now:         now,
	}); err != nil {
		return model.Listing{}, err
	}

	_ = s.dispatcher.Publish(ctx, notify.EventListingRequeued, map[string]any{
		"listing_id": reopened.ID,
		"worker_id":  workerID,
		"reason":     reason,
	})

	slog.InfoContext(ctx, "listing_requeued",
		"listing_id", reopened.ID,
		"worker_id", workerID,
		"reason", reason,
	)

	return reopened, nil
}

// ExtendBidWindow pushes an open listing's bid window out and bumps the
// extension counter. Used by the bid-window sweep when no bids arrived.
func (s *Service) ExtendBidWindow(ctx context.Context, listingID string) (model.Listing, error) {
	listing, err := s.loadListing(ctx, listingID)
	if err != nil {
		return model.Listing{}, err
	}
	if listing.Status != model.ListingStatusOpen {
		return model.Listing{}, fmt.Errorf("%w: listing %s is %s", model.ErrFailedPrecondition, listingID, listing.Status)
	}

	now := time.Now().UTC()
	listing.BidWindowClosesAt = now.Add(WindowExtension)
	listing.BidWindowExtensions++
	listing.UpdatedAt = now

	if err := s.store.UpdateListing(ctx, *listing); err != nil {
		return model.Listing{}, fmt.Errorf("%w: update listing: %v", model.ErrInternal, err)
	}

	_ = s.dispatcher.Publish(ctx, notify.EventListingWindowExtended, map[string]any{
		"listing_id":           listing.ID,
		"extensions":           listing.BidWindowExtensions,
		"bid_window_closes_at": listing.BidWindowClosesAt.Format(time.RFC3339),
	})
	_ = s.dispatcher.Send(ctx, "email", listing.PostedBy,
		fmt.Sprintf("No bids arrived for listing %s yet; the bidding window was extended by 24 hours.", listing.ID))

	return *listing, nil
}
