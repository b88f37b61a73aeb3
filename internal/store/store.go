package store

import (
	"context"
	"time"

	"github.com/pure-justin/power-to-the-people-sub003/internal/model"
	"github.com/pure-justin/power-to-the-people-sub003/internal/scoring"
)

// Award is the atomic multi-record write applied when a bid is accepted: the
// listing moves to ASSIGNED with its winning snapshot, the accepted bid moves
// to ACCEPTED, and every other pending bid on the listing moves to REJECTED.
// Implementations must apply it all-or-nothing; partial application must never
// be observable. The embedded status filters make a retried award fail its
// precondition instead of double-applying.
type Award struct {
	Listing     model.Listing
	AcceptedBid model.Bid
	Now         time.Time
}

// Requeue returns an assigned listing to the open state after an SLA
// violation: the listing reopens with a fresh bid window and the previously
// accepted bid is rejected. Applied atomically like Award.
type Requeue struct {
	Listing     model.Listing
	RejectBidID string
	Now         time.Time
}

type ListingStore interface {
	SaveListing(ctx context.Context, listing model.Listing) error
	// GetListing returns (nil, nil) when no listing matches.
	GetListing(ctx context.Context, id string) (*model.Listing, error)
	UpdateListing(ctx context.Context, listing model.Listing) error
	ListListingsByStatus(ctx context.Context, status model.ListingStatus, limit int) ([]model.Listing, error)
	// ListOpenClosedBefore returns open listings whose bid window elapsed at
	// or before the given instant.
	ListOpenClosedBefore(ctx context.Context, t time.Time) ([]model.Listing, error)
}

type BidStore interface {
	SaveBid(ctx context.Context, bid model.Bid) error
	// GetBid returns (nil, nil) when no bid matches.
	GetBid(ctx context.Context, id string) (*model.Bid, error)
	// ListBidsByListing returns bids in submission order. An empty status
	// matches all bids.
	ListBidsByListing(ctx context.Context, listingID string, status model.BidStatus) ([]model.Bid, error)
}

type AwardStore interface {
	ApplyAward(ctx context.Context, award Award) error
	ApplyRequeue(ctx context.Context, requeue Requeue) error
}

type WorkerStore interface {
	SaveWorker(ctx context.Context, worker model.WorkerProfile) error
	// GetWorker returns (nil, nil) when no worker matches.
	GetWorker(ctx context.Context, id string) (*model.WorkerProfile, error)
	GetWorkers(ctx context.Context, ids []string) (map[string]model.WorkerProfile, error)
}

type ZipStore interface {
	GetZip(ctx context.Context, postalCode string) (*model.ZipCoordinate, error)
	PutZip(ctx context.Context, coord model.ZipCoordinate) error
}

type WeightsStore interface {
	// GetWeights returns (nil, nil) when no weights document is configured.
	GetWeights(ctx context.Context) (*scoring.WeightsConfig, error)
	PutWeights(ctx context.Context, cfg scoring.WeightsConfig) error
}

type ViolationStore interface {
	SaveViolation(ctx context.Context, rec model.SlaViolationRecord) error
	ListViolationsByWorker(ctx context.Context, workerID string) ([]model.SlaViolationRecord, error)
}

// Store is the full persistence surface of the marketplace core.
type Store interface {
	ListingStore
	BidStore
	AwardStore
	WorkerStore
	ZipStore
	WeightsStore
	ViolationStore
	Close(ctx context.Context) error
}
