package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pure-justin/power-to-the-people-sub003/internal/model"
	"github.com/pure-justin/power-to-the-people-sub003/internal/scoring"
)

// MemoryStore is the in-memory Store used in development and tests. A single
// mutex covers every record type, which makes ApplyAward and ApplyRequeue
// trivially atomic.
type MemoryStore struct {
	mu         sync.RWMutex
	listings   map[string]model.Listing
	bids       map[string]model.Bid
	workers    map[string]model.WorkerProfile
	zips       map[string]model.ZipCoordinate
	weights    *scoring.WeightsConfig
	violations []model.SlaViolationRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		listings: make(map[string]model.Listing),
		bids:     make(map[string]model.Bid),
		workers:  make(map[string]model.WorkerProfile),
		zips:     make(map[string]model.ZipCoordinate),
	}
}

func (s *MemoryStore) SaveListing(ctx context.Context, listing model.Listing) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[listing.ID] = listing
	return nil
}

func (s *MemoryStore) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.listings[id]; ok {
		return &l, nil
	}
	return nil, nil
}

func (s *MemoryStore) UpdateListing(ctx context.Context, listing model.Listing) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[listing.ID]; !ok {
		return fmt.Errorf("%w: listing %s", model.ErrNotFound, listing.ID)
	}
	s.listings[listing.ID] = listing
	return nil
}

func (s *MemoryStore) ListListingsByStatus(ctx context.Context, status model.ListingStatus, limit int) ([]model.Listing, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Listing
	for _, l := range s.listings {
		if status == "" || l.Status == status {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) ListOpenClosedBefore(ctx context.Context, t time.Time) ([]model.Listing, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Listing
	for _, l := range s.listings {
		if l.Status == model.ListingStatusOpen && !l.BidWindowClosesAt.After(t) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) SaveBid(ctx context.Context, bid model.Bid) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bids[bid.ID] = bid
	return nil
}

func (s *MemoryStore) GetBid(ctx context.Context, id string) (*model.Bid, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.bids[id]; ok {
		return &b, nil
	}
	return nil, nil
}

func (s *MemoryStore) ListBidsByListing(ctx context.Context, listingID string, status model.BidStatus) ([]model.Bid, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Bid
	for _, b := range s.bids {
		if b.ListingID != listingID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (s *MemoryStore) ApplyAward(ctx context.Context, award Award) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.listings[award.Listing.ID]
	if !ok {
		return fmt.Errorf("%w: listing %s", model.ErrNotFound, award.Listing.ID)
	}
	if current.Status != model.ListingStatusOpen {
		return fmt.Errorf("%w: listing %s is %s", model.ErrFailedPrecondition, current.ID, current.Status)
	}
	bid, ok := s.bids[award.AcceptedBid.ID]
	if !ok {
		return fmt.Errorf("%w: bid %s", model.ErrNotFound, award.AcceptedBid.ID)
	}
	if bid.Status != model.BidStatusPending {
		return fmt.Errorf("%w: bid %s is %s", model.ErrFailedPrecondition, bid.ID, bid.Status)
	}

	s.listings[award.Listing.ID] = award.Listing
	s.bids[award.AcceptedBid.ID] = award.AcceptedBid
	for id, b := range s.bids {
		if b.ListingID == award.Listing.ID && b.ID != award.AcceptedBid.ID && b.Status == model.BidStatusPending {
			b.Status = model.BidStatusRejected
			b.UpdatedAt = award.Now
			s.bids[id] = b
		}
	}
	return nil
}

func (s *MemoryStore) ApplyRequeue(ctx context.Context, requeue Requeue) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.listings[requeue.Listing.ID]
	if !ok {
		return fmt.Errorf("%w: listing %s", model.ErrNotFound, requeue.Listing.ID)
	}
	if current.Status != model.ListingStatusAssigned {
		return fmt.Errorf("%w: listing %s is %s", model.ErrFailedPrecondition, current.ID, current.Status)
	}

	s.listings[requeue.Listing.ID] = requeue.Listing
	if b, ok := s.bids[requeue.RejectBidID]; ok && b.Status == model.BidStatusAccepted {
		b.Status = model.BidStatusRejected
		b.UpdatedAt = requeue.Now
		s.bids[requeue.RejectBidID] = b
	}
	return nil
}

func (s *MemoryStore) SaveWorker(ctx context.Context, worker model.WorkerProfile) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers[worker.ID] = worker
	return nil
}

func (s *MemoryStore) GetWorker(ctx context.Context, id string) (*model.WorkerProfile, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	if w, ok := s.workers[id]; ok {
		return &w, nil
	}
	return nil, nil
}

func (s *MemoryStore) GetWorkers(ctx context.Context, ids []string) (map[string]model.WorkerProfile, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.WorkerProfile, len(ids))
	for _, id := range ids {
		if w, ok := s.workers[id]; ok {
			out[id] = w
		}
	}
	return out, nil
}

func (s *MemoryStore) GetZip(ctx context.Context, postalCode string) (*model.ZipCoordinate, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	if z, ok := s.zips[postalCode]; ok {
		return &z, nil
	}
	return nil, nil
}

func (s *MemoryStore) PutZip(ctx context.Context, coord model.ZipCoordinate) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zips[coord.PostalCode] = coord
	return nil
}

func (s *MemoryStore) GetWeights(ctx context.Context) (*scoring.WeightsConfig, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.weights == nil {
		return nil, nil
	}
	cfg := *s.weights
	return &cfg, nil
}

func (s *MemoryStore) PutWeights(ctx context.Context, cfg scoring.WeightsConfig) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weights = &cfg
	return nil
}

func (s *MemoryStore) SaveViolation(ctx context.Context, rec model.SlaViolationRecord) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.violations = append(s.violations, rec)
	return nil
}

func (s *MemoryStore) ListViolationsByWorker(ctx context.Context, workerID string) ([]model.SlaViolationRecord, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.SlaViolationRecord
	for _, v := range s.violations {
		if v.WorkerID == workerID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	_ = ctx
	return nil
}
