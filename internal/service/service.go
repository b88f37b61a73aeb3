package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pure-justin/power-to-the-people-sub003/internal/geo"
	"github.com/pure-justin/power-to-the-people-sub003/internal/model"
	"github.com/pure-justin/power-to-the-people-sub003/internal/notify"
	"github.com/pure-justin/power-to-the-people-sub003/internal/scoring"
	"github.com/pure-justin/power-to-the-people-sub003/internal/store"
)

const (
	// DefaultBidWindowHours is how long bidding stays open when the poster
	// does not choose a window.
	DefaultBidWindowHours = 24
	// MaxBidWindowHours caps poster-chosen windows.
	MaxBidWindowHours = 7 * 24
	// WindowExtension is how far an empty bidding window is pushed out by the
	// sweep.
	WindowExtension = 24 * time.Hour

	// weightsTTL bounds how stale the cached scoring weights can get, so an
	// operator can hot-adjust rankings without a redeploy.
	weightsTTL = 30 * time.Second
)

// Service is the marketplace core: listing and bid lifecycle, ranking, and
// the accept state machine. It is the only writer of listing and bid status.
type Service struct {
	store      store.Store
	resolver   *geo.Resolver
	dispatcher *notify.Dispatcher

	weightsMu     sync.Mutex
	weightsCached scoring.Weights
	weightsExpiry time.Time
}

func New(st store.Store, resolver *geo.Resolver, dispatcher *notify.Dispatcher) *Service {
	return &Service{
		store:      st,
		resolver:   resolver,
		dispatcher: dispatcher,
	}
}

// CreateListing posts a new unit of work and opens its bid window.
func (s *Service) CreateListing(ctx context.Context, posterID string, req model.CreateListingRequest) (model.Listing, error) {
	if strings.TrimSpace(posterID) == "" {
		return model.Listing{}, fmt.Errorf("%w: poster is required", model.ErrInvalidInput)
	}
	if !model.ValidServiceType(req.ServiceType) {
		return model.Listing{}, fmt.Errorf("%w: unknown service type %q", model.ErrInvalidInput, req.ServiceType)
	}

	budget := model.Budget{}
	if req.Budget != nil {
		if req.Budget.Min < 0 || req.Budget.Max < 0 || req.Budget.Min > req.Budget.Max {
			return model.Listing{}, fmt.Errorf("%w: budget range [%.2f, %.2f]", model.ErrInvalidInput, req.Budget.Min, req.Budget.Max)
		}
		budget = *req.Budget
	}

	windowHours := req.BidWindowHours
	if windowHours <= 0 {
		windowHours = DefaultBidWindowHours
	}
	if windowHours > MaxBidWindowHours {
		windowHours = MaxBidWindowHours
	}

	location := model.Location{}
	if req.Location != nil {
		location = *req.Location
	}
	if location.Lat == 0 && location.Lng == 0 && location.PostalCode != "" {
		if coord, err := s.resolver.Resolve(ctx, location.PostalCode); err != nil {
			slog.WarnContext(ctx, "listing_zip_unresolved", "postal_code", location.PostalCode, "error", err)
		} else {
			location.Lat = coord.Latitude
			location.Lng = coord.Longitude
			if location.State == "" {
				location.State = coord.State
			}
		}
	}

	now := time.Now().UTC()
	listing := model.Listing{
		ID:                generateID("lst_"),
		PostedBy:          posterID,
		ServiceType:       req.ServiceType,
		Description:       strings.TrimSpace(req.Description),
		Budget:            budget,
		Location:          location,
		Status:            model.ListingStatusOpen,
		BidWindowClosesAt: now.Add(time.Duration(windowHours) * time.Hour),
		ScheduledFor:      req.ScheduledFor,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.store.SaveListing(ctx, listing); err != nil {
		return model.Listing{}, fmt.Errorf("%w: save listing: %v", model.ErrInternal, err)
	}

	_ = s.dispatcher.Publish(ctx, notify.EventListingCreated, map[string]any{
		"listing_id":           listing.ID,
		"service_type":         listing.ServiceType,
		"posted_by":            listing.PostedBy,
		"bid_window_closes_at": listing.BidWindowClosesAt.Format(time.RFC3339),
	})

	slog.InfoContext(ctx, "listing_created",
		"listing_id", listing.ID,
		"service_type", listing.ServiceType,
		"bid_window_closes_at", listing.BidWindowClosesAt,
	)

	return listing, nil
}

// GetListing fetches one listing.
func (s *Service) GetListing(ctx context.Context, listingID string) (model.Listing, error) {
	listing, err := s.loadListing(ctx, listingID)
	if err != nil {
		return model.Listing{}, err
	}
	return *listing, nil
}

// ListListings returns listings filtered by status; an empty status matches
// all.
func (s *Service) ListListings(ctx context.Context, status model.ListingStatus, limit int) ([]model.Listing, error) {
	listings, err := s.store.ListListingsByStatus(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list listings: %v", model.ErrInternal, err)
	}
	return listings, nil
}

// ResolveZip resolves a postal code to its approximate coordinate.
func (s *Service) ResolveZip(ctx context.Context, postalCode string) (*model.ZipCoordinate, error) {
	return s.resolver.Resolve(ctx, postalCode)
}

func (s *Service) loadListing(ctx context.Context, listingID string) (*model.Listing, error) {
	listing, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("%w: get listing: %v", model.ErrInternal, err)
	}
	if listing == nil {
		return nil, fmt.Errorf("%w: listing %s", model.ErrNotFound, listingID)
	}
	return listing, nil
}

// currentWeights returns the active scoring weights, falling back to the
// compiled-in defaults on any configuration read failure. Ranking must stay
// available even when configuration storage is unreachable.
func (s *Service) currentWeights(ctx context.Context) scoring.Weights {
	s.weightsMu.Lock()
	defer s.weightsMu.Unlock()

	now := time.Now()
	if now.Before(s.weightsExpiry) {
		return s.weightsCached
	}

	weights := scoring.DefaultWeights()
	cfg, err := s.store.GetWeights(ctx)
	if err != nil {
		slog.WarnContext(ctx, "weights_read_failed_using_defaults", "error", err)
	} else if cfg != nil {
		weights = cfg.Resolve()
		if verr := weights.Validate(); verr != nil {
			slog.WarnContext(ctx, "weights_misconfigured", "warning", verr)
		}
	}

	s.weightsCached = weights
	s.weightsExpiry = now.Add(weightsTTL)
	return weights
}

// UpdateWeights stores a new weights configuration and drops the TTL cache so
// the next ranking sees it.
func (s *Service) UpdateWeights(ctx context.Context, cfg scoring.WeightsConfig) error {
	if err := s.store.PutWeights(ctx, cfg); err != nil {
		return fmt.Errorf("%w: put weights: %v", model.ErrInternal, err)
	}
	s.weightsMu.Lock()
	s.weightsExpiry = time.Time{}
	s.weightsMu.Unlock()
	return nil
}

func generateID(prefix string) string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return prefix + hex.EncodeToString(b[:8])
}
