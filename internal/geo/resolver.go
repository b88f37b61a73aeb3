package geo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pure-justin/power-to-the-people-sub003/internal/model"
)

// ZipCache is the persistence surface the resolver needs. Implemented by the
// zip stores in internal/store.
type ZipCache interface {
	GetZip(ctx context.Context, postalCode string) (*model.ZipCoordinate, error)
	PutZip(ctx context.Context, coord model.ZipCoordinate) error
}

// Resolver turns postal codes into approximate coordinates, consulting the
// cache before the compiled-in reference table. Cache writes are best-effort:
// two racing resolutions write the same deterministic value, so last-write-wins
// is benign.
type Resolver struct {
	cache ZipCache
}

func NewResolver(cache ZipCache) *Resolver {
	return &Resolver{cache: cache}
}

// Resolve returns the coordinate for a 5-digit postal code. Repeated calls for
// the same code return the same coordinate whether or not the first call
// populated the cache.
func (r *Resolver) Resolve(ctx context.Context, postalCode string) (*model.ZipCoordinate, error) {
	if !validZip(postalCode) {
		return nil, fmt.Errorf("%w: postal code must be 5 digits, got %q", model.ErrInvalidInput, postalCode)
	}

	if cached, err := r.cache.GetZip(ctx, postalCode); err != nil {
		slog.WarnContext(ctx, "zip_cache_read_failed", "postal_code", postalCode, "error", err)
	} else if cached != nil && usable(cached) {
		out := *cached
		out.Source = model.SourceCached
		return &out, nil
	}

	entry, found, exact := lookupSeed(postalCode)
	if !found {
		return nil, fmt.Errorf("%w: no reference entry for postal code %s", model.ErrNotFound, postalCode)
	}

	source := model.SourceApproximated
	if exact {
		source = model.SourceSeeded
	}
	coord := model.ZipCoordinate{
		PostalCode: postalCode,
		Latitude:   entry.Lat,
		Longitude:  entry.Lng,
		City:       entry.City,
		State:      entry.State,
		Source:     source,
		CreatedAt:  time.Now().UTC(),
	}

	// Write-through is fire-and-forget: a cache failure must not fail the
	// resolution.
	if err := r.cache.PutZip(ctx, coord); err != nil {
		slog.WarnContext(ctx, "zip_cache_write_failed", "postal_code", postalCode, "error", err)
	}

	return &coord, nil
}

// usable guards against malformed legacy cache entries.
func usable(c *model.ZipCoordinate) bool {
	return c.PostalCode != "" && !(c.Latitude == 0 && c.Longitude == 0)
}

func validZip(code string) bool {
	if len(code) != 5 {
		return false
	}
	for _, ch := range code {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
