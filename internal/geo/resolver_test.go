package geo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pure-justin/power-to-the-people-sub003/internal/model"
)

type fakeCache struct {
	entries map[string]model.ZipCoordinate
	getErr  error
	putErr  error
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]model.ZipCoordinate{}}
}

func (c *fakeCache) GetZip(ctx context.Context, postalCode string) (*model.ZipCoordinate, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if coord, ok := c.entries[postalCode]; ok {
		out := coord
		return &out, nil
	}
	return nil, nil
}

func (c *fakeCache) PutZip(ctx context.Context, coord model.ZipCoordinate) error {
	if c.putErr != nil {
		return c.putErr
	}
	c.puts++
	c.entries[coord.PostalCode] = coord
	return nil
}

func TestResolveValidation(t *testing.T) {
	r := NewResolver(newFakeCache())
	ctx := context.Background()

	for _, code := range []string{"", "1234", "123456", "78a01", "ABCDE"} {
		if _, err := r.Resolve(ctx, code); !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("Resolve(%q) error = %v, want ErrInvalidInput", code, err)
		}
	}
}

func TestResolveSeededExact(t *testing.T) {
	cache := newFakeCache()
	r := NewResolver(cache)

	coord, err := r.Resolve(context.Background(), "78701")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if coord.Source != model.SourceSeeded {
		t.Errorf("source = %q, want %q", coord.Source, model.SourceSeeded)
	}
	if coord.City != "Austin" || coord.State != "TX" {
		t.Errorf("got %s, %s; want Austin, TX", coord.City, coord.State)
	}
	if cache.puts != 1 {
		t.Errorf("cache writes = %d, want 1", cache.puts)
	}
}

func TestResolvePrefixFallback(t *testing.T) {
	r := NewResolver(newFakeCache())

	// 78745 is not in the exact table; prefix 787 is Austin.
	coord, err := r.Resolve(context.Background(), "78745")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if coord.Source != model.SourceApproximated {
		t.Errorf("source = %q, want %q", coord.Source, model.SourceApproximated)
	}
	if coord.State != "TX" {
		t.Errorf("state = %q, want TX", coord.State)
	}
}

func TestResolveUnknown(t *testing.T) {
	r := NewResolver(newFakeCache())

	if _, err := r.Resolve(context.Background(), "99999"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Resolve(99999) error = %v, want ErrNotFound", err)
	}
}

func TestResolveIdempotent(t *testing.T) {
	cache := newFakeCache()
	r := NewResolver(cache)
	ctx := context.Background()

	first, err := r.Resolve(ctx, "78701")
	if err != nil {
		t.Fatalf("first Resolve() error = %v", err)
	}
	second, err := r.Resolve(ctx, "78701")
	if err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}

	if first.Latitude != second.Latitude || first.Longitude != second.Longitude {
		t.Errorf("coordinates changed across calls: %v,%v vs %v,%v",
			first.Latitude, first.Longitude, second.Latitude, second.Longitude)
	}
	if second.Source != model.SourceCached {
		t.Errorf("second source = %q, want %q", second.Source, model.SourceCached)
	}
	if cache.puts != 1 {
		t.Errorf("cache writes = %d, want 1", cache.puts)
	}
}

func TestResolveSurvivesCacheFailures(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")
	cache.putErr = errors.New("connection refused")
	r := NewResolver(cache)

	coord, err := r.Resolve(context.Background(), "78701")
	if err != nil {
		t.Fatalf("Resolve() error = %v, want success despite cache failures", err)
	}
	if coord.Source != model.SourceSeeded {
		t.Errorf("source = %q, want %q", coord.Source, model.SourceSeeded)
	}
}

func TestResolveSkipsMalformedCacheEntry(t *testing.T) {
	cache := newFakeCache()
	cache.entries["78701"] = model.ZipCoordinate{PostalCode: "78701", CreatedAt: time.Now()}
	r := NewResolver(cache)

	coord, err := r.Resolve(context.Background(), "78701")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if coord.Latitude == 0 && coord.Longitude == 0 {
		t.Error("resolver returned the malformed zero-coordinate cache entry")
	}
	if coord.Source != model.SourceSeeded {
		t.Errorf("source = %q, want %q", coord.Source, model.SourceSeeded)
	}
}
