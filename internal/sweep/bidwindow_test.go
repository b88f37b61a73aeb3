package sweep

import (
	"context"
	"testing"
	"time"

	"github.com/pure-justin/power-to-the-people-sub003/internal/geo"
	"github.com/pure-justin/power-to-the-people-sub003/internal/model"
	"github.com/pure-justin/power-to-the-people-sub003/internal/notify"
	"github.com/pure-justin/power-to-the-people-sub003/internal/service"
	"github.com/pure-justin/power-to-the-people-sub003/internal/store"
)

func newTestEnv(t *testing.T) (*service.Service, *store.MemoryStore, *notify.Dispatcher) {
	t.Helper()
	st := store.NewMemoryStore()
	dispatcher := notify.NewDispatcher("test")
	return service.New(st, geo.NewResolver(st), dispatcher), st, dispatcher
}

func seedWorker(t *testing.T, st *store.MemoryStore, id string) {
	t.Helper()
	err := st.SaveWorker(context.Background(), model.WorkerProfile{
		ID:           id,
		Name:         id,
		Availability: model.WorkerAvailable,
		Ratings:      model.WorkerRatings{Overall: 4.0, Count: 10},
	})
	if err != nil {
		t.Fatalf("SaveWorker(%s): %v", id, err)
	}
}

func newListing(t *testing.T, svc *service.Service, poster string) model.Listing {
	t.Helper()
	listing, err := svc.CreateListing(context.Background(), poster, model.CreateListingRequest{
		ServiceType: model.ServicePanelInstall,
		Budget:      &model.Budget{Min: 500, Max: 1500},
	})
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	return listing
}

// expireWindow backdates a listing's bid window so the sweep sees it.
func expireWindow(t *testing.T, st *store.MemoryStore, listingID string) {
	t.Helper()
	ctx := context.Background()
	listing, err := st.GetListing(ctx, listingID)
	if err != nil || listing == nil {
		t.Fatalf("GetListing(%s): %v", listingID, err)
	}
	listing.BidWindowClosesAt = time.Now().UTC().Add(-time.Hour)
	if err := st.UpdateListing(ctx, *listing); err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}
}

func TestBidWindowSweepSkipsUnexpired(t *testing.T) {
	svc, st, _ := newTestEnv(t)
	ctx := context.Background()

	listing := newListing(t, svc, "cust_1")

	sum, err := NewBidWindowSweep(svc, st).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Processed != 0 {
		t.Errorf("processed = %d, want 0 for a listing whose window has not elapsed", sum.Processed)
	}

	stored, _ := st.GetListing(ctx, listing.ID)
	if stored.Status != model.ListingStatusOpen || stored.BidWindowExtensions != 0 {
		t.Errorf("unexpired listing was touched: %+v", stored)
	}
}

func TestBidWindowSweepAcceptsTopBid(t *testing.T) {
	svc, st, _ := newTestEnv(t)
	ctx := context.Background()

	seedWorker(t, st, "wrk_cheap")
	seedWorker(t, st, "wrk_pricy")
	listing := newListing(t, svc, "cust_1")

	if _, err := svc.SubmitBid(ctx, "wrk_pricy", listing.ID, model.SubmitBidRequest{Price: 1400, ProposedDays: 7}); err != nil {
		t.Fatalf("SubmitBid: %v", err)
	}
	best, err := svc.SubmitBid(ctx, "wrk_cheap", listing.ID, model.SubmitBidRequest{Price: 600, ProposedDays: 7})
	if err != nil {
		t.Fatalf("SubmitBid: %v", err)
	}
	expireWindow(t, st, listing.ID)

	sum, err := NewBidWindowSweep(svc, st).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Processed != 1 || sum.Accepted != 1 || sum.Extended != 0 || sum.Failed != 0 {
		t.Errorf("summary = %+v, want one accepted", sum)
	}

	stored, _ := st.GetListing(ctx, listing.ID)
	if stored.Status != model.ListingStatusAssigned {
		t.Errorf("status = %s, want ASSIGNED", stored.Status)
	}
	if stored.WinningBid == nil || stored.WinningBid.BidID != best.ID {
		t.Errorf("winning bid = %+v, want %s", stored.WinningBid, best.ID)
	}
}

func TestBidWindowSweepExtendsWhenNoBids(t *testing.T) {
	svc, st, _ := newTestEnv(t)
	ctx := context.Background()

	listing := newListing(t, svc, "cust_1")
	expireWindow(t, st, listing.ID)

	sum, err := NewBidWindowSweep(svc, st).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Processed != 1 || sum.Extended != 1 || sum.Accepted != 0 {
		t.Errorf("summary = %+v, want one extended", sum)
	}

	stored, _ := st.GetListing(ctx, listing.ID)
	if stored.Status != model.ListingStatusOpen {
		t.Errorf("status = %s, want still OPEN", stored.Status)
	}
	if stored.BidWindowExtensions != 1 {
		t.Errorf("extensions = %d, want 1", stored.BidWindowExtensions)
	}
	if !stored.BidWindowClosesAt.After(time.Now()) {
		t.Errorf("window not pushed out: closes at %v", stored.BidWindowClosesAt)
	}

	// An extended listing is out of scope for the immediately following run.
	sum, err = NewBidWindowSweep(svc, st).Run(ctx)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if sum.Processed != 0 {
		t.Errorf("second run processed = %d, want 0", sum.Processed)
	}
}

// phantomLister injects a listing that no longer exists ahead of the real
// expired set, simulating a record deleted between listing and processing.
type phantomLister struct {
	*store.MemoryStore
}

func (l *phantomLister) ListOpenClosedBefore(ctx context.Context, at time.Time) ([]model.Listing, error) {
	real, err := l.MemoryStore.ListOpenClosedBefore(ctx, at)
	if err != nil {
		return nil, err
	}
	phantom := model.Listing{
		ID:                "lst_phantom",
		Status:            model.ListingStatusOpen,
		BidWindowClosesAt: at.Add(-time.Hour),
	}
	return append([]model.Listing{phantom}, real...), nil
}

func TestBidWindowSweepIsolatesFailures(t *testing.T) {
	svc, st, _ := newTestEnv(t)
	ctx := context.Background()

	seedWorker(t, st, "wrk_1")
	good := newListing(t, svc, "cust_1")

	if _, err := svc.SubmitBid(ctx, "wrk_1", good.ID, model.SubmitBidRequest{Price: 700, ProposedDays: 7}); err != nil {
		t.Fatalf("SubmitBid: %v", err)
	}
	expireWindow(t, st, good.ID)

	sum, err := NewBidWindowSweep(svc, &phantomLister{st}).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.Processed != 2 {
		t.Fatalf("processed = %d, want 2", sum.Processed)
	}
	if sum.Failed != 1 {
		t.Errorf("failed = %d, want 1 for the phantom listing", sum.Failed)
	}
	if sum.Accepted != 1 {
		t.Errorf("accepted = %d, want the healthy listing awarded despite the phantom", sum.Accepted)
	}

	goodStored, _ := st.GetListing(ctx, good.ID)
	if goodStored.Status != model.ListingStatusAssigned {
		t.Errorf("healthy listing status = %s, want ASSIGNED", goodStored.Status)
	}
}
