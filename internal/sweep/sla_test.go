package sweep

import (
	"context"
	"testing"
	"time"

	"github.com/pure-justin/power-to-the-people-sub003/internal/model"
	"github.com/pure-justin/power-to-the-people-sub003/internal/service"
	"github.com/pure-justin/power-to-the-people-sub003/internal/slapolicy"
	"github.com/pure-justin/power-to-the-people-sub003/internal/store"
)

// assignListing creates a listing, places a bid, and accepts it, returning
// the assigned listing and the accepted bid ID.
func assignListing(t *testing.T, svc *service.Service, st *store.MemoryStore, poster, worker string) (model.Listing, string) {
	t.Helper()
	ctx := context.Background()

	seedWorker(t, st, worker)
	listing := newListing(t, svc, poster)
	bid, err := svc.SubmitBid(ctx, worker, listing.ID, model.SubmitBidRequest{Price: 800, ProposedDays: 7})
	if err != nil {
		t.Fatalf("SubmitBid: %v", err)
	}
	assigned, err := svc.AcceptBid(ctx, poster, listing.ID, bid.ID)
	if err != nil {
		t.Fatalf("AcceptBid: %v", err)
	}
	return assigned, bid.ID
}

// backdateAssignment moves an assignment into the past so the deadline has
// elapsed. Panel installs get 14 days, so 16 days back is ~48h overdue.
func backdateAssignment(t *testing.T, st *store.MemoryStore, listingID string, ago time.Duration) {
	t.Helper()
	ctx := context.Background()
	listing, err := st.GetListing(ctx, listingID)
	if err != nil || listing == nil {
		t.Fatalf("GetListing(%s): %v", listingID, err)
	}
	past := time.Now().UTC().Add(-ago)
	listing.AssignedAt = &past
	if err := st.UpdateListing(ctx, *listing); err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}
}

func TestSLASweepNotOverdue(t *testing.T) {
	svc, st, dispatcher := newTestEnv(t)
	listing, _ := assignListing(t, svc, st, "cust_1", "wrk_1")

	sum, err := NewSLASweep(svc, st, slapolicy.NewTablePolicy(), dispatcher).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Processed != 1 || sum.NotOverdue != 1 || sum.Warned != 0 {
		t.Errorf("summary = %+v, want one not-overdue", sum)
	}

	stored, _ := st.GetListing(context.Background(), listing.ID)
	if stored.SLAWarningSent {
		t.Error("warning sent for a listing within its deadline")
	}
}

func TestSLASweepWarnsExactlyOnce(t *testing.T) {
	svc, st, dispatcher := newTestEnv(t)
	ctx := context.Background()

	listing, _ := assignListing(t, svc, st, "cust_1", "wrk_1")
	backdateAssignment(t, st, listing.ID, 16*24*time.Hour)

	sweep := NewSLASweep(svc, st, slapolicy.NewTablePolicy(), dispatcher)

	sum, err := sweep.Run(ctx)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if sum.Warned != 1 {
		t.Fatalf("first run warned = %d, want 1", sum.Warned)
	}

	stored, _ := st.GetListing(ctx, listing.ID)
	if !stored.SLAWarningSent || stored.SLAWarningSentAt == nil {
		t.Fatal("warning flag not persisted")
	}

	// A second run inside the grace period must not warn again or escalate.
	sum, err = sweep.Run(ctx)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if sum.Warned != 0 || sum.Violated != 0 || sum.InGrace != 1 {
		t.Errorf("second run summary = %+v, want one in-grace", sum)
	}
}

func TestSLASweepViolatesAfterGrace(t *testing.T) {
	svc, st, dispatcher := newTestEnv(t)
	ctx := context.Background()

	listing, bidID := assignListing(t, svc, st, "cust_1", "wrk_1")
	backdateAssignment(t, st, listing.ID, 16*24*time.Hour)

	// Warning already sent, grace expired.
	stored, _ := st.GetListing(ctx, listing.ID)
	warnedAt := time.Now().UTC().Add(-WarningGrace - time.Hour)
	stored.SLAWarningSent = true
	stored.SLAWarningSentAt = &warnedAt
	if err := st.UpdateListing(ctx, *stored); err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}

	sum, err := NewSLASweep(svc, st, slapolicy.NewTablePolicy(), dispatcher).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Violated != 1 {
		t.Fatalf("violated = %d, want 1", sum.Violated)
	}

	reopened, _ := st.GetListing(ctx, listing.ID)
	if reopened.Status != model.ListingStatusOpen {
		t.Errorf("status = %s, want OPEN after requeue", reopened.Status)
	}
	if reopened.WinningBid != nil || reopened.SLAWarningSent {
		t.Errorf("requeue did not reset award and warning state: %+v", reopened)
	}

	rejected, _ := st.GetBid(ctx, bidID)
	if rejected.Status != model.BidStatusRejected {
		t.Errorf("bid status = %s, want REJECTED", rejected.Status)
	}

	violations, err := st.ListViolationsByWorker(ctx, "wrk_1")
	if err != nil {
		t.Fatalf("ListViolationsByWorker: %v", err)
	}
	if len(violations) != 1 {
		t.Fatalf("violations = %d, want 1", len(violations))
	}
	if violations[0].Type != "missed_deadline" || violations[0].ListingID != listing.ID {
		t.Errorf("violation = %+v", violations[0])
	}
}

func TestSLASweepUnevaluable(t *testing.T) {
	svc, st, dispatcher := newTestEnv(t)
	ctx := context.Background()

	listing, _ := assignListing(t, svc, st, "cust_1", "wrk_1")

	// Legacy record with no assignment timestamp.
	stored, _ := st.GetListing(ctx, listing.ID)
	stored.AssignedAt = nil
	if err := st.UpdateListing(ctx, *stored); err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}

	sum, err := NewSLASweep(svc, st, slapolicy.NewTablePolicy(), dispatcher).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Unevaluable != 1 || sum.NotOverdue != 0 {
		t.Errorf("summary = %+v, want one unevaluable, distinct from not-overdue", sum)
	}
}

func TestSLASweepHonorsScheduledFor(t *testing.T) {
	svc, st, dispatcher := newTestEnv(t)
	ctx := context.Background()

	listing, _ := assignListing(t, svc, st, "cust_1", "wrk_1")
	backdateAssignment(t, st, listing.ID, 16*24*time.Hour)

	// A scheduled date in the future extends the effective deadline.
	stored, _ := st.GetListing(ctx, listing.ID)
	future := time.Now().UTC().Add(48 * time.Hour)
	stored.ScheduledFor = &future
	if err := st.UpdateListing(ctx, *stored); err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}

	sum, err := NewSLASweep(svc, st, slapolicy.NewTablePolicy(), dispatcher).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.NotOverdue != 1 || sum.Warned != 0 {
		t.Errorf("summary = %+v, want not-overdue thanks to the scheduled date", sum)
	}
}
