package sweep

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/pure-justin/power-to-the-people-sub003/internal/model"
	"github.com/pure-justin/power-to-the-people-sub003/internal/notify"
	"github.com/pure-justin/power-to-the-people-sub003/internal/service"
	"github.com/pure-justin/power-to-the-people-sub003/internal/slapolicy"
	"github.com/pure-justin/power-to-the-people-sub003/internal/store"
)

const (
	// DefaultSLAInterval is the design cadence of the SLA sweep.
	DefaultSLAInterval = time.Hour
	// WarningGrace is how long a warned worker has before the listing is
	// requeued.
	WarningGrace = 24 * time.Hour
)

// SLASummary is the per-run outcome count. Unevaluable counts assigned
// listings with no accepted-at timestamp, kept separate from true negatives.
type SLASummary struct {
	Processed   int `json:"processed"`
	Warned      int `json:"warned"`
	Violated    int `json:"violated"`
	InGrace     int `json:"in_grace"`
	NotOverdue  int `json:"not_overdue"`
	Unevaluable int `json:"unevaluable"`
	Failed      int `json:"failed"`
}

// SLASweep escalates assigned listings through warning, grace, and violation
// with automatic requeue.
type SLASweep struct {
	svc        *service.Service
	store      store.Store
	policy     slapolicy.Provider
	dispatcher *notify.Dispatcher
}

func NewSLASweep(svc *service.Service, st store.Store, policy slapolicy.Provider, dispatcher *notify.Dispatcher) *SLASweep {
	return &SLASweep{svc: svc, store: st, policy: policy, dispatcher: dispatcher}
}

// Run inspects every assigned listing once. Failures are isolated per
// listing. The warning transition is guarded by the stored flag, so a sweep
// retried or run twice warns exactly once.
func (s *SLASweep) Run(ctx context.Context) (SLASummary, error) {
	assigned, err := s.store.ListListingsByStatus(ctx, model.ListingStatusAssigned, 0)
	if err != nil {
		return SLASummary{}, fmt.Errorf("list assigned listings: %w", err)
	}

	now := time.Now().UTC()
	var sum SLASummary
	for _, listing := range assigned {
		sum.Processed++
		if err := s.inspect(ctx, listing, now, &sum); err != nil {
			sum.Failed++
			slog.ErrorContext(ctx, "sla_inspect_failed", "listing_id", listing.ID, "error", err)
		}
	}

	slog.InfoContext(ctx, "sla_sweep_completed",
		"processed", sum.Processed,
		"warned", sum.Warned,
		"violated", sum.Violated,
		"in_grace", sum.InGrace,
		"not_overdue", sum.NotOverdue,
		"unevaluable", sum.Unevaluable,
		"failed", sum.Failed,
	)
	return sum, nil
}

func (s *SLASweep) inspect(ctx context.Context, listing model.Listing, now time.Time, sum *SLASummary) error {
	if listing.AssignedAt == nil {
		sum.Unevaluable++
		return nil
	}

	verdict := s.policy.Evaluate(listing.ServiceType, *listing.AssignedAt, listing.ScheduledFor, now)
	if !verdict.Overdue {
		sum.NotOverdue++
		return nil
	}

	workerID := ""
	if listing.WinningBid != nil {
		workerID = listing.WinningBid.WorkerID
	}

	if !listing.SLAWarningSent {
		return s.warn(ctx, listing, workerID, verdict, now, sum)
	}

	if listing.SLAWarningSentAt != nil && now.Sub(*listing.SLAWarningSentAt) < WarningGrace {
		sum.InGrace++
		return nil
	}

	return s.violate(ctx, listing, workerID, verdict, now, sum)
}

func (s *SLASweep) warn(ctx context.Context, listing model.Listing, workerID string, verdict slapolicy.Verdict, now time.Time, sum *SLASummary) error {
	listing.SLAWarningSent = true
	listing.SLAWarningSentAt = &now
	listing.UpdatedAt = now
	if err := s.store.UpdateListing(ctx, listing); err != nil {
		return fmt.Errorf("mark warning sent: %w", err)
	}

	_ = s.dispatcher.Send(ctx, "sms", workerID,
		fmt.Sprintf("Listing %s is %.1f hours past its service deadline. Complete it within 24 hours or it will be reassigned.", listing.ID, verdict.HoursOverdue))
	_ = s.dispatcher.Publish(ctx, notify.EventSLAWarning, map[string]any{
		"listing_id":    listing.ID,
		"worker_id":     workerID,
		"hours_overdue": verdict.HoursOverdue,
	})

	sum.Warned++
	slog.InfoContext(ctx, "sla_warning_sent",
		"listing_id", listing.ID,
		"worker_id", workerID,
		"hours_overdue", verdict.HoursOverdue,
	)
	return nil
}

func (s *SLASweep) violate(ctx context.Context, listing model.Listing, workerID string, verdict slapolicy.Verdict, now time.Time, sum *SLASummary) error {
	rec := model.SlaViolationRecord{
		ID:         "slv_" + generateHex(),
		WorkerID:   workerID,
		ListingID:  listing.ID,
		Type:       "missed_deadline",
		ReportedBy: "sla_sweep",
		Details:    fmt.Sprintf("%.1f hours past deadline, grace expired", verdict.HoursOverdue),
		CreatedAt:  now,
	}
	if err := s.store.SaveViolation(ctx, rec); err != nil {
		return fmt.Errorf("save violation: %w", err)
	}

	if _, err := s.svc.RequeueListing(ctx, listing.ID, workerID, "sla_violation"); err != nil {
		return fmt.Errorf("requeue: %w", err)
	}

	_ = s.dispatcher.Publish(ctx, notify.EventSLAViolated, map[string]any{
		"listing_id":    listing.ID,
		"worker_id":     workerID,
		"violation_id":  rec.ID,
		"hours_overdue": verdict.HoursOverdue,
	})

	sum.Violated++
	slog.InfoContext(ctx, "sla_violation_recorded",
		"listing_id", listing.ID,
		"worker_id", workerID,
		"violation_id", rec.ID,
	)
	return nil
}

func generateHex() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:8])
}
