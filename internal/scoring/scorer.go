package scoring

import (
	"math"

	"github.com/pure-justin/power-to-the-people-sub003/internal/model"
)

const (
	// ProximityCapMiles is the distance at which the proximity factor reaches
	// zero. Missing distances score as if at the cap.
	ProximityCapMiles = 100.0
	// SpeedCapDays is the proposed timeline at which the speed factor reaches
	// zero.
	SpeedCapDays = 30.0
	// AvailabilityCapTasks is the active-task count at which the availability
	// factor reaches zero.
	AvailabilityCapTasks = 5.0
	// ExperienceCapJobs is the completion count that earns a full experience
	// factor.
	ExperienceCapJobs = 50.0
)

// Score computes the weighted quality score for one bid against one listing
// and one worker profile. Each factor is normalized to [0,1] before weighting;
// the total is the weighted sum and is only guaranteed to land in [0,1] when
// the weights sum to 1. Pure: no I/O, no rank assignment.
func Score(bid *model.Bid, listing *model.Listing, worker *model.WorkerProfile, w Weights) (float64, model.ScoreBreakdown) {
	b := model.ScoreBreakdown{
		Price:        priceFactor(bid.Price, listing),
		Rating:       ratingFactor(worker.Ratings.Overall),
		Proximity:    proximityFactor(bid.DistanceMiles),
		Speed:        speedFactor(bid.ProposedDays),
		Availability: availabilityFactor(worker.ActiveTasks),
		Experience:   experienceFactor(worker.CompletedOf(listing.ServiceType)),
		Reliability:  reliabilityFactor(worker.ReliabilityScore),
	}

	total := w.Price*b.Price +
		w.Rating*b.Rating +
		w.Proximity*b.Proximity +
		w.Speed*b.Speed +
		w.Availability*b.Availability +
		w.Experience*b.Experience +
		w.Reliability*b.Reliability

	return total, b
}

// priceFactor is 1.0 at budget min, 0.0 at budget max, clamped outside the
// range. A degenerate range (min == max) is binary. No budget scores neutral.
func priceFactor(price float64, listing *model.Listing) float64 {
	if !listing.HasBudget() {
		return 0.5
	}
	min, max := listing.Budget.Min, listing.Budget.Max
	if min == max {
		if price <= min {
			return 1.0
		}
		return 0.0
	}
	return clamp01((max - price) / (max - min))
}

func ratingFactor(overall float64) float64 {
	if overall <= 0 {
		return 0.5 // new-worker neutrality
	}
	return clamp01(overall / 5.0)
}

func proximityFactor(distanceMiles *float64) float64 {
	d := ProximityCapMiles // missing distance scores worst case
	if distanceMiles != nil {
		d = *distanceMiles
	}
	return clamp01(1.0 - d/ProximityCapMiles)
}

func speedFactor(proposedDays int) float64 {
	d := SpeedCapDays // missing timeline scores worst case
	if proposedDays > 0 {
		d = float64(proposedDays)
	}
	return clamp01(1.0 - d/SpeedCapDays)
}

func availabilityFactor(activeTasks int) float64 {
	return clamp01(1.0 - float64(activeTasks)/AvailabilityCapTasks)
}

func experienceFactor(completed int) float64 {
	return clamp01(float64(completed) / ExperienceCapJobs)
}

func reliabilityFactor(score float64) float64 {
	if score <= 0 {
		return 0.5
	}
	return clamp01(score / 100.0)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0.0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
