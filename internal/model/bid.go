package model

import "time"

// BidStatus represents the lifecycle state of a bid
type BidStatus string

const (
	BidStatusPending  BidStatus = "PENDING"
	BidStatusAccepted BidStatus = "ACCEPTED"
	BidStatusRejected BidStatus = "REJECTED"
)

// ScoreBreakdown holds the seven normalized scoring factors, each in [0,1]
// before weighting.
type ScoreBreakdown struct {
	Price        float64 `json:"price" bson:"price" firestore:"price"`
	Rating       float64 `json:"rating" bson:"rating" firestore:"rating"`
	Proximity    float64 `json:"proximity" bson:"proximity" firestore:"proximity"`
	Speed        float64 `json:"speed" bson:"speed" firestore:"speed"`
	Availability float64 `json:"availability" bson:"availability" firestore:"availability"`
	Experience   float64 `json:"experience" bson:"experience" firestore:"experience"`
	Reliability  float64 `json:"reliability" bson:"reliability" firestore:"reliability"`
}

// Bid is a worker's proposed price and timeline for a listing.
type Bid struct {
	ID           string    `json:"bid_id" bson:"id" firestore:"id"`
	ListingID    string    `json:"listing_id" bson:"listing_id" firestore:"listing_id"`
	WorkerID     string    `json:"worker_id" bson:"worker_id" firestore:"worker_id"`
	Price        float64   `json:"price" bson:"price" firestore:"price"`
	ProposedDays int       `json:"proposed_days,omitempty" bson:"proposed_days,omitempty" firestore:"proposed_days,omitempty"`
	Notes        string    `json:"notes,omitempty" bson:"notes,omitempty" firestore:"notes,omitempty"`
	Status       BidStatus `json:"status" bson:"status" firestore:"status"`

	// DistanceMiles is computed at submission time when both the listing and
	// the worker have resolvable coordinates; nil otherwise.
	DistanceMiles *float64 `json:"distance_miles,omitempty" bson:"distance_miles,omitempty" firestore:"distance_miles,omitempty"`

	Score          *float64        `json:"score,omitempty" bson:"score,omitempty" firestore:"score,omitempty"`
	ScoreBreakdown *ScoreBreakdown `json:"score_breakdown,omitempty" bson:"score_breakdown,omitempty" firestore:"score_breakdown,omitempty"`

	SubmittedAt time.Time `json:"submitted_at" bson:"submitted_at" firestore:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at" firestore:"updated_at"`
}

// RankedBid is one entry in a ranking result, ordered best-first.
type RankedBid struct {
	Rank       int            `json:"rank"`
	BidID      string         `json:"bid_id"`
	WorkerID   string         `json:"worker_id"`
	Price      float64        `json:"price"`
	TotalScore float64        `json:"total_score"`
	Breakdown  ScoreBreakdown `json:"score_breakdown"`
}
