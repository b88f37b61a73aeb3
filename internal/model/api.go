package model

import "time"

// CreateListingRequest is the payload for posting a listing.
type CreateListingRequest struct {
	ServiceType    ServiceType `json:"service_type"`
	Description    string      `json:"description"`
	Budget         *Budget     `json:"budget,omitempty"`
	Location       *Location   `json:"location,omitempty"`
	BidWindowHours int         `json:"bid_window_hours,omitempty"`
	ScheduledFor   *time.Time  `json:"scheduled_for,omitempty"`
}

// SubmitBidRequest is the payload for bidding on a listing.
type SubmitBidRequest struct {
	Price        float64 `json:"price"`
	ProposedDays int     `json:"proposed_days,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

// AutoAcceptResult reports the outcome of an automatic award attempt.
type AutoAcceptResult struct {
	Accepted bool    `json:"accepted"`
	BidID    string  `json:"bid_id,omitempty"`
	WorkerID string  `json:"worker_id,omitempty"`
	Score    float64 `json:"score,omitempty"`
}
