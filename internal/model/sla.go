package model

import "time"

// SlaViolationRecord is an append-only audit entry written when an assigned
// listing blows through its deadline and grace period.
type SlaViolationRecord struct {
	ID         string    `json:"violation_id" bson:"id" firestore:"id"`
	WorkerID   string    `json:"worker_id" bson:"worker_id" firestore:"worker_id"`
	ListingID  string    `json:"listing_id" bson:"listing_id" firestore:"listing_id"`
	Type       string    `json:"type" bson:"type" firestore:"type"`
	ReportedBy string    `json:"reported_by" bson:"reported_by" firestore:"reported_by"`
	Details    string    `json:"details" bson:"details" firestore:"details"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" firestore:"created_at"`
}
