package model

import "time"

// WorkerAvailability represents whether a worker can take on new tasks
type WorkerAvailability string

const (
	WorkerAvailable WorkerAvailability = "AVAILABLE"
	WorkerBusy      WorkerAvailability = "BUSY"
	WorkerSuspended WorkerAvailability = "SUSPENDED"
)

// WorkerRatings aggregates customer feedback. Overall is on a 0-5 scale.
type WorkerRatings struct {
	Overall float64 `json:"overall" bson:"overall" firestore:"overall"`
	Count   int     `json:"count" bson:"count" firestore:"count"`
}

// WorkerProfile is a service provider. Ratings, reliability, and completion
// counts are maintained by collaborating subsystems; this core only reads them.
type WorkerProfile struct {
	ID           string             `json:"worker_id" bson:"id" firestore:"id"`
	Name         string             `json:"name" bson:"name" firestore:"name"`
	Skills       []ServiceType      `json:"skills" bson:"skills" firestore:"skills"`
	Availability WorkerAvailability `json:"availability" bson:"availability" firestore:"availability"`
	ActiveTasks  int                `json:"active_tasks" bson:"active_tasks" firestore:"active_tasks"`

	// CompletedByType carries per-service-type completion counts. Legacy
	// profiles predating the per-type rollup only have CompletedJobs.
	CompletedByType map[ServiceType]int `json:"completed_by_type,omitempty" bson:"completed_by_type,omitempty" firestore:"completed_by_type,omitempty"`
	CompletedJobs   int                 `json:"completed_jobs" bson:"completed_jobs" firestore:"completed_jobs"`

	Ratings          WorkerRatings `json:"ratings" bson:"ratings" firestore:"ratings"`
	ReliabilityScore float64       `json:"reliability_score" bson:"reliability_score" firestore:"reliability_score"` // 0-100

	Lat                *float64 `json:"lat,omitempty" bson:"lat,omitempty" firestore:"lat,omitempty"`
	Lng                *float64 `json:"lng,omitempty" bson:"lng,omitempty" firestore:"lng,omitempty"`
	PostalCode         string   `json:"postal_code,omitempty" bson:"postal_code,omitempty" firestore:"postal_code,omitempty"`
	ServiceRadiusMiles float64  `json:"service_radius_miles,omitempty" bson:"service_radius_miles,omitempty" firestore:"service_radius_miles,omitempty"`

	BlockedCustomers []string `json:"blocked_customers,omitempty" bson:"blocked_customers,omitempty" firestore:"blocked_customers,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" firestore:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" firestore:"updated_at"`
}

// HasBlocked reports whether the worker has block-listed the given customer.
func (w *WorkerProfile) HasBlocked(customerID string) bool {
	for _, id := range w.BlockedCustomers {
		if id == customerID {
			return true
		}
	}
	return false
}

// CompletedOf returns the worker's completion count for a service type,
// falling back to the flat total when per-type data is unavailable.
func (w *WorkerProfile) CompletedOf(t ServiceType) int {
	if len(w.CompletedByType) > 0 {
		return w.CompletedByType[t]
	}
	return w.CompletedJobs
}
