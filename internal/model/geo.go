package model

import "time"

// CoordinateSource records how a zip coordinate was obtained
type CoordinateSource string

const (
	SourceCached       CoordinateSource = "cached"
	SourceSeeded       CoordinateSource = "seeded"
	SourceApproximated CoordinateSource = "approximated"
)

// ZipCoordinate is an approximate centroid for a postal code. Immutable once
// written; the zip cache is populated lazily on first lookup.
type ZipCoordinate struct {
	PostalCode string           `json:"postal_code" bson:"postal_code" firestore:"postal_code"`
	Latitude   float64          `json:"latitude" bson:"latitude" firestore:"latitude"`
	Longitude  float64          `json:"longitude" bson:"longitude" firestore:"longitude"`
	City       string           `json:"city,omitempty" bson:"city,omitempty" firestore:"city,omitempty"`
	State      string           `json:"state,omitempty" bson:"state,omitempty" firestore:"state,omitempty"`
	Source     CoordinateSource `json:"source" bson:"source" firestore:"source"`
	CreatedAt  time.Time        `json:"created_at" bson:"created_at" firestore:"created_at"`
}
