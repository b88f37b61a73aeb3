package scoring

import (
	"fmt"
	"math"
)

// Weights are the seven multipliers applied to the normalized scoring factors.
// They are intended to sum to 1.0 but that is deliberately not enforced:
// operators may over- or under-weight, and consumers must tolerate totals
// outside [0,1].
type Weights struct {
	Price        float64 `json:"price" bson:"price" firestore:"price" yaml:"price"`
	Rating       float64 `json:"rating" bson:"rating" firestore:"rating" yaml:"rating"`
	Proximity    float64 `json:"proximity" bson:"proximity" firestore:"proximity" yaml:"proximity"`
	Speed        float64 `json:"speed" bson:"speed" firestore:"speed" yaml:"speed"`
	Availability float64 `json:"availability" bson:"availability" firestore:"availability" yaml:"availability"`
	Experience   float64 `json:"experience" bson:"experience" firestore:"experience" yaml:"experience"`
	Reliability  float64 `json:"reliability" bson:"reliability" firestore:"reliability" yaml:"reliability"`
}

// WeightsConfig is the stored form of Weights. Fields left unset fall back to
// the compiled-in default individually, so a partial document is valid.
type WeightsConfig struct {
	Price        *float64 `json:"price,omitempty" bson:"price,omitempty" firestore:"price,omitempty" yaml:"price,omitempty"`
	Rating       *float64 `json:"rating,omitempty" bson:"rating,omitempty" firestore:"rating,omitempty" yaml:"rating,omitempty"`
	Proximity    *float64 `json:"proximity,omitempty" bson:"proximity,omitempty" firestore:"proximity,omitempty" yaml:"proximity,omitempty"`
	Speed        *float64 `json:"speed,omitempty" bson:"speed,omitempty" firestore:"speed,omitempty" yaml:"speed,omitempty"`
	Availability *float64 `json:"availability,omitempty" bson:"availability,omitempty" firestore:"availability,omitempty" yaml:"availability,omitempty"`
	Experience   *float64 `json:"experience,omitempty" bson:"experience,omitempty" firestore:"experience,omitempty" yaml:"experience,omitempty"`
	Reliability  *float64 `json:"reliability,omitempty" bson:"reliability,omitempty" firestore:"reliability,omitempty" yaml:"reliability,omitempty"`
}

// DefaultWeights returns the compiled-in weights. These sum to 1.0.
func DefaultWeights() Weights {
	return Weights{
		Price:        0.25,
		Rating:       0.20,
		Proximity:    0.15,
		Speed:        0.10,
		Availability: 0.10,
		Experience:   0.10,
		Reliability:  0.10,
	}
}

// Resolve fills unset fields from the defaults, field by field.
func (c WeightsConfig) Resolve() Weights {
	w := DefaultWeights()
	apply := func(dst *float64, src *float64) {
		if src != nil && *src >= 0 {
			*dst = *src
		}
	}
	apply(&w.Price, c.Price)
	apply(&w.Rating, c.Rating)
	apply(&w.Proximity, c.Proximity)
	apply(&w.Speed, c.Speed)
	apply(&w.Availability, c.Availability)
	apply(&w.Experience, c.Experience)
	apply(&w.Reliability, c.Reliability)
	return w
}

// Sum returns the total of all seven weights.
func (w Weights) Sum() float64 {
	return w.Price + w.Rating + w.Proximity + w.Speed +
		w.Availability + w.Experience + w.Reliability
}

// Validate warns when the weights do not sum to 1.0. Callers log the warning
// and continue; misconfigured weights still rank, just with out-of-range
// totals.
func (w Weights) Validate() error {
	if sum := w.Sum(); math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("weights sum to %.3f, expected 1.0; total scores may fall outside [0,1]", sum)
	}
	return nil
}
