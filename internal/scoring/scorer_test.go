package scoring

import (
	"math"
	"testing"

	"github.com/pure-justin/power-to-the-people-sub003/internal/model"
)

func f64(v float64) *float64 { return &v }

func TestPriceFactor(t *testing.T) {
	budget := func(min, max float64) *model.Listing {
		return &model.Listing{Budget: model.Budget{Min: min, Max: max}}
	}

	tests := []struct {
		name    string
		price   float64
		listing *model.Listing
		want    float64
	}{
		{"at budget min", 500, budget(500, 1500), 1.0},
		{"at budget max", 1500, budget(500, 1500), 0.0},
		{"midpoint", 1500, budget(1000, 2000), 0.5},
		{"below min clamps to one", 200, budget(500, 1500), 1.0},
		{"above max clamps to zero", 2000, budget(500, 1500), 0.0},
		{"no budget is neutral", 800, &model.Listing{}, 0.5},
		{"degenerate range at or under", 1000, budget(1000, 1000), 1.0},
		{"degenerate range over", 1001, budget(1000, 1000), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := priceFactor(tt.price, tt.listing)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("priceFactor(%v) = %v, want %v", tt.price, got, tt.want)
			}
		})
	}
}

func TestFactorNormalization(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"rating five stars", ratingFactor(5.0), 1.0},
		{"rating three stars", ratingFactor(3.0), 0.6},
		{"unrated is neutral", ratingFactor(0), 0.5},
		{"proximity at listing", proximityFactor(f64(0)), 1.0},
		{"proximity halfway to cap", proximityFactor(f64(50)), 0.5},
		{"proximity past cap clamps", proximityFactor(f64(250)), 0.0},
		{"proximity unknown is worst case", proximityFactor(nil), 0.0},
		{"speed immediate", speedFactor(1), 1.0 - 1.0/30.0},
		{"speed at cap", speedFactor(30), 0.0},
		{"speed past cap clamps", speedFactor(45), 0.0},
		{"speed missing is worst case", speedFactor(0), 0.0},
		{"availability idle", availabilityFactor(0), 1.0},
		{"availability saturated", availabilityFactor(5), 0.0},
		{"availability oversubscribed clamps", availabilityFactor(9), 0.0},
		{"experience none", experienceFactor(0), 0.0},
		{"experience at cap", experienceFactor(50), 1.0},
		{"experience past cap clamps", experienceFactor(120), 1.0},
		{"reliability perfect", reliabilityFactor(100), 1.0},
		{"reliability unknown is neutral", reliabilityFactor(0), 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 1e-9 {
				t.Errorf("factor = %v, want %v", tt.got, tt.want)
			}
		})
	}
}

// A cheap bid from a low-rated worker must outrank an expensive bid from a
// top-rated worker under the default weights when the spread is wide enough.
func TestScorePriceBeatsRating(t *testing.T) {
	listing := &model.Listing{
		ServiceType: model.ServicePanelInstall,
		Budget:      model.Budget{Min: 500, Max: 1500},
	}

	cheapBid := &model.Bid{Price: 600, ProposedDays: 7, DistanceMiles: f64(10)}
	cheapWorker := &model.WorkerProfile{Ratings: model.WorkerRatings{Overall: 1.0}}

	pricyBid := &model.Bid{Price: 1400, ProposedDays: 7, DistanceMiles: f64(10)}
	pricyWorker := &model.WorkerProfile{Ratings: model.WorkerRatings{Overall: 5.0}}

	cheapScore, _ := Score(cheapBid, listing, cheapWorker, DefaultWeights())
	pricyScore, _ := Score(pricyBid, listing, pricyWorker, DefaultWeights())

	if cheapScore <= pricyScore {
		t.Errorf("cheap bid scored %v, expensive bid scored %v; want cheap > expensive", cheapScore, pricyScore)
	}
}

func TestScoreBreakdownMatchesTotal(t *testing.T) {
	listing := &model.Listing{
		ServiceType: model.ServicePanelInstall,
		Budget:      model.Budget{Min: 1000, Max: 2000},
	}
	bid := &model.Bid{Price: 1400, ProposedDays: 10, DistanceMiles: f64(25)}
	worker := &model.WorkerProfile{
		Ratings:          model.WorkerRatings{Overall: 4.2},
		ActiveTasks:      2,
		CompletedByType:  map[model.ServiceType]int{model.ServicePanelInstall: 30},
		ReliabilityScore: 88,
	}

	w := DefaultWeights()
	total, b := Score(bid, listing, worker, w)

	recomputed := w.Price*b.Price + w.Rating*b.Rating + w.Proximity*b.Proximity +
		w.Speed*b.Speed + w.Availability*b.Availability +
		w.Experience*b.Experience + w.Reliability*b.Reliability
	if math.Abs(total-recomputed) > 1e-9 {
		t.Errorf("total %v does not match breakdown sum %v", total, recomputed)
	}
	if total < 0 || total > 1 {
		t.Errorf("total %v outside [0,1] with default weights", total)
	}

	for name, factor := range map[string]float64{
		"price": b.Price, "rating": b.Rating, "proximity": b.Proximity,
		"speed": b.Speed, "availability": b.Availability,
		"experience": b.Experience, "reliability": b.Reliability,
	} {
		if factor < 0 || factor > 1 {
			t.Errorf("%s factor %v outside [0,1]", name, factor)
		}
	}
}

func TestScoreUsesPerTypeExperience(t *testing.T) {
	listing := &model.Listing{
		ServiceType: model.ServiceRoofRepair,
		Budget:      model.Budget{Min: 100, Max: 200},
	}
	bid := &model.Bid{Price: 150, ProposedDays: 3}

	// 40 panel installs but zero roof repairs: per-type count wins.
	specialist := &model.WorkerProfile{
		CompletedByType: map[model.ServiceType]int{model.ServicePanelInstall: 40},
		CompletedJobs:   40,
	}
	_, b := Score(bid, listing, specialist, DefaultWeights())
	if b.Experience != 0 {
		t.Errorf("experience factor = %v, want 0 for worker with no roof repairs", b.Experience)
	}

	// Legacy profile with only a flat total falls back to it.
	legacy := &model.WorkerProfile{CompletedJobs: 25}
	_, b = Score(bid, listing, legacy, DefaultWeights())
	if b.Experience != 0.5 {
		t.Errorf("experience factor = %v, want 0.5 from flat total fallback", b.Experience)
	}
}

func TestWeightsResolve(t *testing.T) {
	defaults := DefaultWeights()

	tests := []struct {
		name string
		cfg  WeightsConfig
		want Weights
	}{
		{
			name: "empty config resolves to defaults",
			cfg:  WeightsConfig{},
			want: defaults,
		},
		{
			name: "partial override keeps other defaults",
			cfg:  WeightsConfig{Price: f64(0.5), Proximity: f64(0.05)},
			want: Weights{
				Price:        0.5,
				Rating:       defaults.Rating,
				Proximity:    0.05,
				Speed:        defaults.Speed,
				Availability: defaults.Availability,
				Experience:   defaults.Experience,
				Reliability:  defaults.Reliability,
			},
		},
		{
			name: "explicit zero is honored",
			cfg:  WeightsConfig{Speed: f64(0)},
			want: Weights{
				Price:        defaults.Price,
				Rating:       defaults.Rating,
				Proximity:    defaults.Proximity,
				Speed:        0,
				Availability: defaults.Availability,
				Experience:   defaults.Experience,
				Reliability:  defaults.Reliability,
			},
		},
		{
			name: "negative override is ignored",
			cfg:  WeightsConfig{Rating: f64(-0.3)},
			want: defaults,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Resolve(); got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWeightsValidate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Errorf("default weights failed validation: %v", err)
	}

	skewed := Weights{Price: 0.9, Rating: 0.9}
	if err := skewed.Validate(); err == nil {
		t.Error("expected validation warning for weights summing to 1.8")
	}
}
