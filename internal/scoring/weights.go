package scoring

import "readiness-workers/internal/models"

// Weights maps a dimension to its normalized 0-1 importance.
type Weights map[models.Dimension]float64

// ImportanceThreshold is the normalized weight at which a dimension counts
// as an investor priority when generating reasoning.
const ImportanceThreshold = 0.2

// DefaultWeights apply to investors that never stated criteria weights.
var DefaultWeights = Weights{
	models.DimensionFinancial:   0.25,
	models.DimensionOperational: 0.20,
	models.DimensionMarket:      0.20,
	models.DimensionTechnology:  0.15,
	models.DimensionLegal:       0.10,
	models.DimensionStrategic:   0.10,
}

// NormalizeWeights is the single boundary where raw investor weights enter
// scoring. A nil map falls back to DefaultWeights. Negative weights become 0.
// If any weight exceeds 1 the whole map is read as a 1-10 scale and divided
// by 10.
func NormalizeWeights(raw map[models.Dimension]float64) Weights {
	if raw == nil {
		out := make(Weights, len(DefaultWeights))
		for d, w := range DefaultWeights {
			out[d] = w
		}
		return out
	}

	tenScale := false
	for _, w := range raw {
		if w > 1 {
			tenScale = true
			break
		}
	}

	out := make(Weights, len(raw))
	for d, w := range raw {
		if w < 0 {
			w = 0
		}
		if tenScale {
			w /= 10
		}
		out[d] = w
	}
	return out
}

// Important reports whether d is a priority for the investor.
func (w Weights) Important(d models.Dimension) bool {
	return w[d] >= ImportanceThreshold
}

// WithDefaults returns the weight for d, falling back to the default weight
// when the investor's explicit mapping omits the dimension.
func (w Weights) WithDefaults(d models.Dimension) float64 {
	if v, ok := w[d]; ok {
		return v
	}
	return DefaultWeights[d]
}
