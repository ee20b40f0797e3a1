package scoring

import (
	"fmt"
	"math"

	"readiness-workers/internal/models"
)

// Convention names one of the two overall score representations. They are
// not numerically equivalent; convert explicitly with PercentageToPoints150
// and Points150ToPercentage.
type Convention string

const (
	ConventionPercentage Convention = "percentage"
	ConventionPoints150  Convention = "points150"
)

const (
	PointsPerDimension = 25
	MaxPoints150       = PointsPerDimension * 6
)

type Tier string

const (
	TierReady     Tier = "ready"
	TierNearReady Tier = "near-ready"
	TierNotReady  Tier = "not-ready"
)

// Description is the scorecard wording for the tier.
func (t Tier) Description() string {
	switch t {
	case TierReady:
		return "certified"
	case TierNearReady:
		return "fixable gaps"
	default:
		return "prep required"
	}
}

// ComputeOverallScore collapses dimension scores into one number under the
// given convention.
//
// Percentage: round(100 * total raw / total ceiling).
// Points150: sum over the six dimensions of raw points capped at 25.
func ComputeOverallScore(scores DimensionScores, convention Convention) int {
	switch convention {
	case ConventionPoints150:
		var total float64
		for _, d := range models.Dimensions {
			total += math.Min(scores[d].Raw, PointsPerDimension)
		}
		return roundInt(total)
	default:
		var raw, ceiling float64
		for _, s := range scores {
			raw += s.Raw
			ceiling += s.Max
		}
		if ceiling == 0 {
			return 0
		}
		return roundInt(100 * raw / ceiling)
	}
}

// PercentageToPoints150 rescales a 0-100 score onto the 150-point scale.
func PercentageToPoints150(percent int) int {
	return roundInt(float64(percent) * MaxPoints150 / 100)
}

// Points150ToPercentage rescales a 150-point score onto 0-100.
func Points150ToPercentage(points int) int {
	return roundInt(float64(points) * 100 / MaxPoints150)
}

// ClassifyTier maps a 150-point score to its readiness tier.
func ClassifyTier(points150 int) Tier {
	switch {
	case points150 >= 90:
		return TierReady
	case points150 >= 75:
		return TierNearReady
	default:
		return TierNotReady
	}
}

// Readiness is the report view of an assessment. Points150 is canonical;
// Percentage is a display value and is never fed back into tiering.
type Readiness struct {
	Points150  int  `json:"points150"`
	Percentage int  `json:"percentage"`
	Tier       Tier `json:"tier"`
}

func EvaluateReadiness(scores DimensionScores) Readiness {
	points := ComputeOverallScore(scores, ConventionPoints150)
	return Readiness{
		Points150:  points,
		Percentage: ComputeOverallScore(scores, ConventionPercentage),
		Tier:       ClassifyTier(points),
	}
}

const (
	certificationMinPoints       = 90
	certificationMinAverage      = 4.0
	certificationMinDimensionPct = 0.40
)

type Deliverable struct {
	Name     string `json:"name"`
	Complete bool   `json:"complete"`
}

type Certification struct {
	TransactionReady bool     `json:"transactionReady"`
	FailedCriteria   []string `json:"failedCriteria,omitempty"`
}

// EvaluateCertification applies the compound transaction-ready check. A
// dimension with no answers counts as below the 40% floor.
func EvaluateCertification(scores DimensionScores, deliverables []Deliverable) Certification {
	var failed []string

	if points := ComputeOverallScore(scores, ConventionPoints150); points < certificationMinPoints {
		failed = append(failed, fmt.Sprintf("overall score %d/%d is below %d", points, MaxPoints150, certificationMinPoints))
	}

	var avgSum float64
	var avgCount int
	for _, d := range models.Dimensions {
		s, ok := scores[d]
		if !ok || s.Max == 0 {
			failed = append(failed, fmt.Sprintf("%s dimension has no scored answers", d))
			continue
		}
		if s.Raw < certificationMinDimensionPct*s.Max {
			failed = append(failed, fmt.Sprintf("%s dimension at %d%% is below the 40%% floor", d, s.Percent))
		}
		avgSum += s.Average()
		avgCount++
	}
	if avgCount > 0 {
		if avg := avgSum / float64(avgCount); avg < certificationMinAverage {
			failed = append(failed, fmt.Sprintf("average dimension score %.2f is below %.1f", avg, certificationMinAverage))
		}
	}

	for _, del := range deliverables {
		if !del.Complete {
			failed = append(failed, fmt.Sprintf("deliverable %q is incomplete", del.Name))
		}
	}

	return Certification{
		TransactionReady: len(failed) == 0,
		FailedCriteria:   failed,
	}
}
