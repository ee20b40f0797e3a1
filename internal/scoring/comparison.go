package scoring

import "readiness-workers/internal/models"

// MaxComparisonInvestors is the largest shortlist a comparison accepts.
const MaxComparisonInvestors = 5

type Alignment string

const (
	AlignmentLowPriority Alignment = "low-priority"
	AlignmentStrong      Alignment = "strong-alignment"
	AlignmentGood        Alignment = "good-alignment"
	AlignmentMisaligned  Alignment = "misalignment"
	AlignmentModerate    Alignment = "moderate-alignment"
)

// ClassifyAlignment rates one matrix cell from company score c and
// normalized investor weight w.
func ClassifyAlignment(c int, w float64) Alignment {
	switch {
	case w < 0.1:
		return AlignmentLowPriority
	case c >= 70 && w > 0.2:
		return AlignmentStrong
	case c >= 50 && w > 0.15:
		return AlignmentGood
	case c < 40 && w > 0.2:
		return AlignmentMisaligned
	default:
		return AlignmentModerate
	}
}

type MatrixCell struct {
	Weight        float64   `json:"weight"`
	WeightPercent int       `json:"weightPercent"`
	CompanyScore  int       `json:"companyScore"`
	WeightedScore float64   `json:"weightedScore"`
	Alignment     Alignment `json:"alignment"`
}

// MatrixRow is one dimension across every shortlisted investor; Cells is
// indexed like ComparisonMatrix.Investors.
type MatrixRow struct {
	Dimension    models.Dimension `json:"dimension"`
	Label        string           `json:"label"`
	CompanyScore int              `json:"companyScore"`
	Cells        []MatrixCell     `json:"cells"`
}

type ComparedInvestor struct {
	InvestorID string                `json:"investorId"`
	Name       string                `json:"name"`
	MatchScore int                   `json:"matchScore"`
	Reasoning  models.MatchReasoning `json:"matchReasoning"`
}

type ChartSeries struct {
	Label           string `json:"label"`
	Data            []int  `json:"data"`
	BackgroundColor string `json:"backgroundColor"`
	BorderColor     string `json:"borderColor"`
}

type ChartData struct {
	Labels   []string      `json:"labels"`
	Datasets []ChartSeries `json:"datasets"`
}

type ComparisonMatrix struct {
	Dimensions []models.Dimension `json:"dimensions"`
	Investors  []ComparedInvestor `json:"investors"`
	Rows       []MatrixRow        `json:"rows"`
	Chart      ChartData          `json:"chartSeries"`
}

var companySeriesColor = seriesColor{bg: "rgba(59, 130, 246, 0.2)", border: "rgb(59, 130, 246)"}

var investorPalette = []seriesColor{
	{bg: "rgba(16, 185, 129, 0.2)", border: "rgb(16, 185, 129)"},
	{bg: "rgba(245, 101, 101, 0.2)", border: "rgb(245, 101, 101)"},
	{bg: "rgba(251, 191, 36, 0.2)", border: "rgb(251, 191, 36)"},
	{bg: "rgba(139, 92, 246, 0.2)", border: "rgb(139, 92, 246)"},
	{bg: "rgba(236, 72, 153, 0.2)", border: "rgb(236, 72, 153)"},
}

type seriesColor struct {
	bg     string
	border string
}

// BuildComparisonMatrix lays shortlisted matches side by side over the six
// dimensions. Dimensions an investor left unweighted use the default weight.
// The chart puts the company series first, then one priority series per
// investor in shortlist order.
func BuildComparisonMatrix(shortlist []MatchResult, company map[models.Dimension]int) ComparisonMatrix {
	dims := models.Dimensions

	m := ComparisonMatrix{
		Dimensions: append([]models.Dimension(nil), dims...),
		Investors:  make([]ComparedInvestor, len(shortlist)),
		Rows:       make([]MatrixRow, len(dims)),
		Chart: ChartData{
			Labels:   make([]string, len(dims)),
			Datasets: make([]ChartSeries, 0, len(shortlist)+1),
		},
	}

	companyData := make([]int, len(dims))
	for i, d := range dims {
		m.Chart.Labels[i] = d.Label()
		companyData[i] = company[d]
		m.Rows[i] = MatrixRow{
			Dimension:    d,
			Label:        d.Label(),
			CompanyScore: company[d],
			Cells:        make([]MatrixCell, len(shortlist)),
		}
	}
	m.Chart.Datasets = append(m.Chart.Datasets, ChartSeries{
		Label:           "Company Performance",
		Data:            companyData,
		BackgroundColor: companySeriesColor.bg,
		BorderColor:     companySeriesColor.border,
	})

	for j, match := range shortlist {
		weights := match.Weights()
		if weights == nil {
			weights = NormalizeWeights(match.Investor.CriteriaWeights)
		}

		m.Investors[j] = ComparedInvestor{
			InvestorID: match.Investor.ID,
			Name:       match.Investor.Name,
			MatchScore: match.Score,
			Reasoning:  match.Reasoning,
		}

		priority := make([]int, len(dims))
		for i, d := range dims {
			w := weights.WithDefaults(d)
			c := company[d]
			m.Rows[i].Cells[j] = MatrixCell{
				Weight:        w,
				WeightPercent: roundInt(w * 100),
				CompanyScore:  c,
				WeightedScore: float64(c) * w,
				Alignment:     ClassifyAlignment(c, w),
			}
			priority[i] = roundInt(w * 100)
		}

		color := investorPalette[j%len(investorPalette)]
		m.Chart.Datasets = append(m.Chart.Datasets, ChartSeries{
			Label:           match.Investor.Name + " Priority",
			Data:            priority,
			BackgroundColor: color.bg,
			BorderColor:     color.border,
		})
	}

	return m
}
