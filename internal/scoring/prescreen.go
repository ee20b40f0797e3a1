package scoring

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"readiness-workers/internal/models"
)

// PrescreenLimit caps how many investors prescreening returns.
const PrescreenLimit = 10

// Criterion weights. Every criterion adds its max to the denominator whether
// or not the profile carries data for it, so missing fields lower the score.
const (
	industryPoints       = 30
	fundingPoints        = 25
	fundingClosePoints   = 15
	fundingPartialPoints = 8
	stagePoints          = 20
	investmentTypeMax    = 15
	investmentTypePoints = 10
	businessModelPoints  = 15
	revenueMax           = 10
	growthMax            = 10
	geographyPoints      = 5

	prescreenMaxScore = industryPoints + fundingPoints + stagePoints + investmentTypeMax +
		businessModelPoints + revenueMax + growthMax + geographyPoints
)

type PrescreenResult struct {
	Investor     models.Investor `json:"investor"`
	MatchScore   int             `json:"matchScore"`
	MatchReasons []string        `json:"matchReasons"`
}

// PrescreenInvestors scores every investor on profile attributes and returns
// at most PrescreenLimit results with score > 0, highest first. Ties keep
// input order.
func PrescreenInvestors(profile models.CompanyProfile, investors []models.Investor) []PrescreenResult {
	results := make([]PrescreenResult, 0, len(investors))
	for _, inv := range investors {
		score, reasons := prescreenInvestor(profile, inv)
		if score <= 0 {
			continue
		}
		results = append(results, PrescreenResult{
			Investor:     inv,
			MatchScore:   score,
			MatchReasons: reasons,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})

	if len(results) > PrescreenLimit {
		results = results[:PrescreenLimit]
	}
	return results
}

func prescreenInvestor(p models.CompanyProfile, inv models.Investor) (int, []string) {
	score := 0
	reasons := []string{}

	if p.Industry != "" && containsExact(inv.FocusAreas, p.Industry) {
		score += industryPoints
		reasons = append(reasons, "Strong industry focus match: "+p.Industry)
	}

	// A zero bound is unset, matching FormatInvestmentRange.
	if p.FundingAmountSought != nil && *p.FundingAmountSought > 0 &&
		inv.InvestmentRangeMin != nil && *inv.InvestmentRangeMin > 0 &&
		inv.InvestmentRangeMax != nil && *inv.InvestmentRangeMax > 0 {
		amount, lo, hi := *p.FundingAmountSought, *inv.InvestmentRangeMin, *inv.InvestmentRangeMax
		switch {
		case amount >= lo && amount <= hi:
			score += fundingPoints
			reasons = append(reasons, fmt.Sprintf("Perfect investment size match: %s within range %s-%s",
				FormatAmount(amount), FormatAmount(lo), FormatAmount(hi)))
		case amount >= lo*0.8 && amount <= hi*1.2:
			score += fundingClosePoints
		case amount >= lo*0.5 && amount <= hi*1.5:
			score += fundingPartialPoints
		}
	}

	if p.CompanyStage != "" && containsExact(inv.FocusAreas, p.CompanyStage) {
		score += stagePoints
		reasons = append(reasons, "Company stage alignment: "+humanize(p.CompanyStage))
	}

	// No investor data describes investment type preferences; any stated
	// type earns the flat partial score.
	if p.InvestmentType != "" {
		score += investmentTypePoints
		reasons = append(reasons, "Investment type preference: "+p.InvestmentType)
	}

	if p.BusinessModel != "" && containsExact(inv.FocusAreas, p.BusinessModel) {
		score += businessModelPoints
		reasons = append(reasons, "Business model focus: "+humanize(p.BusinessModel))
	}

	if p.AnnualRevenue != nil {
		switch revenue := *p.AnnualRevenue; {
		case revenue > 1_000_000:
			score += 10
			reasons = append(reasons, fmt.Sprintf("Strong revenue profile: %s annual revenue", FormatAmount(revenue)))
		case revenue > 100_000:
			score += 6
		}
	}

	switch g := p.GrowthRate; {
	case g >= 50:
		score += 10
	case g >= 20:
		score += 6
	case g >= 10:
		score += 3
	}
	if p.GrowthRate >= 20 {
		reasons = append(reasons, fmt.Sprintf("Strong growth trajectory: %s%% growth rate",
			strconv.FormatFloat(p.GrowthRate, 'f', -1, 64)))
	}

	if p.GeographicLocation != "" && len(inv.GeographicFocus) > 0 {
		if hasGlobalFocus(inv.GeographicFocus) {
			score += geographyPoints
			reasons = append(reasons, "Global investment focus covers your location")
		} else if locationOverlaps(p.GeographicLocation, inv.GeographicFocus) {
			score += geographyPoints
			reasons = append(reasons, "Geographic focus covers "+p.GeographicLocation)
		}
	}

	return roundInt(100 * float64(score) / prescreenMaxScore), reasons
}

func containsExact(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func hasGlobalFocus(focus []string) bool {
	for _, f := range focus {
		if strings.EqualFold(strings.TrimSpace(f), "global") {
			return true
		}
	}
	return false
}

func locationOverlaps(location string, focus []string) bool {
	loc := strings.ToLower(location)
	for _, f := range focus {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && strings.Contains(loc, f) {
			return true
		}
	}
	return false
}

// humanize turns snake_case tags like "series_a" into "series a".
func humanize(tag string) string {
	return strings.ReplaceAll(tag, "_", " ")
}
