package scoring

import (
	"fmt"
	"strconv"
)

// FormatAmount renders a currency amount as $1.5B, $2.0M, $500K or $750.
func FormatAmount(amount float64) string {
	switch {
	case amount >= 1_000_000_000:
		return fmt.Sprintf("$%.1fB", amount/1_000_000_000)
	case amount >= 1_000_000:
		return fmt.Sprintf("$%.1fM", amount/1_000_000)
	case amount >= 1_000:
		return fmt.Sprintf("$%.0fK", amount/1_000)
	default:
		return "$" + strconv.FormatFloat(amount, 'f', -1, 64)
	}
}

// FormatInvestmentRange renders an optional min/max range. Zero bounds are
// treated as unset.
func FormatInvestmentRange(lo, hi *float64) string {
	hasMin := lo != nil && *lo > 0
	hasMax := hi != nil && *hi > 0

	switch {
	case hasMin && hasMax:
		return FormatAmount(*lo) + " - " + FormatAmount(*hi)
	case hasMin:
		return FormatAmount(*lo) + "+"
	case hasMax:
		return "Up to " + FormatAmount(*hi)
	default:
		return "Not specified"
	}
}
