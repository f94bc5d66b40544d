// Package scoring computes lead quality scores and estimated deal values.
// Both functions are pure and total so they can be applied at read time
// without a persisted score column drifting out of date.
package scoring

import (
	"math"
	"strconv"
	"strings"
)

const (
	baseScore = 50
	maxScore  = 100

	baseValue = 7500.0
	maxValue  = 50000.0

	// budgetValueRate converts a stated budget into an expected commission.
	budgetValueRate = 0.025
)

// Input carries the lead attributes that influence scoring. Optional fields
// are empty strings when the lead did not provide them.
type Input struct {
	PreferredTime string
	BudgetRange   string
	Email         string
}

// Score rates a lead from 0 to 100 based on urgency, budget, and contact
// completeness. Every lead starts at 50.
func Score(in Input) int {
	score := baseScore

	score += urgencyBonus(in.PreferredTime)
	score += budgetBonus(ParseBudget(in.BudgetRange))

	if strings.Contains(in.Email, "@") {
		score += 15
	}

	return clampScore(score)
}

// urgencyBonus awards points for how soon the lead wants a showing. The
// rules are mutually exclusive and checked from most to least urgent.
func urgencyBonus(preferredTime string) int {
	t := strings.ToLower(preferredTime)
	switch {
	case strings.Contains(t, "asap"), strings.Contains(t, "urgent"):
		return 40
	case strings.Contains(t, "today"), strings.Contains(t, "tomorrow"):
		return 30
	case strings.Contains(t, "this week"):
		return 20
	case strings.Contains(t, "next week"):
		return 10
	}
	return 0
}

func budgetBonus(budget int64) int {
	switch {
	case budget > 1_000_000:
		return 25
	case budget > 500_000:
		return 15
	case budget > 250_000:
		return 10
	}
	return 0
}

// ParseBudget extracts every digit character from a free-text budget range
// such as "$750,000" and parses the concatenation as an integer. It returns
// 0 when the text holds no digits or the number overflows.
func ParseBudget(budgetRange string) int64 {
	var digits strings.Builder
	for _, r := range budgetRange {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// EstimateValue projects the expected deal value for a lead. Leads with a
// stated budget are valued as a fraction of it; the score tier then scales
// the result. The estimate never exceeds 50000.
func EstimateValue(in Input) int {
	value := baseValue
	if budget := ParseBudget(in.BudgetRange); budget > 0 {
		value = float64(budget) * budgetValueRate
	}

	score := Score(in)
	switch {
	case score >= 67:
		value *= 1.5
	case score >= 34:
		// mid tier keeps the base estimate
	default:
		value *= 0.5
	}

	value = math.Round(value)
	if value > maxValue {
		value = maxValue
	}
	return int(value)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
