package groups

import "time"

// BudgetConfig carries the pipeline-wide timeout and the per-group ceiling
// the client configuration imposes.
type BudgetConfig struct {
	TotalTimeout time.Duration
	MaxPerGroup  time.Duration
}

const minGroupBudget = 2 * time.Second

// classifySize buckets a group by order count: small < 5,
// medium 5..20, large 21..40, very-large > 40.
func classifySize(n int) (small, medium, large, veryLarge bool) {
	switch {
	case n < 5:
		return true, false, false, false
	case n <= 20:
		return false, true, false, false
	case n <= 40:
		return false, false, true, false
	default:
		return false, false, false, true
	}
}

// assignTimeBudgets computes the base per-group budget from the estimated
// group count and size mix, then scales it per group by order-count band.
func assignTimeBudgets(groups []Group, cfg BudgetConfig) {
	if len(groups) == 0 || cfg.TotalTimeout <= 0 {
		return
	}

	estimatedGroupCount := len(groups)
	base := time.Duration(int64(cfg.TotalTimeout-5*time.Second) / int64(estimatedGroupCount))
	if base < minGroupBudget {
		base = minGroupBudget
	}

	largeOrVeryLarge := 0
	for _, g := range groups {
		_, _, large, veryLarge := classifySize(len(g.Orders))
		if large || veryLarge {
			largeOrVeryLarge++
		}
	}
	proportion := float64(largeOrVeryLarge) / float64(len(groups))
	switch {
	case proportion > 0.5:
		base = time.Duration(float64(base) * 1.2)
	case proportion > 0.3:
		base = time.Duration(float64(base) * 1.1)
	}

	if len(groups) <= 5 {
		base = time.Duration(float64(base) * 1.5)
	}
	if cfg.MaxPerGroup > 0 && base > cfg.MaxPerGroup {
		base = cfg.MaxPerGroup
	}

	for i := range groups {
		groups[i].TimeBudget = perGroupBudget(base, len(groups[i].Orders))
	}
}

// perGroupBudget scales the base budget by the group's order count band,
// capping the very large bands at an absolute ceiling.
func perGroupBudget(base time.Duration, orders int) time.Duration {
	var scaled time.Duration
	var ceiling time.Duration

	switch {
	case orders < 3:
		scaled = time.Duration(float64(base) * 0.5)
	case orders <= 5:
		scaled = time.Duration(float64(base) * 0.7)
	case orders <= 10:
		scaled = time.Duration(float64(base) * 0.9)
	case orders <= 30:
		scaled = base
	case orders <= 40:
		scaled = time.Duration(float64(base) * 2.5)
		ceiling = 50 * time.Second
	case orders <= 60:
		scaled = time.Duration(float64(base) * 4)
		ceiling = 120 * time.Second
	default:
		scaled = time.Duration(float64(base) * 5)
		ceiling = 150 * time.Second
	}

	if ceiling > 0 && scaled > ceiling {
		scaled = ceiling
	}
	if scaled < minGroupBudget {
		scaled = minGroupBudget
	}
	return scaled
}
