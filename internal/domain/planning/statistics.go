// internal/domain/planning/statistics.go
package planning

import "math"

// zScores maps standard service levels to their normal-distribution
// z-score. Unlisted levels fall back to the 95% score.
var zScores = map[float64]float64{
	0.90:  1.28,
	0.95:  1.65,
	0.97:  1.88,
	0.99:  2.33,
	0.995: 2.58,
}

const defaultZScore = 1.65

// ZScore returns the z-score for a target service level
func ZScore(serviceLevel float64) float64 {
	if z, ok := zScores[serviceLevel]; ok {
		return z
	}
	return defaultZScore
}

// SampleStdDev computes the sample standard deviation (n−1 divisor) of
// the observations. Fewer than two samples yield zero.
func SampleStdDev(samples []float64) float64 {
	n := len(samples)
	if n < 2 {
		return 0
	}

	sum := 0.0
	for _, v := range samples {
		sum += v
	}
	mean := sum / float64(n)

	variance := 0.0
	for _, v := range samples {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n - 1)

	return math.Sqrt(variance)
}

// safetyStockFormula is the adaptive computation: z × σ × √leadTime.
// It assumes roughly normal usage and a deterministic lead time; that is
// a documented limitation of the model, not a defect.
func safetyStockFormula(zScore, stdDev float64, leadTimeDays int) float64 {
	return zScore * stdDev * math.Sqrt(float64(leadTimeDays))
}

// PriorityScore buckets a reorder alert on three weighted factors:
// stock-level severity (0–40), stockout urgency (0–40) and usage-rate
// magnitude (0–20), capped at 100. Used only to sort and bucket alerts.
func PriorityScore(stock, safetyStock, rop, dailyUsage float64, daysUntilStockout *float64) int {
	priority := 0

	switch {
	case stock <= 0:
		priority += 40
	case stock <= safetyStock:
		priority += 35
	case stock <= rop*0.5:
		priority += 30
	case stock <= rop:
		priority += 20
	}

	if daysUntilStockout != nil {
		switch {
		case *daysUntilStockout <= 1:
			priority += 40
		case *daysUntilStockout <= 3:
			priority += 35
		case *daysUntilStockout <= 7:
			priority += 25
		case *daysUntilStockout <= 14:
			priority += 15
		}
	}

	switch {
	case dailyUsage > 10:
		priority += 20
	case dailyUsage > 5:
		priority += 15
	case dailyUsage > 0:
		priority += 10
	}

	if priority > 100 {
		priority = 100
	}
	return priority
}

// SuggestedOrderQty targets two lead times of cover plus safety stock:
// max(0, dailyUsage × leadTime × 2 + safetyStock − currentStock).
func SuggestedOrderQty(dailyUsage float64, leadTimeDays int, safetyStock, currentStock float64) float64 {
	target := dailyUsage*float64(leadTimeDays)*2 + safetyStock
	qty := target - currentStock
	if qty < 0 {
		return 0
	}
	return qty
}
