package planning

import (
	"math"
	"testing"
)

func TestZScore(t *testing.T) {
	tests := []struct {
		level float64
		want  float64
	}{
		{0.90, 1.28},
		{0.95, 1.65},
		{0.97, 1.88},
		{0.99, 2.33},
		{0.995, 2.58},
		{0.80, 1.65}, // unlisted level falls back to 95%
		{0, 1.65},
	}

	for _, tt := range tests {
		if got := ZScore(tt.level); got != tt.want {
			t.Errorf("ZScore(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestSampleStdDev(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{"empty", nil, 0},
		{"single sample", []float64{5}, 0},
		{"constant series", []float64{4, 4, 4, 4}, 0},
		// variance = ((-2)^2+(-1)^2+1^2+2^2)/(4-1) = 10/3
		{"known series", []float64{1, 2, 4, 5}, math.Sqrt(10.0 / 3.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SampleStdDev(tt.samples)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SampleStdDev(%v) = %v, want %v", tt.samples, got, tt.want)
			}
		})
	}
}

func TestSafetyStockFormula(t *testing.T) {
	// z=1.65, sigma=10, leadTime=4 → 1.65 × 10 × 2 = 33
	got := safetyStockFormula(1.65, 10, 4)
	if math.Abs(got-33) > 1e-9 {
		t.Errorf("safetyStockFormula = %v, want 33", got)
	}
}

func TestPriorityScore(t *testing.T) {
	days := func(d float64) *float64 { return &d }

	tests := []struct {
		name              string
		stock             float64
		safetyStock       float64
		rop               float64
		dailyUsage        float64
		daysUntilStockout *float64
		want              int
	}{
		{"out of stock, urgent, heavy usage caps at 100", 0, 20, 90, 15, days(0.5), 100},
		{"below safety stock, moderate urgency", 15, 20, 90, 6, days(5), 35 + 25 + 15},
		{"below half rop, low usage, no projection", 40, 20, 90, 2, nil, 30 + 10},
		{"below rop only", 80, 20, 90, 0, nil, 20},
		{"healthy stock scores zero", 200, 20, 90, 0, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PriorityScore(tt.stock, tt.safetyStock, tt.rop, tt.dailyUsage, tt.daysUntilStockout)
			if got != tt.want {
				t.Errorf("PriorityScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSuggestedOrderQty(t *testing.T) {
	// usage 10/day, lead time 7 → target 10×7×2+20 = 160, have 50 → order 110
	if got := SuggestedOrderQty(10, 7, 20, 50); got != 110 {
		t.Errorf("SuggestedOrderQty = %v, want 110", got)
	}
	// already above target
	if got := SuggestedOrderQty(1, 2, 5, 100); got != 0 {
		t.Errorf("SuggestedOrderQty above target = %v, want 0", got)
	}
}
