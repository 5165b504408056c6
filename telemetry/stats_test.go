package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	// Unsorted on purpose; Summarize must not depend on input order.
	s := Summarize([]float64{5, 1, 4, 2, 3})

	if math.Abs(s.Mean-3) > 1e-9 {
		t.Errorf("mean = %v, want 3", s.Mean)
	}
	// Sample variance of 1..5 is 2.5.
	if math.Abs(s.Std-math.Sqrt(2.5)) > 1e-9 {
		t.Errorf("std = %v, want %v", s.Std, math.Sqrt(2.5))
	}
	if math.Abs(s.P10-1.4) > 1e-9 || math.Abs(s.P50-3) > 1e-9 || math.Abs(s.P90-4.6) > 1e-9 {
		t.Errorf("percentiles = %v / %v / %v", s.P10, s.P50, s.P90)
	}
}

func TestSummarizeDegenerate(t *testing.T) {
	if s := Summarize(nil); s != (Summary{}) {
		t.Errorf("empty = %+v", s)
	}
	s := Summarize([]float64{0.7})
	if s.Mean != 0.7 || s.Std != 0 || s.P50 != 0.7 {
		t.Errorf("single = %+v", s)
	}
}
