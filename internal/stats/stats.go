// Package stats holds the fixed summary statistics used by the robustness
// experiments. Every function is total: empty input and zero denominators
// map to defined constants instead of NaN or a panic.
package stats

import (
	"math"

	"github.com/ppiankov/concordia/internal/model"
)

// Summary describes a score sequence
type Summary struct {
	Mean  float64
	Min   int
	Max   int
	Std   float64 // Population standard deviation
	CV    float64 // Std / Mean, 0 when Mean <= 0
	Range int
}

// Summarize computes mean, min, max, population std, coefficient of variation and range.
// An empty slice yields the zero Summary.
func Summarize(scores []int) Summary {
	if len(scores) == 0 {
		return Summary{}
	}

	s := Summary{
		Mean: Mean(scores),
		Min:  scores[0],
		Max:  scores[0],
		Std:  PStdev(scores),
	}
	for _, v := range scores[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Range = s.Max - s.Min
	s.CV = CoefficientOfVariation(s.Std, s.Mean)
	return s
}

// Mean returns the arithmetic mean, 0 for an empty slice
func Mean(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, v := range scores {
		sum += v
	}
	return float64(sum) / float64(len(scores))
}

// PStdev returns the population standard deviation, 0 for fewer than two values
func PStdev(scores []int) float64 {
	if len(scores) < 2 {
		return 0
	}
	mean := Mean(scores)
	var ss float64
	for _, v := range scores {
		d := float64(v) - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(scores)))
}

// CoefficientOfVariation returns std/mean, defined as 0 when mean <= 0
func CoefficientOfVariation(std, mean float64) float64 {
	if mean <= 0 {
		return 0
	}
	return std / mean
}

// Categorize bins a 0-100 score: >=80 high, >=50 medium, otherwise low
func Categorize(score int) model.Category {
	switch {
	case score >= 80:
		return model.CategoryHigh
	case score >= 50:
		return model.CategoryMedium
	default:
		return model.CategoryLow
	}
}
