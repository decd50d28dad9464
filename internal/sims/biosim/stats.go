package biosim

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of one attribute.
type Summary struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes count, mean, standard deviation and range of xs.
func Summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	s := Summary{
		N:    len(xs),
		Mean: stat.Mean(xs, nil),
		Min:  floats.Min(xs),
		Max:  floats.Max(xs),
	}
	if len(xs) > 1 {
		s.StdDev = stat.StdDev(xs, nil)
	}
	return s
}

// Histogram bins xs into ceil(Max/Delta) equal bins starting at zero. Values
// outside [0, bins*Delta) are dropped.
func Histogram(xs []float64, spec HistogramSpec) []float64 {
	if spec.Max <= 0 || spec.Delta <= 0 {
		return nil
	}
	bins := int(math.Ceil(spec.Max/spec.Delta - 1e-9))
	if bins < 1 {
		bins = 1
	}
	dividers := floats.Span(make([]float64, bins+1), 0, float64(bins)*spec.Delta)
	upper := dividers[bins]

	inside := make([]float64, 0, len(xs))
	for _, x := range xs {
		if x >= 0 && x < upper {
			inside = append(inside, x)
		}
	}
	if len(inside) == 0 {
		return make([]float64, bins)
	}
	sort.Float64s(inside)
	return stat.Histogram(nil, dividers, inside, nil)
}
