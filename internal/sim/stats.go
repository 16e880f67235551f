package sim

import (
	"math"
	"slices"
)

// Describe summarises a column the way the reference notebooks did: count,
// mean, sample standard deviation, min, quartiles and max.
type Describe struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Q25   float64
	Q50   float64
	Q75   float64
	Max   float64
}

// describe returns the zero value for an empty column. Std is NaN for a
// single value.
func describe(vals []float64) Describe {
	if len(vals) == 0 {
		return Describe{}
	}
	sorted := slices.Clone(vals)
	slices.Sort(sorted)
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	n := len(sorted)
	d := Describe{
		Count: n,
		Mean:  sum / float64(n),
		Min:   sorted[0],
		Max:   sorted[n-1],
		Q25:   quantile(sorted, 0.25),
		Q50:   quantile(sorted, 0.5),
		Q75:   quantile(sorted, 0.75),
		Std:   math.NaN(),
	}
	if n > 1 {
		var ss float64
		for _, v := range sorted {
			ss += (v - d.Mean) * (v - d.Mean)
		}
		d.Std = math.Sqrt(ss / float64(n-1))
	}
	return d
}

// quantile interpolates linearly between closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
