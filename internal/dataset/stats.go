package dataset

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of an array's values.
type Summary struct {
	Count   int
	Missing int
	Min     float64
	Max     float64
	Mean    float64
	StdDev  float64
}

// Summarize computes a Summary over the non-missing values of a.
func Summarize(a *Array) Summary {
	valid := a.Valid()
	s := Summary{Count: len(valid), Missing: a.Len() - len(valid)}
	if len(valid) == 0 {
		return s
	}
	s.Min = floats.Min(valid)
	s.Max = floats.Max(valid)
	if len(valid) == 1 {
		s.Mean = valid[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(valid, nil)
	return s
}
