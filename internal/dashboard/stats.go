package dashboard

import "math"

// Pearson returns the Pearson correlation coefficient of x and y.
// It is NaN when the lengths differ, fewer than two points are given,
// or either variable is constant.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if n != len(y) || n < 2 {
		return math.NaN()
	}

	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	return sxy / math.Sqrt(sxx*syy)
}

// CorrelationMatrix returns the pairwise Pearson matrix of vars.
// The diagonal is 1 for non-constant variables.
func CorrelationMatrix(vars [][]float64) [][]float64 {
	m := make([][]float64, len(vars))
	for i := range vars {
		m[i] = make([]float64, len(vars))
		for j := range vars {
			if j < i {
				m[i][j] = m[j][i]
				continue
			}
			m[i][j] = Pearson(vars[i], vars[j])
		}
	}
	return m
}
