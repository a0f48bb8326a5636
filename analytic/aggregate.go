package analytic

import "fmt"

// Aggregate reduces the pairwise coefficient products to one value per NRP:
// generic[q-1] = sum of coef[i]*coef[j] over pairs i<j that project to NRP q.
// It also returns sum1 = sum of coef[i]^2.
func Aggregate(coef []float64, g *GeometryTables) ([]float64, float64, error) {
	if len(coef) != g.SegmentCount() {
		return nil, 0, fmt.Errorf("%d coefficients for %d segments: %w", len(coef), g.SegmentCount(), ErrData)
	}

	generic := make([]float64, g.NRPCount())
	for _, t := range g.terms {
		generic[t.q] += coef[t.i] * coef[t.j]
	}

	sum1 := 0.0
	for _, c := range coef {
		sum1 += c * c
	}
	return generic, sum1, nil
}
