package analytic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// CoordinateGrid returns the frame coordinates used by the fringes. tabI varies
// along columns, tabJ = transpose(tabI) along rows; both run over
// [-L/2+0.5, L/2-0.5], i.e. tabI[r][c] = (r*L+c) mod L - L/2 + 0.5.
func CoordinateGrid(L int) (tabI, tabJ [][]float64) {
	axis := centeredAxis(L)
	tabI = newMatrix(L, L)
	tabJ = newMatrix(L, L)
	for r := 0; r < L; r++ {
		copy(tabI[r], axis)
		for c := 0; c < L; c++ {
			tabJ[r][c] = axis[r]
		}
	}
	return tabI, tabJ
}

// Fringe returns cos(pixelScale * (sep[0]*tabI + sep[1]*tabJ)) on an L x L frame.
func Fringe(sep [2]float64, pixelScale float64, L int) [][]float64 {
	tabI, tabJ := CoordinateGrid(L)
	out := newMatrix(L, L)
	for r := 0; r < L; r++ {
		for c := 0; c < L; c++ {
			out[r][c] = math.Cos(pixelScale * (sep[0]*tabI[r][c] + sep[1]*tabJ[r][c]))
		}
	}
	return out
}

// Synthesize builds the interference field sum1 + 2*sum_q generic[q]*fringe_q on
// an L x L frame, taking each fringe from the representative separation of its
// NRP. The field is a modulation factor and may be negative.
//
// Fringes are separable, cos(a+b) = cos a cos b - sin a sin b, so each NRP costs
// two axis evaluations and L*L multiply-adds.
func Synthesize(generic []float64, sum1 float64, g *GeometryTables, pixelScale float64, L int) ([][]float64, error) {
	if L <= 0 {
		return nil, fmt.Errorf("frame size %d: %w", L, ErrNumericDomain)
	}
	if len(generic) != g.NRPCount() {
		return nil, fmt.Errorf("%d generic coefficients for %d NRPs: %w", len(generic), g.NRPCount(), ErrData)
	}

	field := newMatrix(L, L)
	for r := range field {
		for c := range field[r] {
			field[r][c] = sum1
		}
	}

	axis := centeredAxis(L)
	cosA := make([]float64, L)
	sinA := make([]float64, L)
	cosB := make([]float64, L)
	sinB := make([]float64, L)
	for q, coef := range generic {
		if coef == 0 {
			continue
		}
		sep := g.repSep[q]
		for k, x := range axis {
			sinA[k], cosA[k] = math.Sincos(pixelScale * sep[0] * x)
			sinB[k], cosB[k] = math.Sincos(pixelScale * sep[1] * x)
		}
		w := 2 * coef
		for r := 0; r < L; r++ {
			floats.AddScaled(field[r], w*cosB[r], cosA)
			floats.AddScaled(field[r], -w*sinB[r], sinA)
		}
	}
	return field, nil
}
