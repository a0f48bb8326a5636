package analytic

import (
	"errors"
	"math"
	"testing"
)

func TestCoordinateGrid(t *testing.T) {
	L := 6
	tabI, tabJ := CoordinateGrid(L)
	for r := 0; r < L; r++ {
		for c := 0; c < L; c++ {
			expected := float64((r*L+c)%L) - float64(L)/2 + 0.5
			if tabI[r][c] != expected {
				t.Errorf("tabI[%d][%d]: expected %g, got %g", r, c, expected, tabI[r][c])
			}
			if tabJ[r][c] != tabI[c][r] {
				t.Errorf("tabJ is not the transpose of tabI at (%d,%d)", r, c)
			}
		}
	}
	if tabI[0][0] != -2.5 || tabI[0][L-1] != 2.5 {
		t.Errorf("axis should run from -2.5 to 2.5, got %g to %g", tabI[0][0], tabI[0][L-1])
	}
}

func TestSynthesizeSingleNRP(t *testing.T) {
	sep := [2]float64{3, -1}
	g := lineGeometry(t, sep)
	scale := 2 * math.Pi / 32
	L := 32

	generic, sum1, err := Aggregate([]float64{1, 1, 1}, g)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	field, err := Synthesize(generic, sum1, g, scale, L)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	fringe := Fringe(sep, scale, L)
	for r := range field {
		for c := range field[r] {
			expected := 3 + 6*fringe[r][c]
			if math.Abs(field[r][c]-expected) > 1e-12 {
				t.Fatalf("field[%d][%d]: expected %g, got %g", r, c, expected, field[r][c])
			}
		}
	}
}

func TestSynthesizeUniformWithoutPairs(t *testing.T) {
	g := ringGeometry(t, 32)
	coef := []float64{0, 0, 0.7, 0, 0, 0}

	generic, sum1, err := Aggregate(coef, g)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	field, err := Synthesize(generic, sum1, g, 2*math.Pi/64, 64)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	for r := range field {
		for c := range field[r] {
			if math.Abs(field[r][c]-0.49) > 1e-12 {
				t.Fatalf("field[%d][%d]: expected uniform 0.49, got %g", r, c, field[r][c])
			}
		}
	}

	zero, err := Synthesize(make([]float64, g.NRPCount()), 0, g, 2*math.Pi/64, 64)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	for r := range zero {
		for c := range zero[r] {
			if zero[r][c] != 0 {
				t.Fatalf("zero coefficients gave %g at (%d,%d)", zero[r][c], r, c)
			}
		}
	}
}

func TestSynthesizeMatchesPairwiseSum(t *testing.T) {
	g := ringGeometry(t, 32)
	coef := []float64{0.3, -0.2, 0.5, 0.1, -0.4, 0.25}
	scale := 2 * math.Pi / 40
	L := 40

	generic, sum1, err := Aggregate(coef, g)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	field, err := Synthesize(generic, sum1, g, scale, L)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	// |sum_i c_i exp(i k.x_i)|^2 expanded over every ordered pair.
	expected := newMatrix(L, L)
	for i := range coef {
		for j := range coef {
			sep, ok := g.SeparationVector(i, j)
			if !ok {
				t.Fatalf("no separation for (%d,%d)", i, j)
			}
			fringe := Fringe(sep, scale, L)
			for r := range expected {
				for c := range expected[r] {
					expected[r][c] += coef[i] * coef[j] * fringe[r][c]
				}
			}
		}
	}
	if d := maxAbsDiff(field, expected); d > 1e-10 {
		t.Errorf("NRP synthesis differs from pairwise sum by %g", d)
	}
}

func TestSynthesizeRejectsBadInput(t *testing.T) {
	g := ringGeometry(t, 32)
	if _, err := Synthesize(make([]float64, 3), 0, g, 0.1, 32); !errors.Is(err, ErrData) {
		t.Errorf("wrong generic length: expected ErrData, got %v", err)
	}
	if _, err := Synthesize(make([]float64, g.NRPCount()), 0, g, 0.1, 0); !errors.Is(err, ErrNumericDomain) {
		t.Errorf("empty frame: expected ErrNumericDomain, got %v", err)
	}
}
