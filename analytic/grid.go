package analytic

import (
	"fmt"
	"math"
)

// newMatrix allocates a rows x cols matrix backed by a single slice.
func newMatrix(rows, cols int) [][]float64 {
	flat := make([]float64, rows*cols)
	m := make([][]float64, rows)
	for i := range m {
		m[i] = flat[i*cols : (i+1)*cols]
	}
	return m
}

// Reshape1DTo2D copies a row-major vector into a rows x cols matrix.
func Reshape1DTo2D(v []float64, rows, cols int) ([][]float64, error) {
	if len(v) != rows*cols {
		return nil, fmt.Errorf("size mismatch: have %d, want %d", len(v), rows*cols)
	}
	m := newMatrix(rows, cols)
	for i := 0; i < rows; i++ {
		copy(m[i], v[i*cols:(i+1)*cols])
	}
	return m, nil
}

// Flatten2D returns a row-major copy of m.
func Flatten2D(m [][]float64) ([]float64, error) {
	rows, cols, err := rectSize(m)
	if err != nil {
		return nil, err
	}
	out := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		copy(out[i*cols:(i+1)*cols], m[i])
	}
	return out, nil
}

// rectSize returns the dimensions of m, failing on ragged input.
func rectSize(m [][]float64) (h, w int, err error) {
	h = len(m)
	if h == 0 {
		return 0, 0, nil
	}
	w = len(m[0])
	for i := 1; i < h; i++ {
		if len(m[i]) != w {
			return 0, 0, fmt.Errorf("ragged matrix: row %d has %d columns, expected %d", i, len(m[i]), w)
		}
	}
	return h, w, nil
}

// Linspace matches numpy's linspace: n evenly spaced values from start to end inclusive.
func Linspace(start, end float64, n int) []float64 {
	if n <= 1 {
		return []float64{start}
	}
	step := (end - start) / float64(n-1)
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = start + float64(i)*step
	}
	return x
}

// centeredAxis returns the pixel-centre coordinates of an n-pixel axis,
// running from -n/2+0.5 to n/2-0.5.
func centeredAxis(n int) []float64 {
	half := float64(n) / 2
	return Linspace(-half+0.5, half-0.5, n)
}

// insideHexagon reports whether (x, y), in units of the circumscribed radius,
// lies in a regular hexagon with vertices on the x axis.
func insideHexagon(x, y float64) bool {
	ax := math.Abs(x)
	ay := math.Abs(y)
	if ax > 1 {
		return false
	}
	return ay <= math.Sqrt(3)/2 && ay <= math.Sqrt(3)*(1-ax)
}
