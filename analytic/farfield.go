package analytic

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
)

// MatrixFourier computes the far field of a square pupil-plane array onto an
// L x L grid spanning param lambda/D, as the matrix product A @ M @ A^T with
//
//	A[a][k] = exp(-2*pi*i * u_a * x_k)
//	x_k = (k - n/2 + 0.5) / n          (pupil, in units of the array width)
//	u_a = (a - L/2 + 0.5) * param / L  (focal plane, in lambda/D)
//
// normalised by param/(n*L). Unlike an FFT the input and output sizes are
// independent, which is what lets a small segment grid fill a large frame.
func MatrixFourier(shape [][]float64, param float64, L int) ([][]complex128, error) {
	n, w, err := rectSize(shape)
	if err != nil {
		return nil, fmt.Errorf("segment shape: %v: %w", err, ErrData)
	}
	if n == 0 || n != w {
		return nil, fmt.Errorf("segment shape must be square and non-empty, got %dx%d: %w", n, w, ErrData)
	}
	if !(param > 0) || math.IsInf(param, 0) {
		return nil, fmt.Errorf("far-field extent %g lambda/D: %w", param, ErrNumericDomain)
	}
	if L <= 0 {
		return nil, fmt.Errorf("frame size %d: %w", L, ErrNumericDomain)
	}

	x := centeredAxis(n)
	u := centeredAxis(L)
	A := cblas128.General{Rows: L, Cols: n, Stride: n, Data: make([]complex128, L*n)}
	for a := 0; a < L; a++ {
		ua := u[a] * param / float64(L)
		for k := 0; k < n; k++ {
			A.Data[a*n+k] = cmplx.Exp(complex(0, -2*math.Pi*ua*x[k]/float64(n)))
		}
	}

	M := cblas128.General{Rows: n, Cols: n, Stride: n, Data: make([]complex128, n*n)}
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			M.Data[r*n+c] = complex(shape[r][c], 0)
		}
	}

	C := cblas128.General{Rows: L, Cols: n, Stride: n, Data: make([]complex128, L*n)}
	E := cblas128.General{Rows: L, Cols: L, Stride: L, Data: make([]complex128, L*L)}
	norm := complex(param/float64(n*L), 0)

	// E = norm * A @ M @ A^T
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, A, M, 0, C)
	cblas128.Gemm(blas.NoTrans, blas.Trans, norm, C, A, 0, E)

	out := make([][]complex128, L)
	for a := range out {
		out[a] = E.Data[a*L : (a+1)*L]
	}
	return out, nil
}

// FarFieldIntensity returns |MatrixFourier(shape, param, L)|^2.
func FarFieldIntensity(shape [][]float64, param float64, L int) ([][]float64, error) {
	field, err := MatrixFourier(shape, param, L)
	if err != nil {
		return nil, err
	}
	out := newMatrix(L, L)
	for r := range field {
		for c, v := range field[r] {
			out[r][c] = real(v)*real(v) + imag(v)*imag(v)
		}
	}
	return out, nil
}
