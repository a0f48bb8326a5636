package analytic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Basis holds the segment aperture and its local aberration modes, sampled once
// on a SegmentPx x SegmentPx grid. It is read-only after construction.
type Basis struct {
	npix  int
	mask  []float64   // hexagonal segment aperture, 0/1
	terms [][]float64 // orthonormal hexikes, terms[j-1] for Noll j, zero outside the aperture
}

// NewHexikeBasis samples a hexagonal segment on an npix grid and builds the
// first maxMode hexikes: Noll-ordered Zernike polynomials orthonormalised over
// the hexagon by Gram-Schmidt, each scaled to unit mean square on the aperture.
func NewHexikeBasis(npix, maxMode int) (*Basis, error) {
	if npix < 3 {
		return nil, fmt.Errorf("segment grid of %d px is too small: %w", npix, ErrNumericDomain)
	}
	if maxMode < 1 {
		return nil, fmt.Errorf("basis needs at least one term, got %d: %w", maxMode, ErrData)
	}

	size := npix * npix
	rho := make([]float64, size)
	theta := make([]float64, size)
	mask := make([]float64, size)
	half := float64(npix-1) / 2
	for r := 0; r < npix; r++ {
		y := (float64(r) - half) / half
		for c := 0; c < npix; c++ {
			x := (float64(c) - half) / half
			k := r*npix + c
			rho[k] = math.Hypot(x, y)
			theta[k] = math.Atan2(y, x)
			if insideHexagon(x, y) {
				mask[k] = 1
			}
		}
	}
	area := floats.Sum(mask)

	b := &Basis{
		npix:  npix,
		mask:  mask,
		terms: make([][]float64, maxMode),
	}
	for j := 1; j <= maxMode; j++ {
		v := make([]float64, size)
		for k := range v {
			if mask[k] != 0 {
				v[k] = zernike(j, rho[k], theta[k])
			}
		}
		for _, prev := range b.terms[:j-1] {
			floats.AddScaled(v, -floats.Dot(v, prev)/area, prev)
		}
		norm := math.Sqrt(floats.Dot(v, v) / area)
		if norm < 1e-10 {
			return nil, fmt.Errorf("hexike %d is degenerate on a %d px grid: %w", j, npix, ErrNumericDomain)
		}
		floats.Scale(1/norm, v)
		b.terms[j-1] = v
	}
	return b, nil
}

// Size returns the grid side in pixels.
func (b *Basis) Size() int { return b.npix }

// Terms returns the number of modes available.
func (b *Basis) Terms() int { return len(b.terms) }

// Shape returns the single-segment aberrated shape for mode: the bare aperture
// for piston, the aperture times the hexike otherwise.
func (b *Basis) Shape(mode Mode) ([][]float64, error) {
	switch mode.Kind {
	case Piston:
		return Reshape1DTo2D(b.mask, b.npix, b.npix)
	case HigherOrder:
		if mode.Index < 2 || mode.Index > len(b.terms) {
			return nil, fmt.Errorf("mode %d not in a %d-term basis: %w", mode.Index, len(b.terms), ErrUnsupportedMode)
		}
		shape := make([]float64, len(b.mask))
		for k, m := range b.mask {
			shape[k] = m * b.terms[mode.Index-1][k]
		}
		return Reshape1DTo2D(shape, b.npix, b.npix)
	default:
		return nil, fmt.Errorf("unknown mode kind %d: %w", mode.Kind, ErrUnsupportedMode)
	}
}

// zernike evaluates the unit-RMS (over the unit disk) Zernike polynomial of Noll index j.
func zernike(j int, rho, theta float64) float64 {
	n, m := nollToNM(j)
	radial := zernikeRadial(n, m, rho)
	switch {
	case m == 0:
		return math.Sqrt(float64(n+1)) * radial
	case m > 0:
		return math.Sqrt(2*float64(n+1)) * radial * math.Cos(float64(m)*theta)
	default:
		return math.Sqrt(2*float64(n+1)) * radial * math.Sin(float64(-m)*theta)
	}
}

func zernikeRadial(n, m int, rho float64) float64 {
	if m < 0 {
		m = -m
	}
	sum := 0.0
	for k := 0; k <= (n-m)/2; k++ {
		c := factorial(n-k) / (factorial(k) * factorial((n+m)/2-k) * factorial((n-m)/2-k))
		if k%2 == 1 {
			c = -c
		}
		sum += c * math.Pow(rho, float64(n-2*k))
	}
	return sum
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}
