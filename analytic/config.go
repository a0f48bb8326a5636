package analytic

import (
	"fmt"
	"math"
)

// MinFrameSize is the smallest focal-plane grid side the synthesis accepts.
const MinFrameSize = 16

// DefaultZoomHalfWidth is the dark-hole crop half-width used when none is configured.
const DefaultZoomHalfWidth = 25

// Config holds the numeric description of the telescope, coronagraph and sampling.
type Config struct {
	SegmentCount  int     // number of segments in the primary
	FlatToFlatM   float64 // segment flat-to-flat size (m)
	PixelSizeNm   float64 // detector pixel size (nm)
	WavelengthNm  float64 // observing wavelength (nm)
	IWA           float64 // inner working angle (lambda/D)
	OWA           float64 // outer working angle (lambda/D)
	PupilPx       int     // pupil array side (px)
	ImagePx       int     // image array side (px)
	Sampling      float64 // focal-plane pixels per lambda/D
	DiameterM     float64 // telescope diameter (m)
	PixelScale    float64 // fringe phase per pupil unit per focal-plane pixel
	MaxMode       int     // number of local basis terms (Noll, one-based)
	SegmentPx     int     // single-segment grid side (px)
	ZoomHalfWidth int     // dark-hole crop half-width (px)
}

// FrameSize returns the side of the focal-plane grid: floor(PupilPx * Sampling).
// The result is only meaningful for a configuration that passed Validate.
func (c Config) FrameSize() int {
	return int(math.Floor(float64(c.PupilPx) * c.Sampling))
}

// OuterRadiusPx is the outer working angle expressed in focal-plane pixels.
func (c Config) OuterRadiusPx() float64 {
	return c.OWA * c.Sampling
}

// InnerRadiusPx is the inner working angle expressed in focal-plane pixels.
func (c Config) InnerRadiusPx() float64 {
	return c.IWA * c.Sampling
}

// FarFieldParam is the number of lambda/D spanned by the single-segment
// far-field: segment pixel extent divided by the sampling.
func (c Config) FarFieldParam() float64 {
	return float64(c.SegmentPx) / c.Sampling
}

// FocalLengthNm is the effective focal length that places Sampling pixels of
// PixelSizeNm across one lambda/D.
func (c Config) FocalLengthNm() float64 {
	return c.Sampling * c.PixelSizeNm * c.DiameterM * 1e9 / c.WavelengthNm
}

// PupilPixelNm is the size of one pupil pixel projected on the primary.
func (c Config) PupilPixelNm() float64 {
	return c.DiameterM * 1e9 / float64(c.PupilPx)
}

// PixelToRadians converts a pupil-pixel by focal-pixel product into a phase.
func (c Config) PixelToRadians() float64 {
	waveNumber := 2 * math.Pi / c.WavelengthNm
	return c.PupilPixelNm() * c.PixelSizeNm * waveNumber / c.FocalLengthNm()
}

// Validate checks the configuration for values the synthesis cannot work with.
func (c Config) Validate() error {
	if c.SegmentCount < 1 {
		return fmt.Errorf("segment count %d must be at least 1: %w", c.SegmentCount, ErrData)
	}
	if c.MaxMode < 1 {
		return fmt.Errorf("max mode %d must be at least 1: %w", c.MaxMode, ErrData)
	}
	if c.IWA < 0 || c.OWA <= c.IWA {
		return fmt.Errorf("working angles must satisfy 0 <= IWA < OWA, got IWA=%g OWA=%g: %w", c.IWA, c.OWA, ErrData)
	}

	positive := []struct {
		name  string
		value float64
	}{
		{"sampling", c.Sampling},
		{"pixel scale", c.PixelScale},
		{"wavelength", c.WavelengthNm},
		{"diameter", c.DiameterM},
		{"pixel size", c.PixelSizeNm},
	}
	for _, p := range positive {
		if !(p.value > 0) || math.IsInf(p.value, 0) {
			return fmt.Errorf("%s must be positive and finite, got %g: %w", p.name, p.value, ErrNumericDomain)
		}
	}
	if c.PupilPx <= 0 || c.SegmentPx <= 0 {
		return fmt.Errorf("pupil (%d px) and segment (%d px) grids must be non-empty: %w", c.PupilPx, c.SegmentPx, ErrNumericDomain)
	}

	frame := c.FrameSize()
	if frame < MinFrameSize {
		return fmt.Errorf("frame size %d (pupil %d px x sampling %g) is below the minimum of %d: %w",
			frame, c.PupilPx, c.Sampling, MinFrameSize, ErrNumericDomain)
	}

	need := int(math.Ceil(c.OuterRadiusPx())) + 1
	if c.ZoomHalfWidth < need {
		return fmt.Errorf("zoom half-width %d px does not contain the dark hole (needs at least %d px): %w",
			c.ZoomHalfWidth, need, ErrNumericDomain)
	}
	if 2*c.ZoomHalfWidth > frame {
		return fmt.Errorf("zoom half-width %d px does not fit in a %d px frame: %w", c.ZoomHalfWidth, frame, ErrNumericDomain)
	}
	return nil
}
