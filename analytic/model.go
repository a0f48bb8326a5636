// Package analytic predicts the coronagraphic intensity produced by one local
// aberration mode applied with per-segment coefficients across a segmented
// primary mirror.
//
// The pairwise interference sum over segments is collapsed onto non-redundant
// pairs (NRPs): segment pairs sharing a separation vector share one cosine
// fringe. The fringe sum is multiplied by the far field of a single aberrated
// segment and cropped to the coronagraph dark hole.
//
// Geometry, basis and dark hole are built once and are read-only afterwards, so
// a Model may serve concurrent Compute calls.
package analytic

import (
	"fmt"
	"math"
)

// Result holds the outputs of one computation.
type Result struct {
	Mode         Mode
	Intensity    [][]float64 // full frame, FrameSize x FrameSize
	Zoom         [][]float64 // raw intensity cropped to the dark-hole window
	DarkHole     [][]float64 // Zoom masked to the annulus
	MeanContrast float64     // mean intensity over the annulus
	Generic      []float64   // aggregated coefficient per NRP
	Sum1         float64     // sum of squared conditioned coefficients
}

// Model ties configuration, geometry, basis and calibration together.
type Model struct {
	cfg      Config
	geom     *GeometryTables
	basis    *Basis
	calib    CalibrationSource
	darkHole *DarkHole
	frame    int
}

// NewModel validates cfg and checks that geom and basis agree with it.
// calib may be nil when calibrated runs are never requested.
func NewModel(cfg Config, geom *GeometryTables, basis *Basis, calib CalibrationSource) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if geom == nil || basis == nil {
		return nil, fmt.Errorf("geometry and basis are required: %w", ErrData)
	}
	if geom.SegmentCount() != cfg.SegmentCount {
		return nil, fmt.Errorf("geometry has %d segments, configuration %d: %w", geom.SegmentCount(), cfg.SegmentCount, ErrData)
	}
	if n := len(geom.pupil); n != cfg.PupilPx {
		return nil, fmt.Errorf("geometry pupil is %d px, configuration %d px: %w", n, cfg.PupilPx, ErrData)
	}
	if basis.Size() != cfg.SegmentPx {
		return nil, fmt.Errorf("basis grid is %d px, configuration %d px: %w", basis.Size(), cfg.SegmentPx, ErrData)
	}
	if basis.Terms() < cfg.MaxMode {
		return nil, fmt.Errorf("basis has %d terms, configuration needs %d: %w", basis.Terms(), cfg.MaxMode, ErrData)
	}

	frame := cfg.FrameSize()
	dh, err := NewDarkHole(frame, cfg.InnerRadiusPx(), cfg.OuterRadiusPx(), cfg.ZoomHalfWidth)
	if err != nil {
		return nil, err
	}

	return &Model{
		cfg:      cfg,
		geom:     geom,
		basis:    basis,
		calib:    calib,
		darkHole: dh,
		frame:    frame,
	}, nil
}

// Config returns the configuration the model was built with.
func (m *Model) Config() Config { return m.cfg }

// FrameSize returns the side of the full intensity map.
func (m *Model) FrameSize() int { return m.frame }

// DarkHole returns the dark-hole region used to crop results.
func (m *Model) DarkHole() *DarkHole { return m.darkHole }

// Geometry returns the geometry tables.
func (m *Model) Geometry() *GeometryTables { return m.geom }

// Compute predicts the intensity for Noll mode modeIndex with per-segment
// coefficients coef. With calibrate set, coefficients are scaled by the square
// root of the calibration factors for the mode.
func (m *Model) Compute(modeIndex int, coef []float64, calibrate bool) (*Result, error) {
	mode, err := ResolveMode(modeIndex, m.cfg.MaxMode)
	if err != nil {
		return nil, err
	}
	if len(coef) != m.cfg.SegmentCount {
		return nil, fmt.Errorf("%d coefficients for %d segments: %w", len(coef), m.cfg.SegmentCount, ErrData)
	}

	var factors []float64
	if calibrate {
		if m.calib == nil {
			return nil, fmt.Errorf("calibration requested but no calibration source is configured: %w", ErrData)
		}
		factors, err = m.calib.Factors(mode)
		if err != nil {
			return nil, fmt.Errorf("loading calibration for %s: %w", mode, err)
		}
	}

	conditioned, err := Prepare(mode, coef, factors)
	if err != nil {
		return nil, err
	}

	generic, sum1, err := Aggregate(conditioned, m.geom)
	if err != nil {
		return nil, err
	}

	field, err := Synthesize(generic, sum1, m.geom, m.cfg.PixelScale, m.frame)
	if err != nil {
		return nil, err
	}

	shape, err := m.basis.Shape(mode)
	if err != nil {
		return nil, err
	}
	psf, err := FarFieldIntensity(shape, m.cfg.FarFieldParam(), m.frame)
	if err != nil {
		return nil, err
	}

	intensity := newMatrix(m.frame, m.frame)
	for r := range intensity {
		for c := range intensity[r] {
			intensity[r][c] = math.Abs(psf[r][c] * field[r][c])
		}
	}

	zoom, dh, mean, err := m.darkHole.Extract(intensity)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(mean) {
		return nil, fmt.Errorf("mean contrast is not a number: %w", ErrNumericDomain)
	}

	return &Result{
		Mode:         mode,
		Intensity:    intensity,
		Zoom:         zoom,
		DarkHole:     dh,
		MeanContrast: mean,
		Generic:      generic,
		Sum1:         sum1,
	}, nil
}
