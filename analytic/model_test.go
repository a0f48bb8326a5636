package analytic

import (
	"errors"
	"math"
	"sync"
	"testing"
)

var ringCoefficients = []float64{0.3, -0.2, 0.5, 0.1, -0.4, 0.25}

func TestModelCompute(t *testing.T) {
	m := ringModel(t, nil)

	res, err := m.Compute(2, ringCoefficients, false)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if res.Mode.Kind != HigherOrder || res.Mode.Index != 2 {
		t.Errorf("unexpected mode %+v", res.Mode)
	}
	if len(res.Intensity) != 64 || len(res.Intensity[0]) != 64 {
		t.Errorf("intensity is %dx%d, expected 64x64", len(res.Intensity), len(res.Intensity[0]))
	}
	if len(res.Zoom) != 50 || len(res.DarkHole) != 50 {
		t.Errorf("dark-hole crop is %d px, expected 50", len(res.Zoom))
	}
	if len(res.Generic) != 9 {
		t.Errorf("expected 9 generic coefficients, got %d", len(res.Generic))
	}
	if !(res.MeanContrast > 0) {
		t.Errorf("expected a positive mean contrast, got %g", res.MeanContrast)
	}

	peak := 0.0
	for _, row := range res.Intensity {
		for _, v := range row {
			peak = math.Max(peak, v)
		}
	}
	for r, row := range res.Intensity {
		for c, v := range row {
			if v < -1e-12*peak {
				t.Fatalf("negative intensity %g at (%d,%d)", v, r, c)
			}
		}
	}
}

// partialLineModel places three segments on a line and lists only the
// adjacent pairs, leaving (1,3) out of the projection.
func partialLineModel(t *testing.T) *Model {
	t.Helper()
	cfg := ringConfig()
	cfg.SegmentCount = 3

	sep := [2]float64{10, 0}
	in := GeometryInput{
		Pupil:       onesMatrix(cfg.PupilPx),
		Separations: make([][][2]float64, 3),
		Projection:  [][]int{{0, 1, 0}, {1, 0, 1}, {0, 1, 0}},
		Pairs:       [][2]int{{1, 2}},
	}
	for i := range in.Separations {
		in.Separations[i] = make([][2]float64, 3)
		for j := range in.Separations[i] {
			d := float64(j - i)
			in.Separations[i][j] = [2]float64{d * sep[0], d * sep[1]}
		}
	}

	g, err := NewGeometryTables(3, cfg.PupilPx, in)
	if err != nil {
		t.Fatalf("NewGeometryTables failed: %v", err)
	}
	basis, err := NewHexikeBasis(cfg.SegmentPx, cfg.MaxMode)
	if err != nil {
		t.Fatalf("NewHexikeBasis failed: %v", err)
	}
	m, err := NewModel(cfg, g, basis, nil)
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	return m
}

func TestModelIntensityIsMagnitude(t *testing.T) {
	m := partialLineModel(t)
	coef := []float64{1, 1, 1}

	res, err := m.Compute(2, coef, false)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	// 3 + 4cos(...) dips below zero, so the signed product would too.
	field, err := Synthesize(res.Generic, res.Sum1, m.Geometry(), m.Config().PixelScale, m.FrameSize())
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	mode, _ := ResolveMode(2, m.Config().MaxMode)
	shape, err := m.basis.Shape(mode)
	if err != nil {
		t.Fatalf("Shape failed: %v", err)
	}
	psf, err := FarFieldIntensity(shape, m.Config().FarFieldParam(), m.FrameSize())
	if err != nil {
		t.Fatalf("FarFieldIntensity failed: %v", err)
	}

	negativeField := 0
	for r := range res.Intensity {
		for c, v := range res.Intensity[r] {
			if field[r][c] < 0 {
				negativeField++
			}
			if v < 0 {
				t.Fatalf("negative intensity %g at (%d,%d)", v, r, c)
			}
			if want := math.Abs(psf[r][c] * field[r][c]); math.Abs(v-want) > 1e-12*math.Max(1, want) {
				t.Fatalf("intensity at (%d,%d) is %g, expected |psf*field| = %g", r, c, v, want)
			}
		}
	}
	if negativeField == 0 {
		t.Fatalf("expected the partial projection to give a negative field somewhere")
	}
	for _, row := range res.DarkHole {
		for _, v := range row {
			if v < 0 {
				t.Fatalf("negative dark-hole value %g", v)
			}
		}
	}
}

func TestModelPistonOffsetIsDark(t *testing.T) {
	m := ringModel(t, nil)
	res, err := m.Compute(1, []float64{2, 2, 2, 2, 2, 2}, false)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	for r, row := range res.Intensity {
		for c, v := range row {
			if v != 0 {
				t.Fatalf("global piston should be invisible, got %g at (%d,%d)", v, r, c)
			}
		}
	}
	if res.MeanContrast != 0 {
		t.Errorf("expected zero mean contrast, got %g", res.MeanContrast)
	}
}

func TestModelSingleSegment(t *testing.T) {
	m := ringModel(t, nil)
	coef := []float64{0, 0, 0, 0.5, 0, 0}

	res, err := m.Compute(4, coef, false)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	// No pair is active: the image is the single-segment far field times c^2.
	shape, err := m.basis.Shape(Mode{Kind: HigherOrder, Index: 4})
	if err != nil {
		t.Fatalf("Shape failed: %v", err)
	}
	psf, err := FarFieldIntensity(shape, m.Config().FarFieldParam(), m.FrameSize())
	if err != nil {
		t.Fatalf("FarFieldIntensity failed: %v", err)
	}
	for r := range psf {
		for c := range psf[r] {
			psf[r][c] *= 0.25
		}
	}
	if d := maxAbsDiff(res.Intensity, psf); d > 1e-12 {
		t.Errorf("single-segment image differs from scaled far field by %g", d)
	}
}

func TestModelQuadraticInCoefficients(t *testing.T) {
	m := ringModel(t, nil)
	base, err := m.Compute(3, ringCoefficients, false)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	doubled := make([]float64, len(ringCoefficients))
	for i, c := range ringCoefficients {
		doubled[i] = 2 * c
	}
	res, err := m.Compute(3, doubled, false)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if math.Abs(res.MeanContrast-4*base.MeanContrast) > 1e-9*base.MeanContrast {
		t.Errorf("doubling coefficients: expected mean %g, got %g", 4*base.MeanContrast, res.MeanContrast)
	}
}

func TestModelCalibration(t *testing.T) {
	calib := fixedCalibration{
		5: {1, 1, 1, 1, 1, 1},
		6: {4, 4, 4, 4, 4, 4},
	}
	m := ringModel(t, calib)

	plain, err := m.Compute(5, ringCoefficients, false)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	unit, err := m.Compute(5, ringCoefficients, true)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if d := maxAbsDiff(plain.Intensity, unit.Intensity); d != 0 {
		t.Errorf("unit calibration changed the image by %g", d)
	}

	plain6, err := m.Compute(6, ringCoefficients, false)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	scaled, err := m.Compute(6, ringCoefficients, true)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if math.Abs(scaled.MeanContrast-4*plain6.MeanContrast) > 1e-9*plain6.MeanContrast {
		t.Errorf("factor 4 calibration: expected mean %g, got %g", 4*plain6.MeanContrast, scaled.MeanContrast)
	}

	if _, err := m.Compute(7, ringCoefficients, true); !errors.Is(err, ErrData) {
		t.Errorf("missing calibration table: expected ErrData, got %v", err)
	}
	if _, err := ringModel(t, nil).Compute(5, ringCoefficients, true); !errors.Is(err, ErrData) {
		t.Errorf("no calibration source: expected ErrData, got %v", err)
	}
}

func TestModelRejectsBadRequests(t *testing.T) {
	m := ringModel(t, nil)
	if _, err := m.Compute(12, ringCoefficients, false); !errors.Is(err, ErrUnsupportedMode) {
		t.Errorf("mode past MaxMode: expected ErrUnsupportedMode, got %v", err)
	}
	if _, err := m.Compute(0, ringCoefficients, false); !errors.Is(err, ErrUnsupportedMode) {
		t.Errorf("mode 0: expected ErrUnsupportedMode, got %v", err)
	}
	if _, err := m.Compute(2, ringCoefficients[:5], false); !errors.Is(err, ErrData) {
		t.Errorf("short coefficients: expected ErrData, got %v", err)
	}
}

func TestNewModelChecksConsistency(t *testing.T) {
	cfg := ringConfig()
	geom := ringGeometry(t, cfg.PupilPx)

	small, err := NewHexikeBasis(12, cfg.MaxMode)
	if err != nil {
		t.Fatalf("NewHexikeBasis failed: %v", err)
	}
	if _, err := NewModel(cfg, geom, small, nil); !errors.Is(err, ErrData) {
		t.Errorf("basis grid mismatch: expected ErrData, got %v", err)
	}

	short, err := NewHexikeBasis(cfg.SegmentPx, 4)
	if err != nil {
		t.Fatalf("NewHexikeBasis failed: %v", err)
	}
	if _, err := NewModel(cfg, geom, short, nil); !errors.Is(err, ErrData) {
		t.Errorf("too few basis terms: expected ErrData, got %v", err)
	}

	cfg.SegmentCount = 7
	full, err := NewHexikeBasis(cfg.SegmentPx, cfg.MaxMode)
	if err != nil {
		t.Fatalf("NewHexikeBasis failed: %v", err)
	}
	if _, err := NewModel(cfg, geom, full, nil); !errors.Is(err, ErrData) {
		t.Errorf("segment count mismatch: expected ErrData, got %v", err)
	}

	cfg = ringConfig()
	cfg.Sampling = 0
	if _, err := NewModel(cfg, geom, full, nil); !errors.Is(err, ErrNumericDomain) {
		t.Errorf("zero sampling: expected ErrNumericDomain, got %v", err)
	}
}

func TestModelConcurrentCompute(t *testing.T) {
	m := ringModel(t, nil)
	reference, err := m.Compute(8, ringCoefficients, false)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	const workers = 8
	results := make([]*Result, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			results[w], errs[w] = m.Compute(8, ringCoefficients, false)
		}(w)
	}
	wg.Wait()

	for w := 0; w < workers; w++ {
		if errs[w] != nil {
			t.Fatalf("worker %d: %v", w, errs[w])
		}
		if d := maxAbsDiff(results[w].Intensity, reference.Intensity); d != 0 {
			t.Errorf("worker %d differs from the sequential result by %g", w, d)
		}
	}
}
