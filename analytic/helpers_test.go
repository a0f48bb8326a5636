package analytic

import (
	"math"
	"testing"
)

// lineGeometry returns three segments whose pairs all share one separation up
// to sign, so the whole primary reduces to a single NRP.
func lineGeometry(t *testing.T, sep [2]float64) *GeometryTables {
	t.Helper()
	in := GeometryInput{
		Pupil:       onesMatrix(4),
		Separations: make([][][2]float64, 3),
		Projection:  [][]int{{0, 1, 1}, {1, 0, 1}, {1, 1, 0}},
		Pairs:       [][2]int{{1, 2}},
	}
	for i := range in.Separations {
		in.Separations[i] = make([][2]float64, 3)
		for j := range in.Separations[i] {
			switch {
			case j > i:
				in.Separations[i][j] = sep
			case j < i:
				in.Separations[i][j] = [2]float64{-sep[0], -sep[1]}
			}
		}
	}
	g, err := NewGeometryTables(3, 4, in)
	if err != nil {
		t.Fatalf("NewGeometryTables failed: %v", err)
	}
	return g
}

// ringGeometry returns the six-segment ring around an empty centre position.
func ringGeometry(t *testing.T, pupilPx int) *GeometryTables {
	t.Helper()
	in, err := HexLayout(1, 10, false, pupilPx)
	if err != nil {
		t.Fatalf("HexLayout failed: %v", err)
	}
	g, err := NewGeometryTables(6, pupilPx, in)
	if err != nil {
		t.Fatalf("NewGeometryTables failed: %v", err)
	}
	return g
}

func ringConfig() Config {
	return Config{
		SegmentCount:  6,
		FlatToFlatM:   1.5,
		PixelSizeNm:   13000,
		WavelengthNm:  640,
		IWA:           4,
		OWA:           10,
		PupilPx:       32,
		ImagePx:       64,
		Sampling:      2,
		DiameterM:     6,
		PixelScale:    2 * math.Pi / 64,
		MaxMode:       11,
		SegmentPx:     16,
		ZoomHalfWidth: 25,
	}
}

type fixedCalibration map[int][]float64

func (f fixedCalibration) Factors(mode Mode) ([]float64, error) {
	v, ok := f[mode.Index]
	if !ok {
		return nil, ErrData
	}
	return v, nil
}

func ringModel(t *testing.T, calib CalibrationSource) *Model {
	t.Helper()
	cfg := ringConfig()
	basis, err := NewHexikeBasis(cfg.SegmentPx, cfg.MaxMode)
	if err != nil {
		t.Fatalf("NewHexikeBasis failed: %v", err)
	}
	m, err := NewModel(cfg, ringGeometry(t, cfg.PupilPx), basis, calib)
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	return m
}

func onesMatrix(n int) [][]float64 {
	m := newMatrix(n, n)
	for r := range m {
		for c := range m[r] {
			m[r][c] = 1
		}
	}
	return m
}

func maxAbsDiff(a, b [][]float64) float64 {
	worst := 0.0
	for r := range a {
		for c := range a[r] {
			worst = math.Max(worst, math.Abs(a[r][c]-b[r][c]))
		}
	}
	return worst
}
