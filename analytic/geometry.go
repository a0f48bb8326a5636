package analytic

import (
	"fmt"
	"math"
)

// GeometryInput is the raw pupil geometry as delivered by the table loaders.
// Segment numbers in Pairs and NRP numbers in Projection are one-based, as
// written by the tools that derive them; NewGeometryTables converts them.
type GeometryInput struct {
	Pupil       [][]float64    // PupilPx x PupilPx, 1 where the aperture is open
	Separations [][][2]float64 // [i][j] -> displacement of segment j from segment i
	Projection  [][]int        // [i][j] -> NRP number in [1, Q], 0 when the pair is not listed
	Pairs       [][2]int       // one representative segment pair per NRP, row q-1 for NRP q
}

// pairTerm is one entry of the flat segment-pair -> NRP table, zero-based.
type pairTerm struct {
	i, j, q int
}

// GeometryTables is the immutable pupil geometry used by every computation.
// It is safe for concurrent use once constructed.
type GeometryTables struct {
	segments int
	pupil    [][]float64
	sep      [][][2]float64
	proj     [][]int
	terms    []pairTerm
	repSep   [][2]float64
}

// sepTolerance is the relative tolerance used when checking that all pairs of
// an NRP share the representative separation up to sign.
const sepTolerance = 1e-6

// NewGeometryTables validates in against the configured segment count and pupil
// size and builds the flat pair table. Any inconsistency is reported as ErrData.
func NewGeometryTables(segmentCount, pupilPx int, in GeometryInput) (*GeometryTables, error) {
	if segmentCount < 1 {
		return nil, fmt.Errorf("segment count %d: %w", segmentCount, ErrData)
	}

	h, w, err := rectSize(in.Pupil)
	if err != nil {
		return nil, fmt.Errorf("pupil: %v: %w", err, ErrData)
	}
	if h != pupilPx || w != pupilPx {
		return nil, fmt.Errorf("pupil is %dx%d, expected %dx%d: %w", h, w, pupilPx, pupilPx, ErrData)
	}

	if len(in.Separations) != segmentCount {
		return nil, fmt.Errorf("separation table has %d rows, expected %d: %w", len(in.Separations), segmentCount, ErrData)
	}
	for i, row := range in.Separations {
		if len(row) != segmentCount {
			return nil, fmt.Errorf("separation table row %d has %d entries, expected %d: %w", i, len(row), segmentCount, ErrData)
		}
	}

	if len(in.Projection) != segmentCount {
		return nil, fmt.Errorf("projection table has %d rows, expected %d: %w", len(in.Projection), segmentCount, ErrData)
	}
	for i, row := range in.Projection {
		if len(row) != segmentCount {
			return nil, fmt.Errorf("projection table row %d has %d entries, expected %d: %w", i, len(row), segmentCount, ErrData)
		}
	}

	nrp := len(in.Pairs)
	g := &GeometryTables{
		segments: segmentCount,
		pupil:    newMatrix(pupilPx, pupilPx),
		sep:      make([][][2]float64, segmentCount),
		proj:     make([][]int, segmentCount),
		repSep:   make([][2]float64, nrp),
	}
	for r := range in.Pupil {
		for c, v := range in.Pupil[r] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("pupil pixel (%d,%d) is not finite: %w", r, c, ErrData)
			}
			g.pupil[r][c] = v
		}
	}
	for i := 0; i < segmentCount; i++ {
		g.sep[i] = append([][2]float64(nil), in.Separations[i]...)
		g.proj[i] = append([]int(nil), in.Projection[i]...)
	}

	// Representative separations, one per NRP.
	for q, pair := range in.Pairs {
		a, b := pair[0]-1, pair[1]-1
		if a < 0 || a >= segmentCount || b < 0 || b >= segmentCount || a == b {
			return nil, fmt.Errorf("NRP %d representative pair (%d,%d) is not a valid segment pair: %w", q+1, pair[0], pair[1], ErrData)
		}
		lo, hi := a, b
		if lo > hi {
			lo, hi = hi, lo
		}
		if got := g.proj[lo][hi]; got != q+1 {
			return nil, fmt.Errorf("NRP %d representative pair (%d,%d) projects to NRP %d: %w", q+1, pair[0], pair[1], got, ErrData)
		}
		g.repSep[q] = g.sep[a][b]
	}

	// Flat (i, j, q) table over the upper triangle.
	for i := 0; i < segmentCount; i++ {
		for j := i + 1; j < segmentCount; j++ {
			q := g.proj[i][j]
			if q == 0 {
				continue
			}
			if q < 0 || q > nrp {
				return nil, fmt.Errorf("pair (%d,%d) projects to NRP %d outside [1, %d]: %w", i+1, j+1, q, nrp, ErrData)
			}
			if !sameUpToSign(g.sep[i][j], g.repSep[q-1]) {
				return nil, fmt.Errorf("pair (%d,%d) separation %v does not match NRP %d separation %v up to sign: %w",
					i+1, j+1, g.sep[i][j], q, g.repSep[q-1], ErrData)
			}
			g.terms = append(g.terms, pairTerm{i: i, j: j, q: q - 1})
		}
	}

	return g, nil
}

func sameUpToSign(a, b [2]float64) bool {
	tol := sepTolerance * math.Max(1, math.Hypot(b[0], b[1]))
	plus := math.Hypot(a[0]-b[0], a[1]-b[1]) <= tol
	minus := math.Hypot(a[0]+b[0], a[1]+b[1]) <= tol
	return plus || minus
}

// SegmentCount returns the number of segments.
func (g *GeometryTables) SegmentCount() int { return g.segments }

// NRPCount returns Q, the number of non-redundant pairs.
func (g *GeometryTables) NRPCount() int { return len(g.repSep) }

// PairCount returns the number of segment pairs (i<j) mapped to an NRP.
func (g *GeometryTables) PairCount() int { return len(g.terms) }

// SeparationVector returns the displacement between zero-based segments i and j.
// ok is false when either index is outside [0, SegmentCount).
func (g *GeometryTables) SeparationVector(i, j int) (sep [2]float64, ok bool) {
	if i < 0 || i >= g.segments || j < 0 || j >= g.segments {
		return sep, false
	}
	return g.sep[i][j], true
}

// NRPIndex returns the one-based NRP number of the unordered pair (i, j), or 0
// when the pair is not listed or either zero-based segment is out of range.
func (g *GeometryTables) NRPIndex(i, j int) int {
	if i == j || i < 0 || i >= g.segments || j < 0 || j >= g.segments {
		return 0
	}
	if i > j {
		i, j = j, i
	}
	return g.proj[i][j]
}

// NRPSeparation returns the representative separation of the one-based NRP q.
// ok is false when q is outside [1, NRPCount].
func (g *GeometryTables) NRPSeparation(q int) (sep [2]float64, ok bool) {
	if q < 1 || q > len(g.repSep) {
		return sep, false
	}
	return g.repSep[q-1], true
}

// Pupil returns a copy of the pupil mask.
func (g *GeometryTables) Pupil() [][]float64 {
	out := newMatrix(len(g.pupil), len(g.pupil))
	for r := range g.pupil {
		copy(out[r], g.pupil[r])
	}
	return out
}

// ProjectionFromTriples builds a projection table from (segment i, segment j, NRP)
// rows, all one-based, as an alternative to a full segment x segment matrix.
func ProjectionFromTriples(segmentCount int, triples [][3]int) ([][]int, error) {
	proj := make([][]int, segmentCount)
	for i := range proj {
		proj[i] = make([]int, segmentCount)
	}
	for k, t := range triples {
		a, b, q := t[0]-1, t[1]-1, t[2]
		if a < 0 || a >= segmentCount || b < 0 || b >= segmentCount || a == b || q < 1 {
			return nil, fmt.Errorf("projection row %d (%d,%d,%d) is invalid: %w", k, t[0], t[1], t[2], ErrData)
		}
		if a > b {
			a, b = b, a
		}
		if prev := proj[a][b]; prev != 0 && prev != q {
			return nil, fmt.Errorf("pair (%d,%d) assigned to NRP %d and %d: %w", a+1, b+1, prev, q, ErrData)
		}
		proj[a][b] = q
		proj[b][a] = q
	}
	return proj, nil
}
