package analytic

import (
	"errors"
	"testing"
)

func TestHexLayoutRing(t *testing.T) {
	g := ringGeometry(t, 32)

	// Six ring segments: 15 pairs over adjacent, second-neighbour and
	// opposite separations, three directions each.
	if g.SegmentCount() != 6 {
		t.Errorf("expected 6 segments, got %d", g.SegmentCount())
	}
	if g.PairCount() != 15 {
		t.Errorf("expected 15 pairs, got %d", g.PairCount())
	}
	if g.NRPCount() != 9 {
		t.Errorf("expected 9 NRPs, got %d", g.NRPCount())
	}

	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			if g.NRPIndex(i, j) != g.NRPIndex(j, i) {
				t.Errorf("projection not symmetric at (%d,%d)", i, j)
			}
			if i != j && g.NRPIndex(i, j) == 0 {
				t.Errorf("pair (%d,%d) has no NRP", i, j)
			}
		}
	}

	open := 0
	for _, row := range g.Pupil() {
		for _, v := range row {
			if v != 0 {
				open++
			}
		}
	}
	if open == 0 {
		t.Errorf("pupil mask is empty")
	}
	if g.Pupil()[16][16] != 0 {
		t.Errorf("pupil centre should be obscured")
	}
}

func TestHexLayoutWithCenter(t *testing.T) {
	in, err := HexLayout(1, 1, true, 16)
	if err != nil {
		t.Fatalf("HexLayout failed: %v", err)
	}
	if len(in.Separations) != 7 {
		t.Errorf("expected 7 segments, got %d", len(in.Separations))
	}

	_, err = HexLayout(1, 0, true, 16)
	if !errors.Is(err, ErrNumericDomain) {
		t.Errorf("zero pitch: expected ErrNumericDomain, got %v", err)
	}
}

func TestGeometryRepresentativeSeparation(t *testing.T) {
	g := lineGeometry(t, [2]float64{2, 1})
	if got, ok := g.NRPSeparation(1); !ok || got != [2]float64{2, 1} {
		t.Errorf("expected representative separation (2,1), got %v (ok=%v)", got, ok)
	}
	if got, ok := g.SeparationVector(2, 0); !ok || got != [2]float64{-2, -1} {
		t.Errorf("expected separation (-2,-1) from segment 2 to 0, got %v (ok=%v)", got, ok)
	}
	if g.NRPIndex(1, 1) != 0 {
		t.Errorf("diagonal must not map to an NRP")
	}
}

func TestGeometryRejectsInconsistentTables(t *testing.T) {
	base := func() GeometryInput {
		in, err := HexLayout(1, 10, false, 16)
		if err != nil {
			t.Fatalf("HexLayout failed: %v", err)
		}
		return in
	}

	tests := []struct {
		name   string
		modify func(*GeometryInput) (segments, pupilPx int)
	}{
		{"segment count", func(in *GeometryInput) (int, int) { return 7, 16 }},
		{"pupil size", func(in *GeometryInput) (int, int) { return 6, 32 }},
		{"short separation row", func(in *GeometryInput) (int, int) {
			in.Separations[2] = in.Separations[2][:5]
			return 6, 16
		}},
		{"projection out of range", func(in *GeometryInput) (int, int) {
			in.Projection[0][1] = 99
			return 6, 16
		}},
		{"representative pair outside primary", func(in *GeometryInput) (int, int) {
			in.Pairs[0] = [2]int{0, 7}
			return 6, 16
		}},
		{"representative pair in the wrong NRP", func(in *GeometryInput) (int, int) {
			in.Pairs[0], in.Pairs[1] = in.Pairs[1], in.Pairs[0]
			return 6, 16
		}},
		{"separation disagrees with its NRP", func(in *GeometryInput) (int, int) {
			// Move a non-representative pair onto NRP 1 without moving its separation.
			for i := 0; i < 6; i++ {
				for j := i + 1; j < 6; j++ {
					if in.Projection[i][j] != 1 && [2]int{i + 1, j + 1} != in.Pairs[in.Projection[i][j]-1] {
						in.Projection[i][j] = 1
						in.Projection[j][i] = 1
						return 6, 16
					}
				}
			}
			t.Fatalf("no pair to corrupt")
			return 0, 0
		}},
	}

	for _, tt := range tests {
		in := base()
		segments, pupilPx := tt.modify(&in)
		_, err := NewGeometryTables(segments, pupilPx, in)
		if !errors.Is(err, ErrData) {
			t.Errorf("%s: expected ErrData, got %v", tt.name, err)
		}
	}
}

func TestProjectionFromTriples(t *testing.T) {
	proj, err := ProjectionFromTriples(3, [][3]int{{1, 2, 1}, {3, 2, 2}, {1, 3, 1}})
	if err != nil {
		t.Fatalf("ProjectionFromTriples failed: %v", err)
	}
	expected := [][]int{{0, 1, 1}, {1, 0, 2}, {1, 2, 0}}
	for i := range expected {
		for j := range expected[i] {
			if proj[i][j] != expected[i][j] {
				t.Errorf("proj[%d][%d]: expected %d, got %d", i, j, expected[i][j], proj[i][j])
			}
		}
	}

	_, err = ProjectionFromTriples(3, [][3]int{{1, 2, 1}, {2, 1, 2}})
	if !errors.Is(err, ErrData) {
		t.Errorf("conflicting rows: expected ErrData, got %v", err)
	}
	_, err = ProjectionFromTriples(3, [][3]int{{1, 1, 1}})
	if !errors.Is(err, ErrData) {
		t.Errorf("self pair: expected ErrData, got %v", err)
	}
}

func TestGeometryAccessorsOutOfRange(t *testing.T) {
	g := lineGeometry(t, [2]float64{2, 1})
	for _, q := range []int{0, -1, 2} {
		if _, ok := g.NRPSeparation(q); ok {
			t.Errorf("NRPSeparation(%d) should be out of range", q)
		}
	}
	for _, pair := range [][2]int{{-1, 0}, {0, 3}, {3, 3}} {
		if _, ok := g.SeparationVector(pair[0], pair[1]); ok {
			t.Errorf("SeparationVector%v should be out of range", pair)
		}
		if q := g.NRPIndex(pair[0], pair[1]); q != 0 {
			t.Errorf("NRPIndex%v: expected 0, got %d", pair, q)
		}
	}
}
