package analytic

import "fmt"

// ModeKind tags the two code paths a local aberration can take.
type ModeKind int

const (
	// Piston is a uniform phase offset over the segment.
	Piston ModeKind = iota
	// HigherOrder is any mode with spatial structure across the segment.
	HigherOrder
)

// Mode is a local aberration mode in the one-based Noll convention
// (1 = piston, 2 = tip, 3 = tilt, ...).
type Mode struct {
	Kind  ModeKind
	Index int
}

var nollNames = map[int]string{
	1:  "piston",
	2:  "tip",
	3:  "tilt",
	4:  "defocus",
	5:  "oblique_astigmatism",
	6:  "vertical_astigmatism",
	7:  "vertical_coma",
	8:  "horizontal_coma",
	9:  "vertical_trefoil",
	10: "oblique_trefoil",
	11: "primary_spherical",
	12: "vertical_secondary_astigmatism",
	13: "oblique_secondary_astigmatism",
	14: "vertical_quadrafoil",
	15: "oblique_quadrafoil",
}

// ResolveMode maps a Noll index onto a Mode. Every index in [1, maxMode] is
// supported; anything else fails with ErrUnsupportedMode.
func ResolveMode(index, maxMode int) (Mode, error) {
	switch {
	case index == 1:
		return Mode{Kind: Piston, Index: 1}, nil
	case index >= 2 && index <= maxMode:
		return Mode{Kind: HigherOrder, Index: index}, nil
	default:
		return Mode{}, fmt.Errorf("mode %d outside supported range [1, %d]: %w", index, maxMode, ErrUnsupportedMode)
	}
}

// Name returns the conventional name of the mode, or "zernike<j>" past the named range.
func (m Mode) Name() string {
	if name, ok := nollNames[m.Index]; ok {
		return name
	}
	return fmt.Sprintf("zernike%d", m.Index)
}

// Convention names the indexing scheme.
func (m Mode) Convention() string {
	return "Noll"
}

func (m Mode) String() string {
	return fmt.Sprintf("%s (%s %d)", m.Name(), m.Convention(), m.Index)
}

// nollToNM converts a one-based Noll index to radial order n and signed azimuthal
// frequency m. Even j carry cosine terms (m > 0), odd j sine terms (m < 0).
func nollToNM(j int) (int, int) {
	n := 0
	for (n+1)*(n+2)/2 < j {
		n++
	}
	mPrime := j - n*(n+1)/2
	var m int
	if n%2 == 0 {
		m = 2 * (mPrime / 2)
	} else {
		m = 1 + 2*((mPrime-1)/2)
	}
	if j%2 != 0 {
		m = -m
	}
	return n, m
}
