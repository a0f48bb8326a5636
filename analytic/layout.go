package analytic

import (
	"fmt"
	"math"
)

// HexLayout derives geometry tables for a primary made of `rings` rings of
// hexagonal segments around a centre position, with centre-to-centre spacing
// pitch. The centre segment is left out when withCenter is false (as on
// telescopes with a central obscuration). The pupil is rasterised on a
// pupilPx x pupilPx grid just large enough for the outermost segments.
//
// Pairs whose separations are equal up to sign are grouped into one NRP.
func HexLayout(rings int, pitch float64, withCenter bool, pupilPx int) (GeometryInput, error) {
	if rings < 0 || !(pitch > 0) || pupilPx <= 0 {
		return GeometryInput{}, fmt.Errorf("hex layout needs rings >= 0, pitch > 0 and a pupil grid, got %d, %g, %d: %w",
			rings, pitch, pupilPx, ErrNumericDomain)
	}

	var centers [][2]float64
	for q := -rings; q <= rings; q++ {
		for r := -rings; r <= rings; r++ {
			s := -q - r
			if abs(q) > rings || abs(r) > rings || abs(s) > rings {
				continue
			}
			if q == 0 && r == 0 && !withCenter {
				continue
			}
			x := math.Sqrt(3) / 2 * pitch * float64(q)
			y := pitch * (float64(r) + float64(q)/2)
			centers = append(centers, [2]float64{x, y})
		}
	}
	n := len(centers)
	if n == 0 {
		return GeometryInput{}, fmt.Errorf("hex layout with %d rings has no segments: %w", rings, ErrData)
	}

	in := GeometryInput{
		Separations: make([][][2]float64, n),
		Projection:  make([][]int, n),
	}
	for i := range in.Separations {
		in.Separations[i] = make([][2]float64, n)
		in.Projection[i] = make([]int, n)
		for j := range in.Separations[i] {
			in.Separations[i][j] = [2]float64{centers[j][0] - centers[i][0], centers[j][1] - centers[i][1]}
		}
	}

	type sepKey struct{ x, y int64 }
	nrps := make(map[sepKey]int)
	quantum := pitch * 1e-6
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sx, sy := in.Separations[i][j][0], in.Separations[i][j][1]
			if sx < -quantum/2 || (math.Abs(sx) <= quantum/2 && sy < 0) {
				sx, sy = -sx, -sy
			}
			key := sepKey{int64(math.Round(sx / quantum)), int64(math.Round(sy / quantum))}
			q, ok := nrps[key]
			if !ok {
				in.Pairs = append(in.Pairs, [2]int{i + 1, j + 1})
				q = len(in.Pairs)
				nrps[key] = q
			}
			in.Projection[i][j] = q
			in.Projection[j][i] = q
		}
	}

	// Rasterise the pupil.
	radius := pitch / math.Sqrt(3) // circumradius of one segment
	extent := 0.0
	for _, c := range centers {
		extent = math.Max(extent, math.Hypot(c[0], c[1])+radius)
	}
	in.Pupil = newMatrix(pupilPx, pupilPx)
	axis := centeredAxis(pupilPx)
	scale := 2 * extent / float64(pupilPx)
	for row := 0; row < pupilPx; row++ {
		y := -axis[row] * scale
		for col := 0; col < pupilPx; col++ {
			x := axis[col] * scale
			for _, c := range centers {
				if insideHexagon((x-c[0])/radius, (y-c[1])/radius) {
					in.Pupil[row][col] = 1
					break
				}
			}
		}
	}
	return in, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
