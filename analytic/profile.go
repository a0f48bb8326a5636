package analytic

import "math"

// ProfilePoint is one sample of a radial cut through an intensity map.
type ProfilePoint struct {
	RadiusPx  float64 // distance from the map centre in pixels
	Intensity float64 // interpolated intensity
}

// Profile samples m along a ray from its centre at angleDeg (counter-clockwise
// from the +column axis), one sample per pixel out to the map edge. The centre
// is taken at ((n-1)/2, (n-1)/2); use DarkHole.Profile for dark-hole crops of
// an odd frame, whose optical axis is off that point.
func Profile(m [][]float64, angleDeg float64) []ProfilePoint {
	return profileFrom(m, float64(len(m)-1)/2, angleDeg)
}

func profileFrom(m [][]float64, centre, angleDeg float64) []ProfilePoint {
	n := len(m)
	if n == 0 {
		return nil
	}
	theta := angleDeg * math.Pi / 180
	dx := math.Cos(theta)
	dy := -math.Sin(theta) // rows grow downwards

	var pts []ProfilePoint
	for k := 0; ; k++ {
		r := float64(k)
		x := centre + r*dx
		y := centre + r*dy
		if x < 0 || y < 0 || x > float64(n-1) || y > float64(n-1) {
			break
		}
		pts = append(pts, ProfilePoint{RadiusPx: r, Intensity: interpolate(m, x, y)})
	}
	return pts
}

// interpolate performs bilinear interpolation on a square matrix at column x, row y.
func interpolate(matrix [][]float64, x, y float64) float64 {
	n := len(matrix)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return matrix[0][0]
	}

	// Clamp to valid range
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x >= float64(n-1) {
		x = float64(n-1) - 1e-9
	}
	if y >= float64(n-1) {
		y = float64(n-1) - 1e-9
	}

	x0 := int(x)
	y0 := int(y)
	x1 := x0 + 1
	y1 := y0 + 1

	xFrac := x - float64(x0)
	yFrac := y - float64(y0)

	v00 := matrix[y0][x0]
	v01 := matrix[y0][x1]
	v10 := matrix[y1][x0]
	v11 := matrix[y1][x1]

	v0 := v00*(1-xFrac) + v01*xFrac
	v1 := v10*(1-xFrac) + v11*xFrac

	return v0*(1-yFrac) + v1*yFrac
}
