package analytic

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// DarkHole is the annular working-angle region of the focal plane together with
// the fixed crop window the results are zoomed to.
type DarkHole struct {
	frame     int
	halfWidth int
	inner     float64
	outer     float64
	mask      [][]float64
	pixels    int
}

// NewDarkHole builds the annulus inner <= r < outer (pixels, measured from the
// frame centre on the fringe grid) and checks that a crop of halfWidth pixels
// around the centre holds every annulus pixel. A crop that would cut the
// annulus fails with ErrNumericDomain.
func NewDarkHole(frame int, inner, outer float64, halfWidth int) (*DarkHole, error) {
	if frame <= 0 {
		return nil, fmt.Errorf("frame size %d: %w", frame, ErrNumericDomain)
	}
	if inner < 0 || outer <= inner {
		return nil, fmt.Errorf("dark hole radii must satisfy 0 <= inner < outer, got %g and %g: %w", inner, outer, ErrData)
	}
	if halfWidth <= 0 || 2*halfWidth > frame {
		return nil, fmt.Errorf("crop half-width %d does not fit a %d px frame: %w", halfWidth, frame, ErrNumericDomain)
	}

	d := &DarkHole{
		frame:     frame,
		halfWidth: halfWidth,
		inner:     inner,
		outer:     outer,
		mask:      newMatrix(frame, frame),
	}
	axis := centeredAxis(frame)
	lo, hi := d.window()
	inside := 0
	for r := 0; r < frame; r++ {
		for c := 0; c < frame; c++ {
			r2 := axis[r]*axis[r] + axis[c]*axis[c]
			if r2 >= inner*inner && r2 < outer*outer {
				d.mask[r][c] = 1
				d.pixels++
				if r >= lo && r < hi && c >= lo && c < hi {
					inside++
				}
			}
		}
	}
	if d.pixels == 0 {
		return nil, fmt.Errorf("dark hole %g..%g px contains no pixels: %w", inner, outer, ErrNumericDomain)
	}
	if inside != d.pixels {
		return nil, fmt.Errorf("crop half-width %d px cuts the dark hole (outer radius %g px): %w", halfWidth, outer, ErrNumericDomain)
	}
	return d, nil
}

// window returns the [lo, hi) row and column range of the crop.
func (d *DarkHole) window() (int, int) {
	centre := d.frame / 2
	return centre - d.halfWidth, centre + d.halfWidth
}

// Centre returns the position of the optical axis in crop pixel coordinates.
// It is (ZoomSize-1)/2 for an even frame and half a pixel further on for an odd one.
func (d *DarkHole) Centre() float64 {
	lo, _ := d.window()
	return float64(d.frame-1)/2 - float64(lo)
}

// Profile samples a crop returned by Zoom or Extract along a ray from the
// optical axis at angleDeg.
func (d *DarkHole) Profile(zoom [][]float64, angleDeg float64) []ProfilePoint {
	return profileFrom(zoom, d.Centre(), angleDeg)
}

// FrameSize returns the side of the full frame.
func (d *DarkHole) FrameSize() int { return d.frame }

// ZoomSize returns the side of the cropped window.
func (d *DarkHole) ZoomSize() int { return 2 * d.halfWidth }

// Pixels returns the number of pixels in the annulus.
func (d *DarkHole) Pixels() int { return d.pixels }

// Mask returns a copy of the full-frame 0/1 annulus.
func (d *DarkHole) Mask() [][]float64 {
	out := newMatrix(d.frame, d.frame)
	for r := range d.mask {
		copy(out[r], d.mask[r])
	}
	return out
}

// Zoom crops m to the dark-hole window.
func (d *DarkHole) Zoom(m [][]float64) ([][]float64, error) {
	h, w, err := rectSize(m)
	if err != nil {
		return nil, fmt.Errorf("zoom input: %v: %w", err, ErrData)
	}
	if h != d.frame || w != d.frame {
		return nil, fmt.Errorf("zoom input is %dx%d, expected %dx%d: %w", h, w, d.frame, d.frame, ErrData)
	}
	lo, hi := d.window()
	out := newMatrix(hi-lo, hi-lo)
	for r := lo; r < hi; r++ {
		copy(out[r-lo], m[r][lo:hi])
	}
	return out, nil
}

// Extract crops intensity to the window and returns the raw crop, the crop
// masked to the annulus, and the mean intensity over the annulus.
func (d *DarkHole) Extract(intensity [][]float64) (zoom, masked [][]float64, mean float64, err error) {
	zoom, err = d.Zoom(intensity)
	if err != nil {
		return nil, nil, 0, err
	}
	maskZoom, err := d.Zoom(d.mask)
	if err != nil {
		return nil, nil, 0, err
	}

	masked = newMatrix(len(zoom), len(zoom))
	values := make([]float64, 0, d.pixels)
	for r := range zoom {
		for c := range zoom[r] {
			masked[r][c] = maskZoom[r][c] * zoom[r][c]
			if maskZoom[r][c] != 0 {
				values = append(values, zoom[r][c])
			}
		}
	}
	return zoom, masked, stat.Mean(values, nil), nil
}
