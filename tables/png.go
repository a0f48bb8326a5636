package tables

import (
	"fmt"
	"image/png"
	"os"

	"github.com/bob-anderson-ok/SegmentDiffraction/analytic"
)

// LoadPupilPNG reads a square pupil mask from an 8-bit image. Any non-black
// pixel is open (1), black is closed (0).
func LoadPupilPNG(filename string) (matrix [][]float64, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}

	bounds := img.Bounds()
	h := bounds.Dy()
	w := bounds.Dx()
	if h != w {
		return nil, fmt.Errorf("pupil image %s is %dx%d, not square: %w", filename, w, h, analytic.ErrData)
	}

	matrix = make([][]float64, h)
	for y := 0; y < h; y++ {
		matrix[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			c := img.At(x+bounds.Min.X, y+bounds.Min.Y)
			r, g, b, _ := c.RGBA()
			grayVal := (r + g + b) / 3 / 256 // Convert to 8-bit range
			if grayVal > 0 {
				matrix[y][x] = 1.0
			}
		}
	}

	return matrix, nil
}
