package tables

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/KevinWang15/go-json5"

	"github.com/bob-anderson-ok/SegmentDiffraction/analytic"
)

// geometryDocument is the JSON5 form of the geometry tables. The projection
// may be a full segment x segment matrix or a list of [i, j, nrp] rows.
type geometryDocument struct {
	Pupil       [][]float64    `json:"pupil"`
	PupilPNG    string         `json:"pupil_png"`
	Separations [][][2]float64 `json:"separation"`
	Projection  [][]int        `json:"projection"`
	Triples     [][3]int       `json:"projection_rows"`
	Pairs       [][2]int       `json:"nrp_pairs"`
}

// LoadGeometryJSON5 reads geometry tables from a JSON5 file. A relative
// pupil_png path is resolved against the directory of the file.
func LoadGeometryJSON5(path string) (analytic.GeometryInput, error) {
	var in analytic.GeometryInput

	data, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("attempt to read geometry file %q failed: %w", path, err)
	}
	var doc geometryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return in, fmt.Errorf("format error in geometry file %q: %v: %w", path, err, analytic.ErrData)
	}

	switch {
	case doc.Pupil != nil && doc.PupilPNG != "":
		return in, fmt.Errorf("%s: pupil and pupil_png are mutually exclusive: %w", path, analytic.ErrData)
	case doc.Pupil != nil:
		in.Pupil = doc.Pupil
	case doc.PupilPNG != "":
		pngPath := doc.PupilPNG
		if !filepath.IsAbs(pngPath) {
			pngPath = filepath.Join(filepath.Dir(path), pngPath)
		}
		if in.Pupil, err = LoadPupilPNG(pngPath); err != nil {
			return in, err
		}
	default:
		return in, fmt.Errorf("%s: pupil not found: %w", path, analytic.ErrData)
	}

	in.Separations = doc.Separations
	in.Pairs = doc.Pairs
	switch {
	case doc.Projection != nil && doc.Triples != nil:
		return in, fmt.Errorf("%s: projection and projection_rows are mutually exclusive: %w", path, analytic.ErrData)
	case doc.Projection != nil:
		in.Projection = doc.Projection
	case doc.Triples != nil:
		if in.Projection, err = analytic.ProjectionFromTriples(len(doc.Separations), doc.Triples); err != nil {
			return in, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return in, fmt.Errorf("%s: projection not found: %w", path, analytic.ErrData)
	}
	return in, nil
}

// LoadGeometry picks the loader from the file extension: .nc for NetCDF,
// anything else is read as JSON5.
func LoadGeometry(path string) (analytic.GeometryInput, error) {
	if filepath.Ext(path) == ".nc" {
		return LoadGeometryNetCDF(path)
	}
	return LoadGeometryJSON5(path)
}
