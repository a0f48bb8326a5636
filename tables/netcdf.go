// Package tables loads the precomputed pupil geometry and calibration tables
// the analytic model consumes, and writes its results.
package tables

import (
	"fmt"
	"math"

	"github.com/fhs/go-netcdf/netcdf"

	"github.com/bob-anderson-ok/SegmentDiffraction/analytic"
)

// Variable names of a geometry file.
const (
	pupilVarName      = "pupil"      // [px, px], 1 where open
	separationVarName = "separation" // [seg, seg, xy]
	projectionVarName = "projection" // [seg, seg], one-based NRP, 0 when not listed
	pairsVarName      = "nrp_pairs"  // [nrp, 2], one-based segments
)

// LoadGeometryNetCDF reads geometry tables from a NetCDF file. Missing
// variables and inconsistent shapes are reported as analytic.ErrData.
func LoadGeometryNetCDF(path string) (analytic.GeometryInput, error) {
	var in analytic.GeometryInput

	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return in, fmt.Errorf("failed to open NetCDF file %q: %w", path, err)
	}
	defer func() { _ = nc.Close() }()

	pupil, pupilShape, err := readVar(nc, pupilVarName)
	if err != nil {
		return in, err
	}
	if len(pupilShape) != 2 || pupilShape[0] != pupilShape[1] {
		return in, fmt.Errorf("%s: expected a square 2-D variable, got shape %v: %w", pupilVarName, pupilShape, analytic.ErrData)
	}
	in.Pupil, err = analytic.Reshape1DTo2D(pupil, pupilShape[0], pupilShape[1])
	if err != nil {
		return in, fmt.Errorf("%s: %v: %w", pupilVarName, err, analytic.ErrData)
	}

	sep, sepShape, err := readVar(nc, separationVarName)
	if err != nil {
		return in, err
	}
	if len(sepShape) != 3 || sepShape[0] != sepShape[1] || sepShape[2] != 2 {
		return in, fmt.Errorf("%s: expected shape [seg, seg, 2], got %v: %w", separationVarName, sepShape, analytic.ErrData)
	}
	n := sepShape[0]
	in.Separations = make([][][2]float64, n)
	for i := 0; i < n; i++ {
		in.Separations[i] = make([][2]float64, n)
		for j := 0; j < n; j++ {
			k := (i*n + j) * 2
			in.Separations[i][j] = [2]float64{sep[k], sep[k+1]}
		}
	}

	proj, projShape, err := readVar(nc, projectionVarName)
	if err != nil {
		return in, err
	}
	if len(projShape) != 2 || projShape[0] != n || projShape[1] != n {
		return in, fmt.Errorf("%s: expected shape [%d, %d], got %v: %w", projectionVarName, n, n, projShape, analytic.ErrData)
	}
	in.Projection = make([][]int, n)
	for i := 0; i < n; i++ {
		in.Projection[i] = make([]int, n)
		for j := 0; j < n; j++ {
			if in.Projection[i][j], err = asIndex(proj[i*n+j]); err != nil {
				return in, fmt.Errorf("%s[%d][%d]: %v: %w", projectionVarName, i, j, err, analytic.ErrData)
			}
		}
	}

	pairs, pairsShape, err := readVar(nc, pairsVarName)
	if err != nil {
		return in, err
	}
	if len(pairsShape) != 2 || pairsShape[1] != 2 {
		return in, fmt.Errorf("%s: expected shape [nrp, 2], got %v: %w", pairsVarName, pairsShape, analytic.ErrData)
	}
	in.Pairs = make([][2]int, pairsShape[0])
	for q := range in.Pairs {
		for k := 0; k < 2; k++ {
			if in.Pairs[q][k], err = asIndex(pairs[2*q+k]); err != nil {
				return in, fmt.Errorf("%s[%d]: %v: %w", pairsVarName, q, err, analytic.ErrData)
			}
		}
	}

	return in, nil
}

// SaveGeometryNetCDF writes geometry tables in the layout LoadGeometryNetCDF reads.
func SaveGeometryNetCDF(path string, in analytic.GeometryInput) (err error) {
	n := len(in.Separations)
	px := len(in.Pupil)

	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("failed to create NetCDF file %q: %w", path, err)
	}
	defer func() {
		if cerr := ds.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	pxDim, err := ds.AddDim("px", uint64(px))
	if err != nil {
		return err
	}
	segDim, err := ds.AddDim("seg", uint64(n))
	if err != nil {
		return err
	}
	xyDim, err := ds.AddDim("xy", 2)
	if err != nil {
		return err
	}
	nrpDim, err := ds.AddDim("nrp", uint64(len(in.Pairs)))
	if err != nil {
		return err
	}
	endDim, err := ds.AddDim("end", 2)
	if err != nil {
		return err
	}

	vPupil, err := ds.AddVar(pupilVarName, netcdf.DOUBLE, []netcdf.Dim{pxDim, pxDim})
	if err != nil {
		return err
	}
	vSep, err := ds.AddVar(separationVarName, netcdf.DOUBLE, []netcdf.Dim{segDim, segDim, xyDim})
	if err != nil {
		return err
	}
	vProj, err := ds.AddVar(projectionVarName, netcdf.INT, []netcdf.Dim{segDim, segDim})
	if err != nil {
		return err
	}
	vPairs, err := ds.AddVar(pairsVarName, netcdf.INT, []netcdf.Dim{nrpDim, endDim})
	if err != nil {
		return err
	}
	if err := ds.EndDef(); err != nil {
		return err
	}

	pupil, err := analytic.Flatten2D(in.Pupil)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", pupilVarName, err, analytic.ErrData)
	}
	if err := vPupil.WriteFloat64s(pupil); err != nil {
		return err
	}

	sep := make([]float64, 0, n*n*2)
	proj := make([]int32, 0, n*n)
	for i := 0; i < n; i++ {
		if len(in.Separations[i]) != n || len(in.Projection[i]) != n {
			return fmt.Errorf("row %d of the segment tables is not %d long: %w", i, n, analytic.ErrData)
		}
		for j := 0; j < n; j++ {
			sep = append(sep, in.Separations[i][j][0], in.Separations[i][j][1])
			proj = append(proj, int32(in.Projection[i][j]))
		}
	}
	if err := vSep.WriteFloat64s(sep); err != nil {
		return err
	}
	if err := vProj.WriteInt32s(proj); err != nil {
		return err
	}

	pairs := make([]int32, 0, 2*len(in.Pairs))
	for _, p := range in.Pairs {
		pairs = append(pairs, int32(p[0]), int32(p[1]))
	}
	return vPairs.WriteInt32s(pairs)
}

// readVar returns the values of a variable in row-major order together with its shape.
func readVar(nc netcdf.Dataset, name string) ([]float64, []int, error) {
	v, err := nc.Var(name)
	if err != nil {
		return nil, nil, fmt.Errorf("variable %q not found: %v: %w", name, err, analytic.ErrData)
	}
	dims, err := v.Dims()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to get dimensions: %w", name, err)
	}
	shape := make([]int, len(dims))
	total := 1
	for i, d := range dims {
		length, err := d.Len()
		if err != nil {
			return nil, nil, fmt.Errorf("%s: failed to get dimension %d: %w", name, i, err)
		}
		shape[i] = int(length)
		total *= int(length)
	}

	t, err := v.Type()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to get var type: %w", name, err)
	}
	out := make([]float64, total)
	switch t {
	case netcdf.DOUBLE:
		if err := v.ReadFloat64s(out); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", name, err)
		}
	case netcdf.FLOAT:
		tmp := make([]float32, total)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", name, err)
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.INT:
		tmp := make([]int32, total)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", name, err)
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.SHORT:
		tmp := make([]int16, total)
		if err := v.ReadInt16s(tmp); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", name, err)
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	default:
		return nil, nil, fmt.Errorf("%s: unsupported var type %v: %w", name, t, analytic.ErrData)
	}
	return out, shape, nil
}

// asIndex converts a stored table entry to an integer index.
func asIndex(v float64) (int, error) {
	if v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%g is not an integer", v)
	}
	return int(v), nil
}
