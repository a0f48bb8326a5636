package tables

import (
	"fmt"

	"github.com/fhs/go-netcdf/netcdf"

	"github.com/bob-anderson-ok/SegmentDiffraction/analytic"
)

// WriteResultNetCDF stores a computation: the full intensity map, the raw and
// masked dark-hole crops and, when given, a radial profile. The mode and mean
// contrast are attached to the intensity variable as attributes.
func WriteResultNetCDF(path string, res *analytic.Result, profile []analytic.ProfilePoint) (err error) {
	if res == nil {
		return fmt.Errorf("no result to write: %w", analytic.ErrData)
	}

	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("failed to create NetCDF file %q: %w", path, err)
	}
	defer func() {
		if cerr := ds.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	frameDim, err := ds.AddDim("frame", uint64(len(res.Intensity)))
	if err != nil {
		return err
	}
	zoomDim, err := ds.AddDim("zoom", uint64(len(res.Zoom)))
	if err != nil {
		return err
	}

	vIntensity, err := ds.AddVar("intensity", netcdf.DOUBLE, []netcdf.Dim{frameDim, frameDim})
	if err != nil {
		return err
	}
	vZoom, err := ds.AddVar("zoom", netcdf.DOUBLE, []netcdf.Dim{zoomDim, zoomDim})
	if err != nil {
		return err
	}
	vDarkHole, err := ds.AddVar("dark_hole", netcdf.DOUBLE, []netcdf.Dim{zoomDim, zoomDim})
	if err != nil {
		return err
	}

	// A zero-length dimension would be unlimited, so an empty profile is left out.
	var vRadius, vProfile netcdf.Var
	if len(profile) > 0 {
		profDim, err := ds.AddDim("profile", uint64(len(profile)))
		if err != nil {
			return err
		}
		if vRadius, err = ds.AddVar("profile_radius_px", netcdf.DOUBLE, []netcdf.Dim{profDim}); err != nil {
			return err
		}
		if vProfile, err = ds.AddVar("profile_intensity", netcdf.DOUBLE, []netcdf.Dim{profDim}); err != nil {
			return err
		}
	}

	if err := vIntensity.Attr("mode").WriteInt32s([]int32{int32(res.Mode.Index)}); err != nil {
		return err
	}
	if err := vIntensity.Attr("mean_contrast").WriteFloat64s([]float64{res.MeanContrast}); err != nil {
		return err
	}
	if err := vIntensity.Attr("sum1").WriteFloat64s([]float64{res.Sum1}); err != nil {
		return err
	}

	if err := ds.EndDef(); err != nil {
		return err
	}

	for _, w := range []struct {
		v    netcdf.Var
		m    [][]float64
		name string
	}{
		{vIntensity, res.Intensity, "intensity"},
		{vZoom, res.Zoom, "zoom"},
		{vDarkHole, res.DarkHole, "dark_hole"},
	} {
		flat, err := analytic.Flatten2D(w.m)
		if err != nil {
			return fmt.Errorf("%s: %v: %w", w.name, err, analytic.ErrData)
		}
		if err := w.v.WriteFloat64s(flat); err != nil {
			return fmt.Errorf("writing %s: %w", w.name, err)
		}
	}

	if len(profile) > 0 {
		radius := make([]float64, len(profile))
		value := make([]float64, len(profile))
		for i, p := range profile {
			radius[i] = p.RadiusPx
			value[i] = p.Intensity
		}
		if err := vRadius.WriteFloat64s(radius); err != nil {
			return err
		}
		if err := vProfile.WriteFloat64s(value); err != nil {
			return err
		}
	}
	return nil
}

// ResultSummary is what ReadResultSummary recovers from a result file.
type ResultSummary struct {
	Mode         int
	MeanContrast float64
	FrameSize    int
	ZoomSize     int
	ProfileLen   int
}

// ReadResultSummary reads back the attributes and sizes of a result file.
func ReadResultSummary(path string) (ResultSummary, error) {
	var s ResultSummary

	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return s, fmt.Errorf("failed to open NetCDF file %q: %w", path, err)
	}
	defer func() { _ = nc.Close() }()

	v, err := nc.Var("intensity")
	if err != nil {
		return s, fmt.Errorf("variable %q not found: %v: %w", "intensity", err, analytic.ErrData)
	}
	mode := make([]int32, 1)
	if err := v.Attr("mode").ReadInt32s(mode); err != nil {
		return s, fmt.Errorf("reading mode attribute: %w", err)
	}
	mean := make([]float64, 1)
	if err := v.Attr("mean_contrast").ReadFloat64s(mean); err != nil {
		return s, fmt.Errorf("reading mean_contrast attribute: %w", err)
	}
	s.Mode = int(mode[0])
	s.MeanContrast = mean[0]

	_, shape, err := readVar(nc, "intensity")
	if err != nil {
		return s, err
	}
	s.FrameSize = shape[0]
	_, shape, err = readVar(nc, "zoom")
	if err != nil {
		return s, err
	}
	s.ZoomSize = shape[0]
	if _, shape, err = readVar(nc, "profile_intensity"); err == nil {
		s.ProfileLen = shape[0]
	}
	return s, nil
}
