package config

import (
	"fmt"

	"github.com/bob-anderson-ok/SegmentDiffraction/analytic"
	"github.com/bob-anderson-ok/SegmentDiffraction/tables"
)

// BuildModel loads or derives the geometry tables, builds the local basis and
// opens the calibration store named by p.
func BuildModel(p *Parameters) (*analytic.Model, error) {
	cfg := p.Telescope

	var layout analytic.GeometryInput
	var err error
	if l := p.Data.Layout; l != nil {
		layout, err = analytic.HexLayout(l.Rings, l.PitchPx, l.CenterSegment, cfg.PupilPx)
	} else {
		layout, err = tables.LoadGeometry(p.Data.GeometryFile)
	}
	if err != nil {
		return nil, fmt.Errorf("geometry: %w", err)
	}
	geom, err := analytic.NewGeometryTables(cfg.SegmentCount, cfg.PupilPx, layout)
	if err != nil {
		return nil, fmt.Errorf("geometry: %w", err)
	}

	basis, err := analytic.NewHexikeBasis(cfg.SegmentPx, cfg.MaxMode)
	if err != nil {
		return nil, fmt.Errorf("basis: %w", err)
	}

	var calib analytic.CalibrationSource
	if p.Data.CalibrationDir != "" {
		calib = tables.NewCalibrationStore(p.Data.CalibrationDir, cfg.SegmentCount)
	}

	return analytic.NewModel(cfg, geom, basis, calib)
}
