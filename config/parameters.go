// Package config reads the JSON5 parameter file that describes the telescope,
// coronagraph, sampling, data locations and the computation to run.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	json "github.com/KevinWang15/go-json5"

	"github.com/bob-anderson-ok/SegmentDiffraction/analytic"
)

// ErrInvalid is wrapped by every parameter-file error.
var ErrInvalid = errors.New("config: invalid parameter file")

// DefaultOutputFile is written when data.output_file is absent.
const DefaultOutputFile = "segment_diffraction.nc"

// HexLayout asks for geometry tables derived from a ring layout instead of a file.
type HexLayout struct {
	Rings         int
	PitchPx       float64
	CenterSegment bool
}

// DataPaths locates the precomputed tables and the output.
type DataPaths struct {
	GeometryFile   string     // .nc or .json5 geometry tables
	Layout         *HexLayout // used when GeometryFile is empty
	CalibrationDir string     // directory of calibration CSV files, optional
	OutputFile     string
}

// RunRequest is the single computation the command line tool performs.
type RunRequest struct {
	Mode            int
	Coefficients    []float64
	Calibrate       bool
	ProfileAngleDeg float64
}

// Parameters is the validated content of a parameter file.
type Parameters struct {
	ShowInput bool
	Telescope analytic.Config
	Data      DataPaths
	Run       RunRequest
}

// Load reads and validates the parameter file at path.
func Load(path string) (*Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading parameter file %q: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parameter file %q: %w", path, err)
	}
	return p, nil
}

// Parse validates a JSON5 (or JSON) parameter document.
func Parse(data []byte) (*Parameters, error) {
	var jsonTable map[string]interface{}
	if err := json.Unmarshal(data, &jsonTable); err != nil {
		return nil, fmt.Errorf("format error: %v: %w", err, ErrInvalid)
	}

	var p Parameters
	if msg, ok := validateAndFill(jsonTable, &p); !ok {
		return nil, fmt.Errorf("%s: %w", msg, ErrInvalid)
	}
	// Keep the analytic error class so callers can tell a degenerate setup
	// from a malformed file.
	if err := p.Telescope.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &p, nil
}

func getLeafValue(jsonTable map[string]interface{}, path ...string) (interface{}, bool) {
	var cur interface{} = jsonTable
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func keyName(path []string) string {
	name := path[0]
	for _, p := range path[1:] {
		name += "." + p
	}
	return name
}

// readFloat stores the value at path in dst. A missing optional key leaves dst alone.
func readFloat(jsonTable map[string]interface{}, dst *float64, required bool, path ...string) (string, bool) {
	v, ok := getLeafValue(jsonTable, path...)
	if !ok {
		if required {
			return keyName(path) + ": not found", false
		}
		return "", true
	}
	value, ok := v.(float64)
	if !ok {
		return keyName(path) + ": is not a float64", false
	}
	*dst = value
	return "", true
}

func readInt(jsonTable map[string]interface{}, dst *int, required bool, path ...string) (string, bool) {
	value := math.NaN()
	if msg, ok := readFloat(jsonTable, &value, required, path...); !ok {
		return msg, false
	}
	if math.IsNaN(value) {
		return "", true
	}
	if value != math.Trunc(value) || math.Abs(value) > math.MaxInt32 {
		return keyName(path) + ": is not an integer", false
	}
	*dst = int(value)
	return "", true
}

func readBool(jsonTable map[string]interface{}, dst *bool, path ...string) (string, bool) {
	v, ok := getLeafValue(jsonTable, path...)
	if !ok {
		return "", true
	}
	value, ok := v.(bool)
	if !ok {
		return keyName(path) + ": is not a bool", false
	}
	*dst = value
	return "", true
}

func readString(jsonTable map[string]interface{}, dst *string, path ...string) (string, bool) {
	v, ok := getLeafValue(jsonTable, path...)
	if !ok {
		return "", true
	}
	value, ok := v.(string)
	if !ok {
		return keyName(path) + ": is not a string", false
	}
	*dst = value
	return "", true
}

func validateAndFill(jsonTable map[string]interface{}, p *Parameters) (string, bool) {
	cfg := &p.Telescope
	cfg.ZoomHalfWidth = analytic.DefaultZoomHalfWidth // default when numerical.zoom_half_width is missing
	p.Data.OutputFile = DefaultOutputFile

	if msg, ok := readBool(jsonTable, &p.ShowInput, "show_input_bool"); !ok {
		return msg, false
	}

	ints := []struct {
		dst      *int
		required bool
		path     []string
	}{
		{&cfg.SegmentCount, true, []string{"telescope", "nb_subapertures"}},
		{&cfg.PupilPx, true, []string{"numerical", "tel_size_px"}},
		{&cfg.ImagePx, true, []string{"numerical", "im_size_px"}},
		{&cfg.SegmentPx, true, []string{"numerical", "size_seg"}},
		{&cfg.ZoomHalfWidth, false, []string{"numerical", "zoom_half_width"}},
		{&cfg.MaxMode, true, []string{"zernikes", "max_zern"}},
	}
	for _, f := range ints {
		if msg, ok := readInt(jsonTable, f.dst, f.required, f.path...); !ok {
			return msg, false
		}
	}

	floats := []struct {
		dst  *float64
		path []string
	}{
		{&cfg.FlatToFlatM, []string{"telescope", "flat_to_flat"}},
		{&cfg.DiameterM, []string{"telescope", "diameter"}},
		{&cfg.WavelengthNm, []string{"filter", "lambda"}},
		{&cfg.IWA, []string{"coronagraph", "IWA"}},
		{&cfg.OWA, []string{"coronagraph", "OWA"}},
		{&cfg.PixelSizeNm, []string{"numerical", "px_size_nm"}},
		{&cfg.Sampling, []string{"numerical", "sampling"}},
		{&cfg.PixelScale, []string{"numerical", "pixel_scale"}},
	}
	for _, f := range floats {
		if msg, ok := readFloat(jsonTable, f.dst, true, f.path...); !ok {
			return msg, false
		}
	}

	// Geometry: a table file, or a ring layout to derive the tables from.
	if msg, ok := readString(jsonTable, &p.Data.GeometryFile, "data", "geometry_file"); !ok {
		return msg, false
	}
	if _, ok := getLeafValue(jsonTable, "data", "hex_layout"); ok {
		layout := &HexLayout{}
		if msg, ok := readInt(jsonTable, &layout.Rings, true, "data", "hex_layout", "rings"); !ok {
			return msg, false
		}
		if msg, ok := readFloat(jsonTable, &layout.PitchPx, true, "data", "hex_layout", "pitch_px"); !ok {
			return msg, false
		}
		if msg, ok := readBool(jsonTable, &layout.CenterSegment, "data", "hex_layout", "center_segment"); !ok {
			return msg, false
		}
		p.Data.Layout = layout
	}
	if p.Data.GeometryFile == "" && p.Data.Layout == nil {
		return "data: one of geometry_file or hex_layout is required", false
	}
	if p.Data.GeometryFile != "" && p.Data.Layout != nil {
		return "data: geometry_file and hex_layout are mutually exclusive", false
	}
	if msg, ok := readString(jsonTable, &p.Data.CalibrationDir, "data", "calibration_dir"); !ok {
		return msg, false
	}
	if msg, ok := readString(jsonTable, &p.Data.OutputFile, "data", "output_file"); !ok {
		return msg, false
	}

	// The run section is required: the tool performs exactly one computation.
	if _, ok := getLeafValue(jsonTable, "run"); !ok {
		return "run group not found and is required.", false
	}
	if msg, ok := readInt(jsonTable, &p.Run.Mode, true, "run", "mode"); !ok {
		return msg, false
	}
	if msg, ok := readBool(jsonTable, &p.Run.Calibrate, "run", "calibrate"); !ok {
		return msg, false
	}
	if p.Run.Calibrate && p.Data.CalibrationDir == "" {
		return "run.calibrate: needs data.calibration_dir", false
	}
	if msg, ok := readFloat(jsonTable, &p.Run.ProfileAngleDeg, false, "run", "profile_angle_deg"); !ok {
		return msg, false
	}

	v, ok := getLeafValue(jsonTable, "run", "coefficients")
	if !ok {
		return "run.coefficients: not found", false
	}
	list, ok := v.([]interface{})
	if !ok {
		return "run.coefficients: is not an array", false
	}
	if len(list) != cfg.SegmentCount {
		return fmt.Sprintf("run.coefficients: has %d entries, telescope.nb_subapertures is %d", len(list), cfg.SegmentCount), false
	}
	p.Run.Coefficients = make([]float64, len(list))
	for i, item := range list {
		value, ok := item.(float64)
		if !ok {
			return fmt.Sprintf("run.coefficients[%d]: is not a float64", i), false
		}
		p.Run.Coefficients[i] = value
	}

	return "No problem found in parameter file", true
}
