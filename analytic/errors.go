package analytic

import "errors"

// Every error returned by this package wraps one of these sentinels, so callers
// can classify failures with errors.Is regardless of the context added on the way up.
var (
	// ErrData is returned when geometry or calibration tables are missing,
	// malformed, or inconsistent with the configured segment or pixel counts.
	ErrData = errors.New("analytic: inconsistent input data")

	// ErrUnsupportedMode is returned when a mode index is outside the range
	// covered by the local basis.
	ErrUnsupportedMode = errors.New("analytic: unsupported mode")

	// ErrNumericDomain is returned for degenerate numerical settings, e.g. a zero
	// sampling factor or a frame too small to hold the dark hole.
	ErrNumericDomain = errors.New("analytic: numeric domain error")
)
