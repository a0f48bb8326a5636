package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bob-anderson-ok/SegmentDiffraction/analytic"
)

// Handler handles HTTP requests for intensity predictions.
type Handler struct {
	model *analytic.Model
}

// NewHandler creates a new HTTP handler.
func NewHandler(model *analytic.Model) *Handler {
	return &Handler{
		model: model,
	}
}

// IntensityRequest is the body of POST /v1/intensity.
type IntensityRequest struct {
	Mode            int       `json:"mode" binding:"required"`
	Coefficients    []float64 `json:"coefficients" binding:"required"`
	Calibrate       bool      `json:"calibrate"`
	Full            bool      `json:"full"`               // include the full-frame intensity
	ProfileAngleDeg *float64  `json:"profile_angle_deg"` // include a radial cut of the crop
}

// ProfilePoint is one sample of a radial cut.
type ProfilePoint struct {
	RadiusPx  float64 `json:"radius_px"`
	Intensity float64 `json:"intensity"`
}

// IntensityResponse is the reply of POST /v1/intensity.
type IntensityResponse struct {
	Mode         int            `json:"mode"`
	Name         string         `json:"name"`
	FrameSize    int            `json:"frame_size"`
	MeanContrast float64        `json:"mean_contrast"`
	DarkHole     [][]float64    `json:"dark_hole"`
	Zoom         [][]float64    `json:"zoom"`
	Intensity    [][]float64    `json:"intensity,omitempty"`
	Profile      []ProfilePoint `json:"profile,omitempty"`
	ElapsedMs    float64        `json:"elapsed_ms"`
}

// PostIntensity handles POST /v1/intensity.
func (h *Handler) PostIntensity(c *gin.Context) {
	var req IntensityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	start := time.Now()
	res, err := h.model.Compute(req.Mode, req.Coefficients, req.Calibrate)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	response := IntensityResponse{
		Mode:         res.Mode.Index,
		Name:         res.Mode.Name(),
		FrameSize:    len(res.Intensity),
		MeanContrast: res.MeanContrast,
		DarkHole:     res.DarkHole,
		Zoom:         res.Zoom,
	}
	if req.Full {
		response.Intensity = res.Intensity
	}
	if req.ProfileAngleDeg != nil {
		for _, p := range h.model.DarkHole().Profile(res.Zoom, *req.ProfileAngleDeg) {
			response.Profile = append(response.Profile, ProfilePoint{RadiusPx: p.RadiusPx, Intensity: p.Intensity})
		}
	}
	response.ElapsedMs = float64(time.Since(start).Microseconds()) / 1000

	c.JSON(http.StatusOK, response)
}

// GetConfig handles GET /v1/config.
func (h *Handler) GetConfig(c *gin.Context) {
	cfg := h.model.Config()
	geom := h.model.Geometry()

	type ModeInfo struct {
		Index int    `json:"index"`
		Name  string `json:"name"`
	}
	modes := make([]ModeInfo, 0, cfg.MaxMode)
	for j := 1; j <= cfg.MaxMode; j++ {
		mode, err := analytic.ResolveMode(j, cfg.MaxMode)
		if err != nil {
			continue
		}
		modes = append(modes, ModeInfo{Index: mode.Index, Name: mode.Name()})
	}

	c.JSON(http.StatusOK, gin.H{
		"segments":        cfg.SegmentCount,
		"nrp_count":       geom.NRPCount(),
		"pair_count":      geom.PairCount(),
		"frame_size":      h.model.FrameSize(),
		"zoom_size":       h.model.DarkHole().ZoomSize(),
		"dark_hole_px":    h.model.DarkHole().Pixels(),
		"sampling":        cfg.Sampling,
		"wavelength_nm":   cfg.WavelengthNm,
		"iwa":             cfg.IWA,
		"owa":             cfg.OWA,
		"mode_convention": "Noll",
		"modes":           modes,
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// statusFor maps a model error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, analytic.ErrUnsupportedMode), errors.Is(err, analytic.ErrData):
		return http.StatusBadRequest
	case errors.Is(err, analytic.ErrNumericDomain):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
