package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bob-anderson-ok/SegmentDiffraction/analytic"
	"github.com/bob-anderson-ok/SegmentDiffraction/config"
	"github.com/bob-anderson-ok/SegmentDiffraction/tables"
)

const version = "0_2_0"

func main() {

	programStart := time.Now()

	args := os.Args

	if len(args) != 2 {
		fmt.Println("\n\tWrong number of arguments.\n\tUsage: SegmentDiffraction <parameter-file>")
		os.Exit(1)
	}

	path := args[1]

	// Read the Json5 (or Json) parameter file
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tAttempt to read input file %q failed: %w\n", path, err))
		os.Exit(2)
	}

	params, err := config.Parse(data)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tProblem in file %q: %w\n", path, err))
		os.Exit(exitCode(err, 3))
	}

	// Check for user wanting printout of complete parameter file
	if params.ShowInput {
		fmt.Printf("%s", "\nPrintout of complete parameter file contents...\n")
		fmt.Println(string(data))
	}

	fmt.Printf("\nVersion %s\n\n", version)

	cfg := params.Telescope
	fmt.Printf("Frame is %d px (%d px pupil x sampling %0.2f)\n", cfg.FrameSize(), cfg.PupilPx, cfg.Sampling)
	fmt.Printf("Dark hole is %0.1f..%0.1f lambda/D (%0.1f..%0.1f px)\n", cfg.IWA, cfg.OWA, cfg.InnerRadiusPx(), cfg.OuterRadiusPx())
	fmt.Printf("Focal plane pixel is %0.3e rad (%0.3f lambda/D)\n\n",
		cfg.PixelSizeNm/cfg.FocalLengthNm(), 1/cfg.Sampling)

	start := time.Now() // Time construction of geometry and basis
	model, err := config.BuildModel(params)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tSetting up the model failed: %w\n", err))
		os.Exit(exitCode(err, 4))
	}
	elapsed := time.Since(start)
	fmt.Printf("%d segments, %d segment pairs reduced to %d NRPs\n",
		cfg.SegmentCount, model.Geometry().PairCount(), model.Geometry().NRPCount())
	fmt.Printf("Loading geometry and building %d hexikes took %s\n", cfg.MaxMode, elapsed)

	run := params.Run
	start = time.Now()
	res, err := model.Compute(run.Mode, run.Coefficients, run.Calibrate)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tComputation of mode %d failed: %w\n", run.Mode, err))
		os.Exit(exitCode(err, 8))
	}
	elapsed = time.Since(start)
	fmt.Printf("Calculation of the %s intensity took %s\n", res.Mode, elapsed)
	fmt.Printf("Mean dark hole contrast: %0.4e\n", res.MeanContrast)

	profile := model.DarkHole().Profile(res.Zoom, run.ProfileAngleDeg)

	err = tables.WriteResultNetCDF(params.Data.OutputFile, res, profile)
	if err != nil {
		fmt.Println(fmt.Errorf("writing of %q failed: %w", params.Data.OutputFile, err))
		os.Exit(12)
	}
	fmt.Printf("Result written to %s\n", params.Data.OutputFile)

	fmt.Printf("\nTotal run time %s\n", time.Since(programStart))
}

// exitCode distinguishes the failure classes of the model; other failures get fallback.
func exitCode(err error, fallback int) int {
	switch {
	case errors.Is(err, analytic.ErrData):
		return 5
	case errors.Is(err, analytic.ErrUnsupportedMode):
		return 6
	case errors.Is(err, analytic.ErrNumericDomain):
		return 7
	default:
		return fallback
	}
}
