// Package main provides the segment diffraction HTTP server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bob-anderson-ok/SegmentDiffraction/config"
	"github.com/bob-anderson-ok/SegmentDiffraction/server"
)

const version = "0.2.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("segment-diffraction-server version %s\n", version)
		return
	}

	// Load configuration from environment.
	port := getEnv("PORT", "8080")
	parameterFile := getEnv("PARAMETER_FILE", "./parameters.json5")

	log.Printf("Starting segment diffraction server...")
	log.Printf("Port: %s", port)
	log.Printf("Parameter file: %s", parameterFile)

	params, err := config.Load(parameterFile)
	if err != nil {
		log.Fatalf("Failed to load parameters: %v", err)
	}

	if params.Data.CalibrationDir != "" {
		log.Printf("Calibration directory: %s", params.Data.CalibrationDir)
	} else {
		log.Printf("Calibration disabled (no data.calibration_dir configured)")
	}

	model, err := config.BuildModel(params)
	if err != nil {
		log.Fatalf("Failed to build model: %v", err)
	}
	log.Printf("Model ready: %d segments, %d NRPs, %d px frame",
		model.Config().SegmentCount, model.Geometry().NRPCount(), model.FrameSize())

	router := server.SetupRouter(model)

	addr := fmt.Sprintf(":%s", port)
	log.Printf("Server listening on %s", addr)
	log.Printf("Health check: http://localhost:%s/health", port)
	log.Printf("API endpoints:")
	log.Printf("  - GET  /v1/config")
	log.Printf("  - POST /v1/intensity")

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Segment Diffraction Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  PARAMETER_FILE          JSON5 parameter file (default: ./parameters.json5)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET  /health          Health check")
	fmt.Println("  GET  /v1/config       Telescope, sampling and supported modes")
	fmt.Println("  POST /v1/intensity    Intensity and dark-hole contrast for one mode")
	fmt.Println()
}
