package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/bob-anderson-ok/SegmentDiffraction/analytic"
)

// CalibrationStore serves per-segment calibration factors from a directory of
// CSV files named calibration_<mode name>_Noll<j>.csv with the header
// "segment,factor" and one row per one-based segment.
type CalibrationStore struct {
	dataDir  string
	segments int
	cache    map[int][]float64 // Cache loaded tables by Noll index.
	mu       sync.RWMutex      // Protect cache.
}

// NewCalibrationStore creates a store for a primary of the given segment count.
func NewCalibrationStore(dataDir string, segments int) *CalibrationStore {
	return &CalibrationStore{
		dataDir:  dataDir,
		segments: segments,
		cache:    make(map[int][]float64),
	}
}

// CalibrationFileName returns the file name holding the factors for mode.
func CalibrationFileName(mode analytic.Mode) string {
	return fmt.Sprintf("calibration_%s_Noll%d.csv", mode.Name(), mode.Index)
}

// Factors returns a copy of the factors for mode, reading the file on first use.
func (s *CalibrationStore) Factors(mode analytic.Mode) ([]float64, error) {
	s.mu.RLock()
	factors, ok := s.cache[mode.Index]
	s.mu.RUnlock()
	if !ok {
		var err error
		factors, err = s.load(mode)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[mode.Index] = factors
		s.mu.Unlock()
	}
	return append([]float64(nil), factors...), nil
}

func (s *CalibrationStore) load(mode analytic.Mode) ([]float64, error) {
	filename := filepath.Join(s.dataDir, CalibrationFileName(mode))

	//nolint:gosec // G304: File path constructed from dataDir (config) and the resolved mode.
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open calibration file for %s: %v: %w", mode, err, analytic.ErrData)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read CSV header: %v: %w", filename, err, analytic.ErrData)
	}
	expectedHeaders := []string{"segment", "factor"}
	if len(header) != len(expectedHeaders) {
		return nil, fmt.Errorf("%s: invalid CSV header: expected %v, got %v: %w", filename, expectedHeaders, header, analytic.ErrData)
	}
	for i, h := range header {
		if strings.TrimSpace(h) != expectedHeaders[i] {
			return nil, fmt.Errorf("%s: invalid CSV header: expected column %d to be %s, got %s: %w",
				filename, i, expectedHeaders[i], h, analytic.ErrData)
		}
	}

	factors := make([]float64, s.segments)
	seen := make([]bool, s.segments)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read CSV record: %v: %w", filename, err, analytic.ErrData)
		}

		segment, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("%s: invalid segment %q: %w", filename, record[0], analytic.ErrData)
		}
		if segment < 1 || segment > s.segments {
			return nil, fmt.Errorf("%s: segment %d outside [1, %d]: %w", filename, segment, s.segments, analytic.ErrData)
		}
		if seen[segment-1] {
			return nil, fmt.Errorf("%s: segment %d listed twice: %w", filename, segment, analytic.ErrData)
		}
		factor, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid factor %q for segment %d: %w", filename, record[1], segment, analytic.ErrData)
		}
		if !(factor >= 0) {
			return nil, fmt.Errorf("%s: factor %g for segment %d is negative: %w", filename, factor, segment, analytic.ErrData)
		}
		factors[segment-1] = factor
		seen[segment-1] = true
	}

	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("%s: no factor for segment %d: %w", filename, i+1, analytic.ErrData)
		}
	}
	return factors, nil
}

// WriteCalibration stores factors for mode in dir in the layout CalibrationStore reads.
func WriteCalibration(dir string, mode analytic.Mode, factors []float64) (err error) {
	filename := filepath.Join(dir, CalibrationFileName(mode))
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"segment", "factor"}); err != nil {
		return err
	}
	for i, f := range factors {
		if err := w.Write([]string{strconv.Itoa(i + 1), strconv.FormatFloat(f, 'g', -1, 64)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
