package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/slurry/config"
)

// OutputManager handles structured run output with CSV logging. A nil
// OutputManager is valid and discards everything, so callers never need to
// guard writes.
type OutputManager struct {
	dir         string
	framesFile  *os.File
	windowsFile *os.File

	framesHeaderWritten  bool
	windowsHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output
// directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "frames.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating frames.csv: %w", err)
	}
	om.framesFile = f

	f, err = os.Create(filepath.Join(dir, "windows.csv"))
	if err != nil {
		om.framesFile.Close()
		return nil, fmt.Errorf("creating windows.csv: %w", err)
	}
	om.windowsFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML next to the CSVs.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteFrame appends one frame record to frames.csv.
func (om *OutputManager) WriteFrame(fs FrameStats) error {
	if om == nil {
		return nil
	}
	records := []FrameStats{fs}
	if !om.framesHeaderWritten {
		if err := gocsv.Marshal(records, om.framesFile); err != nil {
			return fmt.Errorf("writing frame stats: %w", err)
		}
		om.framesHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.framesFile); err != nil {
		return fmt.Errorf("writing frame stats: %w", err)
	}
	return nil
}

// WriteWindow appends one window record to windows.csv.
func (om *OutputManager) WriteWindow(ws WindowStats) error {
	if om == nil {
		return nil
	}
	records := []WindowStats{ws}
	if !om.windowsHeaderWritten {
		if err := gocsv.Marshal(records, om.windowsFile); err != nil {
			return fmt.Errorf("writing window stats: %w", err)
		}
		om.windowsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.windowsFile); err != nil {
		return fmt.Errorf("writing window stats: %w", err)
	}
	return nil
}

// Close flushes and closes the CSV files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var first error
	if err := om.framesFile.Close(); err != nil {
		first = err
	}
	if err := om.windowsFile.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
