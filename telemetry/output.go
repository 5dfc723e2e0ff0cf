package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/polymini/config"
)

// csvFile is an append-only CSV file whose header is written with the first batch.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func createCSV(dir, name string) (*csvFile, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvFile{f: f}, nil
}

// write marshals records, a slice of csv-tagged structs.
func (c *csvFile) write(records any) error {
	if c == nil {
		return nil
	}
	if !c.headerWritten {
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

func (c *csvFile) close() error {
	if c == nil {
		return nil
	}
	return c.f.Close()
}

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir         string
	epochs      *csvFile
	individuals *csvFile
	perf        *csvFile
	bookmarks   *csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled). individuals.csv is only
// created when individuals is true.
func NewOutputManager(dir string, individuals bool) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	type target struct {
		name string
		dst  **csvFile
	}
	targets := []target{
		{"epochs.csv", &om.epochs},
		{"perf.csv", &om.perf},
		{"bookmarks.csv", &om.bookmarks},
	}
	if individuals {
		targets = append(targets, target{"individuals.csv", &om.individuals})
	}
	for _, t := range targets {
		f, err := createCSV(dir, t.name)
		if err != nil {
			om.Close()
			return nil, err
		}
		*t.dst = f
	}
	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteEpochStats appends per-species epoch rows to epochs.csv.
func (om *OutputManager) WriteEpochStats(stats []EpochStats) error {
	if om == nil || len(stats) == 0 {
		return nil
	}
	if err := om.epochs.write(stats); err != nil {
		return fmt.Errorf("writing epoch stats: %w", err)
	}
	return nil
}

// WriteIndividuals appends rows to individuals.csv when enabled.
func (om *OutputManager) WriteIndividuals(records []IndividualRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}
	if err := om.individuals.write(records); err != nil {
		return fmt.Errorf("writing individuals: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, epoch int) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(epoch)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := om.bookmarks.write([]Bookmark{b}); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// WriteHallOfFame saves the hall of fame as JSON.
func (om *OutputManager) WriteHallOfFame(hof *HallOfFame) error {
	if om == nil || hof == nil {
		return nil
	}

	data, err := hof.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling hall of fame: %w", err)
	}
	if err := os.WriteFile(filepath.Join(om.dir, "hall_of_fame.json"), data, 0644); err != nil {
		return fmt.Errorf("writing hall_of_fame.json: %w", err)
	}
	return nil
}

// WriteSnapshot saves an epoch snapshot under snapshots/.
func (om *OutputManager) WriteSnapshot(s *EpochSnapshot) (string, error) {
	if om == nil {
		return "", nil
	}
	return SaveSnapshot(s, filepath.Join(om.dir, "snapshots"))
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{om.epochs, om.individuals, om.perf, om.bookmarks} {
		if err := c.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
