package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/rift/config"
	"github.com/pthm-cable/rift/director"
	"github.com/pthm-cable/rift/world"
)

// SessionRecord summarises one finished session.
type SessionRecord struct {
	Session        int     `csv:"session"`
	Seed           string  `csv:"seed"`
	Outcome        string  `csv:"outcome"`
	Ticks          int     `csv:"ticks"`
	SimTimeSec     float64 `csv:"sim_time"`
	Mutations      string  `csv:"mutations"`
	MobsSpawned    int     `csv:"mobs_spawned"`
	Kills          int     `csv:"kills"`
	XP             int     `csv:"xp"`
	Level          int     `csv:"level"`
	ItemsLooted    int     `csv:"items_looted"`
	DamageTaken    float64 `csv:"damage_taken"`
	ChunksRevealed int     `csv:"chunks_revealed"`
	Killer         string  `csv:"killer"`
}

// csvFile is an output CSV that writes its header with the first record.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func writeRows[T any](c *csvFile, records []T) error {
	if len(records) == 0 {
		return nil
	}
	if !c.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir       string
	telemetry csvFile
	perf      csvFile
	bookmarks csvFile
	director  csvFile
	sessions  csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		dst  *csvFile
	}{
		{"telemetry.csv", &om.telemetry},
		{"perf.csv", &om.perf},
		{"bookmarks.csv", &om.bookmarks},
		{"director.csv", &om.director},
		{"sessions.csv", &om.sessions},
	}
	for _, file := range files {
		f, err := os.Create(filepath.Join(dir, file.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", file.name, err)
		}
		file.dst.f = f
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

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := writeRows(&om.telemetry, []WindowStats{stats}); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int) error {
	if om == nil {
		return nil
	}
	if err := writeRows(&om.perf, []PerfStatsCSV{stats.ToCSV(windowEnd)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := writeRows(&om.bookmarks, []Bookmark{b}); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// WriteCycle writes one row per trait of an evolution cycle to director.csv.
func (om *OutputManager) WriteCycle(report director.CycleReport) error {
	if om == nil {
		return nil
	}
	if err := writeRows(&om.director, report.Traits); err != nil {
		return fmt.Errorf("writing director cycle: %w", err)
	}
	return nil
}

// WriteSession writes a session summary to sessions.csv.
func (om *OutputManager) WriteSession(r SessionRecord) error {
	if om == nil {
		return nil
	}
	if err := writeRows(&om.sessions, []SessionRecord{r}); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// WriteWorld saves a generated world as JSON under worlds/.
func (om *OutputManager) WriteWorld(session int, w *world.World) error {
	if om == nil || w == nil {
		return nil
	}

	dir := filepath.Join(om.dir, "worlds")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating worlds directory: %w", err)
	}
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling world: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("session_%03d.json", session))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// JournalPath returns where the event journal for this run lives.
func (om *OutputManager) JournalPath() string {
	if om == nil {
		return ""
	}
	return filepath.Join(om.dir, "events.jsonl.zst")
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
	for _, c := range []*csvFile{&om.telemetry, &om.perf, &om.bookmarks, &om.director, &om.sessions} {
		if c.f == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
