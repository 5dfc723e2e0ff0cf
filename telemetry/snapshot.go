package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// EpochSnapshot wraps the key-value projection of a finished epoch.
type EpochSnapshot struct {
	Version int            `json:"version"`
	Epoch   int            `json:"epoch"`
	State   map[string]any `json:"state"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// SaveSnapshot writes a snapshot to dir and returns the file path.
func SaveSnapshot(s *EpochSnapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("epoch_%05d", s.Epoch)
	if s.Bookmark != nil {
		name = fmt.Sprintf("epoch_%05d_%s", s.Epoch, s.Bookmark.Type)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*EpochSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var s EpochSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", s.Version, SnapshotVersion)
	}
	return &s, nil
}
