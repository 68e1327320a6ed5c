package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FSStore implements the Store interface using filesystem-based persistence.
// Results are stored as <baseDir>/results/<jobID>.json.
//
// Thread-safety: atomic file operations (write to temp, rename) make all
// methods safe to call from multiple goroutines without locks.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a new filesystem-based store.
// The baseDir will be created if it doesn't exist.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, "results"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

func (fs *FSStore) resultPath(jobID string) string {
	return filepath.Join(fs.baseDir, "results", jobID+".json")
}

// SaveResult atomically saves a result using the temp file + rename pattern.
func (fs *FSStore) SaveResult(jobID string, result *Result) error {
	if jobID == "" {
		return fmt.Errorf("jobID cannot be empty")
	}
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}

	finalPath := fs.resultPath(jobID)
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp result file: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename result file: %w", err)
	}

	slog.Debug("Result saved", "jobID", jobID, "path", finalPath)
	return nil
}

// LoadResult retrieves the result for the given job.
func (fs *FSStore) LoadResult(jobID string) (*Result, error) {
	if jobID == "" {
		return nil, fmt.Errorf("jobID cannot be empty")
	}

	data, err := os.ReadFile(fs.resultPath(jobID))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{JobID: jobID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to deserialize result: %w", err)
	}
	return &result, nil
}

// ListResults returns metadata for all persisted results.
func (fs *FSStore) ListResults() ([]ResultInfo, error) {
	entries, err := os.ReadDir(filepath.Join(fs.baseDir, "results"))
	if os.IsNotExist(err) {
		return []ResultInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read results directory: %w", err)
	}

	infos := []ResultInfo{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		jobID := name[:len(name)-len(".json")]
		result, err := fs.LoadResult(jobID)
		if err != nil {
			slog.Warn("Skipping unreadable result", "jobID", jobID, "error", err)
			continue
		}
		infos = append(infos, result.Info())
	}
	return infos, nil
}

// DeleteResult removes the persisted result for the given job.
func (fs *FSStore) DeleteResult(jobID string) error {
	if jobID == "" {
		return fmt.Errorf("jobID cannot be empty")
	}

	path := fs.resultPath(jobID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &NotFoundError{JobID: jobID}
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete result file: %w", err)
	}
	return nil
}
