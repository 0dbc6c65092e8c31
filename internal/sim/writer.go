package sim

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ukydev/route-dynamics/internal/models"
)

// DefaultOutputPath is where a run lands when the caller does not choose.
const DefaultOutputPath = "simulator/current_run.json"

// WriteResult serialises the run to path atomically: the JSON is staged in a
// temporary file in the destination directory and renamed into place, so a
// reader never observes a partially written artifact.
func WriteResult(result *models.RunResult, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("staging output: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing output: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing output: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publishing output: %w", err)
	}
	return nil
}
