package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteSnapshot serializes a run result to an indented UTF-8 JSON file next
// to the workbook. Intermediate directories are created automatically.
func WriteSnapshot(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("snapshot: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: create %q: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	return nil
}
