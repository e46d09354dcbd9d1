package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"LottoScanner/internal/ports"
)

// FileWriter emits one indented JSON artifact per source next to the
// configured output directory.
type FileWriter struct {
	dir string
}

var _ ports.ReportWriter = (*FileWriter)(nil)

// NewFileWriter uses the current directory when dir is empty.
func NewFileWriter(dir string) *FileWriter {
	if dir == "" {
		dir = "."
	}
	return &FileWriter{dir: dir}
}

// Write marshals doc into <name>_hot.json.
func (w *FileWriter) Write(name string, doc any) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	path := filepath.Join(w.dir, name+"_hot.json")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
