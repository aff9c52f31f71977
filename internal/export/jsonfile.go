package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type JSONFile struct {
	filename string
}

func NewJSONFile(filename string) *JSONFile {
	return &JSONFile{filename: filename}
}

func (f *JSONFile) Name() string { return "jsonfile" }

func (f *JSONFile) Export(_ context.Context, b Batch) error {
	data, err := json.MarshalIndent(Documents(b), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.filename), 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	return os.WriteFile(f.filename, data, 0644)
}

func (f *JSONFile) Close() error { return nil }
