package corpus

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileMirror snapshots the corpus to a single JSON file on local disk,
// creating parent directories as needed.
type FileMirror struct {
	path string
}

// NewFileMirror creates a FileMirror for the given path.
func NewFileMirror(path string) *FileMirror {
	return &FileMirror{path: path}
}

// Path returns the snapshot file path.
func (m *FileMirror) Path() string {
	return m.path
}

func (m *FileMirror) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrMirrorNotFound
		}
		return nil, err
	}
	return data, nil
}

func (m *FileMirror) Store(_ context.Context, data []byte) error {
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(m.path, data, 0o644)
}

func (m *FileMirror) Delete(_ context.Context) error {
	err := os.Remove(m.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrMirrorNotFound
		}
		return err
	}
	return nil
}
