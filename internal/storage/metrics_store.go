package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// MetricsStore writes analysis artifacts as indented JSON files.
type MetricsStore struct {
	dir string
}

func NewMetricsStore(dir string) (*MetricsStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve metrics directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create metrics directory: %w", err)
	}
	return &MetricsStore{dir: abs}, nil
}

// WriteJSON stores v under name and returns the absolute path. The file is
// written to a temporary name first so readers never see a partial artifact.
func (m *MetricsStore) WriteJSON(name string, v any) (string, error) {
	path, err := resolve(m.dir, name)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal metrics: %w", err)
	}

	tmp, err := os.CreateTemp(m.dir, ".metrics-*")
	if err != nil {
		return "", fmt.Errorf("failed to create metrics file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write metrics: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close metrics file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move metrics file: %w", err)
	}
	return path, nil
}

// ReadJSON decodes an artifact previously returned by WriteJSON.
func (m *MetricsStore) ReadJSON(path string, v any) error {
	full, err := m.own(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return fmt.Errorf("failed to read metrics: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode metrics: %w", err)
	}
	return nil
}

// Remove deletes an artifact previously returned by WriteJSON. A missing
// artifact is not an error.
func (m *MetricsStore) Remove(path string) error {
	full, err := m.own(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove metrics: %w", err)
	}
	return nil
}

// own maps an absolute artifact path back into the store, rejecting paths
// outside it.
func (m *MetricsStore) own(path string) (string, error) {
	rel, err := filepath.Rel(m.dir, path)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return resolve(m.dir, rel)
}
