package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a path escapes the storage root.
var ErrOutsideRoot = errors.New("path escapes storage root")

// Loader reads files by name.
type Loader interface {
	Load(name string) ([]byte, error)
}

// LoadBytes reads the whole file at path.
func LoadBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return data, nil
}

// LoadString reads the whole file at path as text.
func LoadString(path string) (string, error) {
	data, err := LoadBytes(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Dir loads files relative to Root. An empty Root uses names as given,
// relative to the working directory.
type Dir struct {
	Root string
}

// Resolve maps name to a file system path inside Root.
func (d Dir) Resolve(name string) (string, error) {
	if d.Root == "" {
		return filepath.Clean(name), nil
	}

	root, err := filepath.Abs(d.Root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve storage root: %w", err)
	}

	full := filepath.Join(root, filepath.Clean("/"+name))
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", name, ErrOutsideRoot)
	}
	return full, nil
}

// Load reads name from the directory.
func (d Dir) Load(name string) ([]byte, error) {
	path, err := d.Resolve(name)
	if err != nil {
		return nil, err
	}
	return LoadBytes(path)
}
