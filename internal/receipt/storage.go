package receipt

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage defines the interface for output file storage
type Storage interface {
	// Save replaces the named file with data and returns its name
	Save(filename string, data []byte) (string, error)

	// SaveAll replaces every file, renaming none into place until all of
	// them are written
	SaveAll(files []File) error

	// Get retrieves a file by name
	Get(filename string) ([]byte, error)
}

// File is a named file body for SaveAll
type File struct {
	Name string
	Data []byte
}

// LocalStorage implements the Storage interface using a local directory
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

// Save writes data next to the target and renames it into place, so a
// reader never sees a half written file
func (l *LocalStorage) Save(filename string, data []byte) (string, error) {
	tmp, err := l.stage(filename, data)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp)

	if err := os.Rename(tmp, filepath.Join(l.basePath, filename)); err != nil {
		return "", fmt.Errorf("replacing file: %w", err)
	}
	return filename, nil
}

// SaveAll stages every file before renaming any. A failed write leaves all
// existing files untouched.
func (l *LocalStorage) SaveAll(files []File) error {
	staged := make([]string, 0, len(files))
	defer func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}()

	for _, f := range files {
		tmp, err := l.stage(f.Name, f.Data)
		if err != nil {
			return fmt.Errorf("saving %s: %w", f.Name, err)
		}
		staged = append(staged, tmp)
	}

	for i, f := range files {
		if err := os.Rename(staged[i], filepath.Join(l.basePath, f.Name)); err != nil {
			return fmt.Errorf("saving %s: replacing file: %w", f.Name, err)
		}
	}
	return nil
}

// stage writes data to a temp file beside filename and returns its path
func (l *LocalStorage) stage(filename string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(l.basePath, "."+filename+".*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing file: %w", err)
	}
	return tmp.Name(), nil
}

// Get retrieves a file from local storage
func (l *LocalStorage) Get(filename string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.basePath, filename))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}
