package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// JSONFile persists one snapshot value as an indented JSON file. The
// in-memory stores use it to survive restarts when no database is configured.
type JSONFile[T any] struct {
	mu   sync.Mutex
	path string
}

func NewJSONFile[T any](dataDir, filename string) (*JSONFile[T], error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &JSONFile[T]{path: filepath.Join(dataDir, filename)}, nil
}

// Load returns the zero value when the file does not exist yet.
func (f *JSONFile[T]) Load() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out T
	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return out, err
	}
	defer file.Close()

	err = json.NewDecoder(file).Decode(&out)
	return out, err
}

// Save writes to a temp file and renames it over the snapshot.
func (f *JSONFile[T]) Save(v T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp := f.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *JSONFile[T]) Path() string { return f.path }
