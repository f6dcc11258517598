package services

import (
	"log"

	"github.com/campuscart/backend/internal/storage"
)

// snapshot wraps an optional JSON file; a nil file disables persistence.
type snapshot[T any] struct {
	file *storage.JSONFile[T]
}

func openSnapshot[T any](dataDir, filename string) (snapshot[T], T, error) {
	var zero T
	if dataDir == "" {
		return snapshot[T]{}, zero, nil
	}
	f, err := storage.NewJSONFile[T](dataDir, filename)
	if err != nil {
		return snapshot[T]{}, zero, err
	}
	v, err := f.Load()
	if err != nil {
		return snapshot[T]{}, zero, err
	}
	return snapshot[T]{file: f}, v, nil
}

func (s snapshot[T]) save(v T) {
	if s.file == nil {
		return
	}
	if err := s.file.Save(v); err != nil {
		log.Printf("[memory] failed to save %s: %v", s.file.Path(), err)
	}
}
