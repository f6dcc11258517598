package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// PendingPrefix marks objects that still await image moderation.
const PendingPrefix = "pending/"

type PutInput struct {
	Filename    string
	ContentType string
	Size        int64
	// Owner and Kind are attached as object metadata where the driver supports it.
	Owner string
	Kind  string
}

type PutResult struct {
	Key string
	URL string
}

// Storage holds listing images and profile photos.
type Storage interface {
	Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error)
	Delete(ctx context.Context, key string) error
}

func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp", ".gif":
		return ext
	default:
		return ""
	}
}
