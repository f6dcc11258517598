package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/campuscart/backend/internal/storage"
)

// ImageModerator screens an uploaded object that landed under the pending prefix.
type ImageModerator interface {
	ModerateAndPromote(ctx context.Context, pendingKey, username string) (storage.PutResult, error)
}

// ImageUpload is one file taken from a multipart request.
type ImageUpload struct {
	File        io.Reader
	Filename    string
	ContentType string
	Size        int64
}

type ImageService struct {
	store     storage.Storage
	moderator ImageModerator
	maxBytes  int64
}

// NewImageService wraps store. moderator may be nil; maxBytes <= 0 disables
// the size check.
func NewImageService(store storage.Storage, moderator ImageModerator, maxBytes int64) *ImageService {
	return &ImageService{store: store, moderator: moderator, maxBytes: maxBytes}
}

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".gif": true}

func (s *ImageService) check(up *ImageUpload) error {
	if up == nil || up.File == nil {
		return ErrInvalidImage
	}
	if s.maxBytes > 0 && up.Size > s.maxBytes {
		return fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, s.maxBytes)
	}
	ct := up.ContentType
	if ct == "" || ct == "application/octet-stream" {
		ct = mimeFromExt(up.Filename)
	}
	if !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("%w: content type %q", ErrInvalidImage, ct)
	}
	if !imageExts[strings.ToLower(filepath.Ext(up.Filename))] {
		return fmt.Errorf("%w: extension of %q", ErrInvalidImage, up.Filename)
	}
	up.ContentType = ct
	return nil
}

func mimeFromExt(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	return ""
}

// Upload stores an image owned by username and, when a moderator is set,
// screens it before returning. Without a moderator a moderated bucket keeps
// the object pending for the worker.
func (s *ImageService) Upload(ctx context.Context, up *ImageUpload, username, kind string) (storage.PutResult, error) {
	if err := s.check(up); err != nil {
		return storage.PutResult{}, err
	}

	res, err := s.store.Put(ctx, up.File, storage.PutInput{
		Filename:    up.Filename,
		ContentType: up.ContentType,
		Size:        up.Size,
		Owner:       username,
		Kind:        kind,
	})
	if err != nil {
		return storage.PutResult{}, fmt.Errorf("store image: %w", err)
	}

	if s.moderator == nil || !strings.HasPrefix(res.Key, storage.PendingPrefix) {
		return res, nil
	}
	return s.moderator.ModerateAndPromote(ctx, res.Key, username)
}

// Remove deletes a stored image, logging failures.
func (s *ImageService) Remove(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		log.Printf("[ImageService] delete key=%s err=%v", key, err)
	}
}

// SniffContentType reads up to 512 bytes of r and returns the detected type
// along with a reader that still yields the full content.
func SniffContentType(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", nil, err
	}
	head = head[:n]
	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), r), nil
}
