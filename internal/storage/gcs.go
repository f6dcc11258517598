package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCS stores objects in a Firebase Storage bucket and hands out Firebase
// download URLs. With Moderated set, new objects land under PendingPrefix
// and must be promoted before they are served.
type GCS struct {
	Client    *gcs.Client
	Bucket    string
	Moderated bool
}

func NewGCS(ctx context.Context, bucket string, moderated bool) (*GCS, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: storage client: %w", err)
	}
	return &GCS{Client: client, Bucket: bucket, Moderated: moderated}, nil
}

func (g *GCS) Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error) {
	key := uuid.NewString() + safeExt(in.Filename)
	if g.Moderated {
		key = PendingPrefix + key
	}
	token := uuid.NewString()

	w := g.Client.Bucket(g.Bucket).Object(key).NewWriter(ctx)
	w.ContentType = in.ContentType
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}
	if in.Owner != "" {
		w.Metadata["username"] = in.Owner
		w.Metadata["type"] = in.Kind
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return PutResult{}, err
	}
	if err := w.Close(); err != nil {
		return PutResult{}, err
	}
	return PutResult{Key: key, URL: DownloadURL(g.Bucket, key, token)}, nil
}

func (g *GCS) Delete(ctx context.Context, key string) error {
	err := g.Client.Bucket(g.Bucket).Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

// Promote moves a pending object to its final key, marks it approved and
// returns the download URL of the promoted object.
func (g *GCS) Promote(ctx context.Context, pendingKey string) (PutResult, error) {
	if !strings.HasPrefix(pendingKey, PendingPrefix) {
		return PutResult{}, fmt.Errorf("gcs: %s is not a pending object", pendingKey)
	}
	finalKey := strings.TrimPrefix(pendingKey, PendingPrefix)
	b := g.Client.Bucket(g.Bucket)
	src := b.Object(pendingKey)
	dst := b.Object(finalKey)

	// Uploads finalize asynchronously; the object may not be readable yet.
	var attrs *gcs.ObjectAttrs
	var err error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		attrs, err = src.Attrs(ctx)
		if err == nil {
			break
		}
		if errors.Is(err, gcs.ErrObjectNotExist) && attempt < maxRetries-1 {
			backoff := time.Duration(attempt+1) * 500 * time.Millisecond
			log.Printf("[storage] object not found yet, retrying in %v (attempt %d/%d): %s", backoff, attempt+1, maxRetries, pendingKey)
			time.Sleep(backoff)
			continue
		}
		return PutResult{}, fmt.Errorf("source attrs: %w", err)
	}

	token := uuid.NewString()
	md := map[string]string{}
	for k, v := range attrs.Metadata {
		md[k] = v
	}
	md["moderation"] = "approved"
	md["firebaseStorageDownloadTokens"] = token

	if _, err := dst.CopierFrom(src).Run(ctx); err != nil {
		return PutResult{}, fmt.Errorf("copy: %w", err)
	}
	if _, err := dst.Update(ctx, gcs.ObjectAttrsToUpdate{Metadata: md}); err != nil {
		return PutResult{}, fmt.Errorf("update metadata: %w", err)
	}
	if err := src.Delete(ctx); err != nil {
		return PutResult{}, fmt.Errorf("delete pending: %w", err)
	}
	return PutResult{Key: finalKey, URL: DownloadURL(g.Bucket, finalKey, token)}, nil
}

// Metadata returns the custom metadata of an object.
func (g *GCS) Metadata(ctx context.Context, key string) (map[string]string, error) {
	attrs, err := g.Client.Bucket(g.Bucket).Object(key).Attrs(ctx)
	if err != nil {
		return nil, fmt.Errorf("object attrs: %w", err)
	}
	return attrs.Metadata, nil
}

// URI returns the gs:// address Vision reads the object from.
func (g *GCS) URI(key string) string {
	return fmt.Sprintf("gs://%s/%s", g.Bucket, key)
}

func (g *GCS) Close() error { return g.Client.Close() }

func (g *GCS) String() string { return fmt.Sprintf("gcs(%s)", g.Bucket) }

func DownloadURL(bucket, objectName, token string) string {
	return fmt.Sprintf(
		"https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket,
		url.PathEscape(objectName),
		url.QueryEscape(token),
	)
}
