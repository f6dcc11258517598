package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/campuscart/backend/internal/config"
	"github.com/campuscart/backend/internal/services"
	"github.com/campuscart/backend/internal/storage"
)

const processTimeout = 60 * time.Second

// objectBucket is the subset of storage.GCS the worker drives.
type objectBucket interface {
	services.PendingBucket
	Metadata(ctx context.Context, key string) (map[string]string, error)
}

// worker screens images uploaded under pending/ when the API server leaves
// moderation to Eventarc.
type worker struct {
	bucketName string
	bucket     objectBucket
	moderation *services.ModerationService
	actions    *services.ModerationActions
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if cfg.MongoURI == "" {
		log.Fatal("[worker] MONGO_URI env var is not set")
	}
	if cfg.Storage.GCSBucket == "" {
		log.Fatal("[worker] GCS_BUCKET env var is not set")
	}

	client, err := services.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("[worker] mongo connect failed: %v", err)
	}
	stores := services.NewMongoStores(ctx, client.Database(cfg.MongoDB))

	bucket, err := storage.NewGCS(ctx, cfg.Storage.GCSBucket, true)
	if err != nil {
		log.Fatalf("[worker] %v", err)
	}
	detector, err := services.NewVisionDetector(ctx)
	if err != nil {
		log.Fatalf("[worker] %v", err)
	}

	wk := newWorker(bucket.Bucket, bucket, detector, stores)
	srv := &http.Server{
		Addr:              ":" + getEnv("PORT", "8080"),
		Handler:           wk.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("[worker] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[worker] %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error { return srv.Shutdown(ctx) },
		"mongo":       func(ctx context.Context) error { return client.Disconnect(ctx) },
		"gcs":         func(ctx context.Context) error { return bucket.Close() },
	})
	os.Exit(<-wait)
}

func newWorker(bucketName string, bucket objectBucket, detector services.SafeSearchDetector, stores *services.Stores) *worker {
	return &worker{
		bucketName: bucketName,
		bucket:     bucket,
		moderation: services.NewModerationService(bucket, detector, stores.Flags),
		actions: &services.ModerationActions{
			Products:      stores.Products,
			Users:         stores.Users,
			Flags:         stores.Flags,
			Notifications: services.NewNotificationService(stores.Notifications, stores.Users, nil),
		},
	}
}

func (wk *worker) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/events", wk.handleFinalize)
	return r
}

// handleFinalize acknowledges every event it chooses to skip. Only a failed
// moderation pass answers 500, which makes Eventarc redeliver.
func (wk *worker) handleFinalize(w http.ResponseWriter, r *http.Request) {
	log.Printf("[worker] event Ce-Type=%s Ce-Subject=%s", r.Header.Get("Ce-Type"), r.Header.Get("Ce-Subject"))

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	ev, err := parseFinalizeEvent(body)
	if err != nil {
		log.Printf("[worker] %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	switch {
	case !ev.complete():
		log.Printf("[worker] skipping event without bucket or name")
	case ev.Bucket != wk.bucketName, !strings.HasPrefix(ev.Name, storage.PendingPrefix):
		log.Printf("[worker] skipping bucket=%s name=%s", ev.Bucket, ev.Name)
	default:
		ctx, cancel := context.WithTimeout(r.Context(), processTimeout)
		defer cancel()
		if err := wk.process(ctx, ev); err != nil {
			log.Printf("[worker] name=%s err=%v", ev.Name, err)
			http.Error(w, "moderation failed", http.StatusInternalServerError)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (wk *worker) process(ctx context.Context, ev objectEvent) error {
	username, kind := ev.owner()
	if username == "" && kind == "" {
		if md, err := wk.bucket.Metadata(ctx, ev.Name); err != nil {
			log.Printf("[worker] metadata lookup failed name=%s err=%v", ev.Name, err)
		} else {
			ev.Metadata = md
			username, kind = ev.owner()
		}
	}

	verdict, err := wk.moderation.Check(ctx, ev.Name)
	if err != nil {
		return err
	}

	if verdict.IsUnsafe() {
		if err := wk.bucket.Delete(ctx, ev.Name); err != nil {
			return err
		}
		if err := wk.actions.ApplyRejected(ctx, username, kind, ev.Name); err != nil {
			log.Printf("[worker] clearing references failed name=%s err=%v", ev.Name, err)
		}
		log.Printf("[worker] unsafe name=%s username=%s type=%s", ev.Name, username, kind)
		return nil
	}

	final, err := wk.bucket.Promote(ctx, ev.Name)
	if err != nil {
		return err
	}
	if err := wk.actions.ApplyApproved(ctx, username, kind, ev.Name, final); err != nil {
		log.Printf("[worker] updating references failed name=%s err=%v", ev.Name, err)
	}
	log.Printf("[worker] promoted name=%s final=%s", ev.Name, final.Key)
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
