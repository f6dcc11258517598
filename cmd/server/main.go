package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campuscart/backend/internal/config"
	"github.com/campuscart/backend/internal/handlers"
	appMiddleware "github.com/campuscart/backend/internal/middleware"
	"github.com/campuscart/backend/internal/services"
	"github.com/campuscart/backend/internal/storage"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Persistence: MongoDB when configured, JSON snapshots otherwise
	var stores *services.Stores
	var mongoClient *mongo.Client
	if cfg.MongoURI != "" {
		client, err := services.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		mongoClient = client
		stores = services.NewMongoStores(ctx, client.Database(cfg.MongoDB))
	} else {
		s, err := services.NewMemoryStores(cfg.DataDir)
		if err != nil {
			log.Fatalf("Failed to open data dir %s: %v", cfg.DataDir, err)
		}
		stores = s
		log.Printf("MONGO_URI not set, using local data in %s", cfg.DataDir)
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Printf("Image storage: %s", store.Storage)

	// Image moderation needs the GCS bucket for Vision to read from
	var moderator services.ImageModerator
	if gcsStore, ok := store.Storage.(*storage.GCS); ok && cfg.ModerationEnabled && cfg.ModerationInline {
		detector, err := services.NewVisionDetector(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize Vision client: %v", err)
		}
		moderator = services.NewModerationService(gcsStore, detector, stores.Flags)
		log.Printf("Inline image moderation enabled")
	} else if cfg.ModerationEnabled && store.Driver != "gcs" {
		log.Printf("Warning: MODERATION_ENABLED needs STORAGE_DRIVER=gcs, uploads are not moderated")
	}
	images := services.NewImageService(store.Storage, moderator, cfg.MaxUploadSizeMB<<20)

	var verifier services.IdentityVerifier
	if cfg.FirebaseProjectID != "" || cfg.FirebaseCredentialsJSON != "" {
		authClient, err := appMiddleware.NewFirebaseAuthClient(ctx, appMiddleware.FirebaseAuthConfig{
			ProjectID:       cfg.FirebaseProjectID,
			CredentialsJSON: cfg.FirebaseCredentialsJSON,
		})
		if err != nil {
			log.Printf("Warning: failed to initialize Firebase Auth client: %v", err)
		} else {
			verifier = &appMiddleware.FirebaseVerifier{Client: authClient}
		}
	}

	var mailer services.Mailer
	if cfg.SendGridAPIKey != "" {
		mailer = services.NewSendGridMailer(cfg.SendGridAPIKey, cfg.SendGridFromEmail)
	}

	var captcha services.CaptchaVerifier
	if cfg.RecaptchaSecret != "" {
		captcha = services.NewRecaptchaVerifier(cfg.RecaptchaSecret)
	}

	notifications := services.NewNotificationService(stores.Notifications, stores.Users, mailer)
	users := services.NewUserService(stores.Users, images, verifier)
	if err := users.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to create admin %s: %v", cfg.AdminUsername, err)
	}

	deps := handlers.Deps{
		Products:       services.NewProductService(stores.Products, stores.Users, stores.Bookmarks, images, notifications),
		Users:          users,
		Accounts:       services.NewAccountService(stores.Users, stores.Products, stores.Bookmarks, stores.Notifications, stores.Messages, images),
		Messages:       services.NewMessageService(stores.Messages, stores.Users, stores.Products),
		Notifications:  notifications,
		Bookmarks:      services.NewBookmarkService(stores.Bookmarks, stores.Products),
		Captcha:        captcha,
		JWTSecret:      cfg.JWTSecret,
		JWTExpiration:  cfg.JWTExpiration,
		MaxUploadBytes: cfg.MaxUploadSizeMB << 20,
	}
	if store.Driver == "local" {
		deps.UploadDir = cfg.Storage.LocalDir
		deps.UploadURLPrefix = cfg.Storage.LocalURLPrefix
	}

	srv := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: handlers.NewRouter(deps),
	}
	go func() {
		log.Printf("CampusCart API server starting on %s", cfg.ServerAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	ops := map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			log.Println("Shutting down HTTP server...")
			return srv.Shutdown(ctx)
		},
	}
	if mongoClient != nil {
		ops["mongo"] = func(ctx context.Context) error {
			return mongoClient.Disconnect(ctx)
		}
	}
	if gcsStore, ok := store.Storage.(*storage.GCS); ok {
		ops["gcs"] = func(ctx context.Context) error {
			return gcsStore.Close()
		}
	}

	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, ops)
	exitCode := <-wait
	log.Printf("Server exited with code: %d", exitCode)
	os.Exit(exitCode)
}
