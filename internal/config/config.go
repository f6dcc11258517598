package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/campuscart/backend/internal/storage"
)

type Config struct {
	ServerAddress   string
	JWTSecret       string
	JWTExpiration   time.Duration
	ShutdownTimeout time.Duration

	MongoURI string
	MongoDB  string
	DataDir  string

	Storage         storage.Config
	MaxUploadSizeMB int64

	ModerationEnabled bool
	// ModerationInline checks uploads during the request instead of leaving
	// them to the moderation worker.
	ModerationInline bool

	FirebaseProjectID       string
	FirebaseCredentialsJSON string

	SendGridAPIKey    string
	SendGridFromEmail string

	RecaptchaSecret string

	AdminUsername string
	AdminPassword string
}

// Load reads the environment, after merging an optional .env file.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to read .env: %v", err)
	}

	moderation := getBool("MODERATION_ENABLED", false)
	return &Config{
		ServerAddress:   getEnv("SERVER_ADDRESS", ":8080"),
		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpiration:   getDuration("JWT_EXPIRATION", 24*time.Hour),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),

		MongoURI: getEnv("MONGO_URI", ""),
		MongoDB:  getEnv("MONGO_DB", "campuscart"),
		DataDir:  getEnv("DATA_DIR", "./data"),

		Storage: storage.Config{
			Driver:         getEnv("STORAGE_DRIVER", "local"),
			LocalDir:       getEnv("UPLOAD_DIR", "./uploads"),
			LocalURLPrefix: getEnv("UPLOAD_URL_PREFIX", "/uploads"),
			S3: storage.S3Config{
				Region:        getEnv("S3_REGION", ""),
				Bucket:        getEnv("S3_BUCKET", ""),
				Prefix:        getEnv("S3_PREFIX", "uploads"),
				PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
			},
			GCSBucket: getEnv("GCS_BUCKET", ""),
			Moderated: moderation,
		},
		MaxUploadSizeMB: int64(getInt("MAX_UPLOAD_SIZE_MB", 10)),

		ModerationEnabled: moderation,
		ModerationInline:  getBool("MODERATION_INLINE", true),

		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),

		RecaptchaSecret: getEnv("RECAPTCHA_SECRET", ""),

		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}
