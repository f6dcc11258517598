package storage

import (
	"context"
	"fmt"
)

type Config struct {
	Driver string

	LocalDir       string
	LocalURLPrefix string

	S3 S3Config

	GCSBucket string
	Moderated bool
}

type FactoryResult struct {
	Driver  string
	Storage Storage
}

func New(ctx context.Context, cfg Config) (FactoryResult, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "local"
	}

	switch driver {
	case "local":
		return FactoryResult{Driver: "local", Storage: NewLocal(cfg.LocalDir, cfg.LocalURLPrefix)}, nil

	case "s3":
		if cfg.S3.Region == "" || cfg.S3.Bucket == "" || cfg.S3.PublicBaseURL == "" {
			return FactoryResult{}, fmt.Errorf("S3 config missing: S3_REGION, S3_BUCKET, S3_PUBLIC_BASE_URL required")
		}
		s, err := NewS3(ctx, cfg.S3)
		if err != nil {
			return FactoryResult{}, err
		}
		return FactoryResult{Driver: "s3", Storage: s}, nil

	case "gcs":
		if cfg.GCSBucket == "" {
			return FactoryResult{}, fmt.Errorf("GCS config missing: GCS_BUCKET required")
		}
		g, err := NewGCS(ctx, cfg.GCSBucket, cfg.Moderated)
		if err != nil {
			return FactoryResult{}, err
		}
		return FactoryResult{Driver: "gcs", Storage: g}, nil

	default:
		return FactoryResult{}, fmt.Errorf("unknown STORAGE_DRIVER: %s", driver)
	}
}
