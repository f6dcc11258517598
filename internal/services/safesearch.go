package services

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// Vision likelihood names, weakest first.
var likelihoodRank = map[string]int{
	"UNKNOWN":       0,
	"VERY_UNLIKELY": 1,
	"UNLIKELY":      2,
	"POSSIBLE":      3,
	"LIKELY":        4,
	"VERY_LIKELY":   5,
}

// SafeSearchResult holds the Vision likelihood per category.
type SafeSearchResult struct {
	Adult    string
	Violence string
	Racy     string
	Spoof    string
	Medical  string
}

// IsUnsafe flags adult, violent or racy content rated LIKELY or above.
// Spoof and medical ratings are informational.
func (r *SafeSearchResult) IsUnsafe() bool {
	limit := likelihoodRank["LIKELY"]
	for _, l := range []string{r.Adult, r.Violence, r.Racy} {
		if likelihoodRank[l] >= limit {
			return true
		}
	}
	return false
}

func (r *SafeSearchResult) String() string {
	return fmt.Sprintf("adult=%s violence=%s racy=%s spoof=%s medical=%s", r.Adult, r.Violence, r.Racy, r.Spoof, r.Medical)
}

// SafeSearchDetector annotates an image stored at a gs:// URI.
type SafeSearchDetector interface {
	Detect(ctx context.Context, gcsURI string) (*SafeSearchResult, error)
}

// VisionDetector calls the Vision images:annotate endpoint with
// SAFE_SEARCH_DETECTION.
type VisionDetector struct {
	svc *vision.Service
}

// NewVisionDetector uses Application Default Credentials.
func NewVisionDetector(ctx context.Context) (*VisionDetector, error) {
	svc, err := vision.NewService(ctx, option.WithScopes(vision.CloudPlatformScope))
	if err != nil {
		return nil, fmt.Errorf("vision: %w", err)
	}
	return &VisionDetector{svc: svc}, nil
}

func (d *VisionDetector) Detect(ctx context.Context, gcsURI string) (*SafeSearchResult, error) {
	batch := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:    &vision.Image{Source: &vision.ImageSource{GcsImageUri: gcsURI}},
			Features: []*vision.Feature{{Type: "SAFE_SEARCH_DETECTION"}},
		}},
	}
	resp, err := d.svc.Images.Annotate(batch).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("vision: annotate %s: %w", gcsURI, err)
	}
	if len(resp.Responses) == 0 {
		return &SafeSearchResult{}, nil
	}

	first := resp.Responses[0]
	if first.Error != nil && first.Error.Message != "" {
		return nil, fmt.Errorf("vision: %s", first.Error.Message)
	}
	ann := first.SafeSearchAnnotation
	if ann == nil {
		return &SafeSearchResult{}, nil
	}
	return &SafeSearchResult{
		Adult:    ann.Adult,
		Violence: ann.Violence,
		Racy:     ann.Racy,
		Spoof:    ann.Spoof,
		Medical:  ann.Medical,
	}, nil
}
