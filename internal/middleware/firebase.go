package middleware

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/campuscart/backend/internal/services"
)

type FirebaseAuthConfig struct {
	ProjectID       string
	CredentialsJSON string
}

// NewFirebaseAuthClient falls back to Application Default Credentials when
// no credentials JSON is configured.
func NewFirebaseAuthClient(ctx context.Context, cfg FirebaseAuthConfig) (*fbauth.Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}
	var conf *firebase.Config
	if cfg.ProjectID != "" {
		conf = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}
	return client, nil
}

// FirebaseVerifier checks Google ID tokens issued through Firebase Auth.
type FirebaseVerifier struct {
	Client *fbauth.Client
}

func (v *FirebaseVerifier) VerifyGoogle(ctx context.Context, idToken string) (*services.GoogleIdentity, error) {
	tok, err := v.Client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	claim := func(k string) string {
		s, _ := tok.Claims[k].(string)
		return s
	}
	return &services.GoogleIdentity{
		Email:   claim("email"),
		Name:    claim("name"),
		Picture: claim("picture"),
	}, nil
}
