package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CaptchaVerifier checks the token a sign-up form was submitted with.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

const recaptchaEndpoint = "https://www.google.com/recaptcha/api/siteverify"

// RecaptchaVerifier validates reCAPTCHA v2 checkbox tokens with Google.
type RecaptchaVerifier struct {
	Secret   string
	Endpoint string
	Client   *http.Client
}

func NewRecaptchaVerifier(secret string) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		Secret:   strings.TrimSpace(secret),
		Endpoint: recaptchaEndpoint,
		Client:   &http.Client{Timeout: 8 * time.Second},
	}
}

// Verify reports a token Google refuses as ErrCaptchaFailed. Transport
// problems come back unwrapped so callers can tell them apart.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: missing token", ErrCaptchaFailed)
	}

	params := url.Values{"secret": {v.Secret}, "response": {token}}
	if remoteIP != "" {
		params.Set("remoteip", remoteIP)
	}
	endpoint := v.Endpoint
	if endpoint == "" {
		endpoint = recaptchaEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("recaptcha: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("recaptcha: siteverify answered %d", resp.StatusCode)
	}

	var verdict struct {
		Success bool     `json:"success"`
		Host    string   `json:"hostname"`
		Codes   []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return fmt.Errorf("recaptcha: decode: %w", err)
	}
	if verdict.Success {
		return nil
	}
	log.Printf("[Register] captcha refused host=%s codes=%v", verdict.Host, verdict.Codes)
	return fmt.Errorf("%w: %s", ErrCaptchaFailed, strings.Join(verdict.Codes, ","))
}
