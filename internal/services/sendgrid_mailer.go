package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrMailerNotConfigured = errors.New("mailer: sender address or API key missing")

// Mailer delivers a plain-text email.
type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, body string) error
}

const sendGridEndpoint = "https://api.sendgrid.com/v3/mail/send"

// SendGridMailer talks to the SendGrid v3 mail API over HTTP.
type SendGridMailer struct {
	APIKey    string
	FromEmail string
	FromName  string
	Endpoint  string
	Client    *http.Client
}

func NewSendGridMailer(apiKey, fromEmail string) *SendGridMailer {
	return &SendGridMailer{
		APIKey:    strings.TrimSpace(apiKey),
		FromEmail: strings.TrimSpace(fromEmail),
		FromName:  "CampusCart",
		Endpoint:  sendGridEndpoint,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type mailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailPayload struct {
	Personalizations []struct {
		To      []mailAddress `json:"to"`
		Subject string        `json:"subject"`
	} `json:"personalizations"`
	From    mailAddress `json:"from"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func (m *SendGridMailer) payload(to mailAddress, subject, body string) mailPayload {
	var p mailPayload
	p.Personalizations = make([]struct {
		To      []mailAddress `json:"to"`
		Subject string        `json:"subject"`
	}, 1)
	p.Personalizations[0].To = []mailAddress{to}
	p.Personalizations[0].Subject = subject
	p.From = mailAddress{Email: m.FromEmail, Name: m.FromName}
	p.Content = make([]struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}, 1)
	p.Content[0].Type = "text/plain"
	p.Content[0].Value = body
	return p
}

func (m *SendGridMailer) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	if m.APIKey == "" || m.FromEmail == "" {
		return ErrMailerNotConfigured
	}
	to := mailAddress{Email: strings.TrimSpace(toEmail), Name: strings.TrimSpace(toName)}
	if to.Email == "" {
		return errors.New("mailer: empty recipient")
	}

	raw, err := json.Marshal(m.payload(to, subject, body))
	if err != nil {
		return err
	}
	endpoint := m.Endpoint
	if endpoint == "" {
		endpoint = sendGridEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mailer: sendgrid answered %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
