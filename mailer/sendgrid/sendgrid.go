// Package sendgrid delivers password emails through the SendGrid v3
// mail-send REST API.
package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xraph/doorman/mailer"
)

// Compile-time interface check.
var _ mailer.Mailer = (*Mailer)(nil)

const defaultEndpoint = "https://api.sendgrid.com/v3/mail/send"

// Mailer sends password emails via SendGrid.
type Mailer struct {
	apiKey    string
	fromEmail string
	fromName  string
	endpoint  string
	client    *http.Client
}

// Option configures the mailer.
type Option func(*Mailer)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Mailer) { m.client = c }
}

// WithEndpoint overrides the mail-send endpoint. Used in tests.
func WithEndpoint(url string) Option {
	return func(m *Mailer) { m.endpoint = url }
}

// WithFromName sets the sender display name.
func WithFromName(name string) Option {
	return func(m *Mailer) { m.fromName = name }
}

// New creates a SendGrid mailer sending from the given address.
func New(apiKey, fromEmail string, opts ...Option) *Mailer {
	m := &Mailer{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		endpoint:  defaultEndpoint,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SendPassword delivers the one-time password message.
func (m *Mailer) SendPassword(ctx context.Context, msg *mailer.PasswordEmail) error {
	if m.apiKey == "" {
		return fmt.Errorf("sendgrid: api key is not set")
	}

	expires := msg.ExpiresAt.UTC().Format("January 2, 2006 at 3:04 PM UTC")
	payload := map[string]any{
		"personalizations": []map[string]any{
			{"to": []map[string]string{{"email": msg.To}}},
		},
		"from":    map[string]string{"email": m.fromEmail, "name": m.fromName},
		"subject": "Your access password",
		"content": []map[string]string{
			{
				"type": "text/plain",
				"value": fmt.Sprintf(
					"Your one-time access password is: %s\n\n"+
						"It expires on %s. Log in with your email address and this password.\n\n"+
						"If you did not request access, ignore this message.\n",
					msg.Password, expires),
			},
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("sendgrid: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("sendgrid: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("sendgrid: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512)) //nolint:errcheck // best-effort error detail
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, body)
	}
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // draining for connection reuse
	return nil
}
