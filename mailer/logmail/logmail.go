// Package logmail provides a development mailer that writes password
// emails to a structured logger instead of delivering them.
package logmail

import (
	"context"
	"log/slog"

	"github.com/xraph/doorman/mailer"
)

// Compile-time interface check.
var _ mailer.Mailer = (*Mailer)(nil)

// Mailer logs password emails via slog.
type Mailer struct {
	logger *slog.Logger
}

// New creates a logging mailer. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{logger: logger}
}

// SendPassword logs the message instead of sending it.
func (m *Mailer) SendPassword(_ context.Context, msg *mailer.PasswordEmail) error {
	m.logger.Info("password email (not delivered)",
		"to", msg.To,
		"password", msg.Password,
		"expires_at", msg.ExpiresAt,
	)
	return nil
}
