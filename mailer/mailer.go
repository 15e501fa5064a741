// Package mailer defines the outbound email boundary.
//
// Doorman only ever sends one kind of message: the one-time password mail
// produced by an approved signup. Delivery is an external concern, so the
// interface stays minimal and implementations live in subpackages
// (sendgrid for production, logmail for development).
package mailer

import (
	"context"
	"time"
)

// PasswordEmail is the one-time password notification for a newly
// approved account.
type PasswordEmail struct {
	To        string
	Password  string
	ExpiresAt time.Time
}

// Mailer delivers password emails.
type Mailer interface {
	// SendPassword delivers the one-time password message. Errors are
	// reported to the caller; the mailer never retries on its own.
	SendPassword(ctx context.Context, msg *PasswordEmail) error
}
