// Package signup defines access requests and the approval workflow.
//
// Anyone may register interest with an email address. A trusted or admin
// operator later approves the request, which provisions a time-limited
// account at the identity provider and emails the caller a one-time
// password, or denies it, which removes the request.
package signup

import (
	"errors"
	"time"

	"github.com/xraph/doorman/id"
)

// Request is a pending access request.
type Request struct {
	ID          id.SignupID `json:"id" db:"id"`
	Email       string      `json:"email" db:"email"`
	Approved    bool        `json:"approved" db:"approved"`
	ApprovedAt  *time.Time  `json:"approved_at,omitempty" db:"approved_at"`
	ProcessedBy string      `json:"processed_by,omitempty" db:"processed_by"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// ListFilter contains filters for listing access requests.
type ListFilter struct {
	Approved *bool  `json:"approved,omitempty"`
	Search   string `json:"search,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

var (
	// ErrRequestNotFound is returned when an access request cannot be found.
	ErrRequestNotFound = errors.New("signup: request not found")

	// ErrDuplicateEmail is returned when a request already exists for an email.
	ErrDuplicateEmail = errors.New("signup: request already exists for email")

	// ErrAlreadyActive is returned when registering an email whose request
	// was already approved. The caller should log in instead.
	ErrAlreadyActive = errors.New("signup: account is already active")
)
