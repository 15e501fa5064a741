package signup

import (
	"context"

	"github.com/xraph/doorman/id"
)

// Store defines persistence operations for access requests.
type Store interface {
	// CreateSignup persists a new access request. Inserting a second
	// request for the same email yields ErrDuplicateEmail.
	CreateSignup(ctx context.Context, r *Request) error

	// GetSignup retrieves an access request by ID.
	GetSignup(ctx context.Context, reqID id.SignupID) (*Request, error)

	// GetSignupByEmail retrieves an access request by email.
	GetSignupByEmail(ctx context.Context, email string) (*Request, error)

	// UpdateSignup persists changes to an access request.
	UpdateSignup(ctx context.Context, r *Request) error

	// DeleteSignup removes an access request by ID.
	DeleteSignup(ctx context.Context, reqID id.SignupID) error

	// ListSignups returns access requests matching the filter.
	ListSignups(ctx context.Context, filter *ListFilter) ([]*Request, error)

	// CountSignups returns the number of requests matching the filter.
	CountSignups(ctx context.Context, filter *ListFilter) (int64, error)
}
