package api

import "time"

// ChatResponse is the answer to a question, tagged with the role and the
// quota state that admitted it.
type ChatResponse struct {
	Answer    string   `json:"answer" description:"Answer text"`
	Sources   []string `json:"sources,omitempty" description:"Document sources the answer drew on"`
	Role      string   `json:"role" description:"Role the caller resolved to"`
	HitsUsed  int      `json:"hits_used,omitempty" description:"Demo hits consumed this window"`
	HitsLimit int      `json:"hits_limit,omitempty" description:"Demo hit limit per window"`
}

// VerifyResponse describes the caller's resolved role.
type VerifyResponse struct {
	Role      string `json:"role" description:"Resolved role"`
	Source    string `json:"source" description:"Resolution path (provider, demo)"`
	AccountID string `json:"account_id,omitempty" description:"Provider account ID"`
	HitsUsed  int    `json:"hits_used,omitempty" description:"Demo hits consumed this window"`
	HitsLimit int    `json:"hits_limit,omitempty" description:"Demo hit limit per window"`
}

// RegisterResponse reports the outcome of an access request.
type RegisterResponse struct {
	Status string `json:"status" description:"Registration status (ok, pending)"`
}

// ApproveResponse describes the account provisioned by an approval.
type ApproveResponse struct {
	Email     string     `json:"email" description:"Approved email"`
	AccountID string     `json:"account_id" description:"Provider account ID"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" description:"Account expiry"`
}

// ListResponse wraps a list of items with pagination metadata.
type ListResponse[T any] struct {
	Items  []T   `json:"items" description:"List of items"`
	Total  int64 `json:"total" description:"Total count"`
	Limit  int   `json:"limit" description:"Page size"`
	Offset int   `json:"offset" description:"Page offset"`
}
