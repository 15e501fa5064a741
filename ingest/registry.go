package ingest

import (
	"sort"
	"sync"
	"time"

	"github.com/xraph/doorman/id"
)

// Registry is an in-memory job table with TTL-based expiration. Finished
// jobs stay visible long enough for a caller to poll their outcome and
// are then evicted; the table is bounded so a burst of ingests cannot
// grow it without limit.
type Registry struct {
	mu      sync.RWMutex
	entries map[id.JobID]*jobEntry
	ttl     time.Duration
	maxSize int
}

type jobEntry struct {
	job       *Job
	expiresAt time.Time
}

// RegistryOption configures the job registry.
type RegistryOption func(*Registry)

// WithTTL sets how long a job record stays visible.
func WithTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) { r.ttl = ttl }
}

// WithMaxSize sets the maximum number of tracked jobs.
func WithMaxSize(n int) RegistryOption {
	return func(r *Registry) { r.maxSize = n }
}

// NewRegistry creates a job registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		entries: make(map[id.JobID]*jobEntry),
		ttl:     time.Hour,
		maxSize: 1000,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns a tracked job by id.
func (r *Registry) Get(jobID id.JobID) (*Job, bool) {
	r.mu.RLock()
	e, ok := r.entries[jobID]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		r.mu.Lock()
		delete(r.entries, jobID)
		r.mu.Unlock()
		return nil, false
	}
	return e.job, true
}

// Put stores or replaces a job record and restarts its TTL.
func (r *Registry) Put(job *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Evict if at capacity.
	if len(r.entries) >= r.maxSize {
		r.evictExpired()
		if len(r.entries) >= r.maxSize {
			r.evictOne()
		}
	}

	r.entries[job.ID] = &jobEntry{
		job:       job,
		expiresAt: time.Now().Add(r.ttl),
	}
}

// List returns all live job records, newest first.
func (r *Registry) List() []*Job {
	now := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]*Job, 0, len(r.entries))
	for _, e := range r.entries {
		if now.After(e.expiresAt) {
			continue
		}
		jobs = append(jobs, e.job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs
}

// evictExpired removes all expired entries. Must hold write lock.
func (r *Registry) evictExpired() {
	now := time.Now()
	for k, e := range r.entries {
		if now.After(e.expiresAt) {
			delete(r.entries, k)
		}
	}
}

// evictOne removes one arbitrary entry. Must hold write lock.
func (r *Registry) evictOne() {
	for k := range r.entries {
		delete(r.entries, k)
		return
	}
}
