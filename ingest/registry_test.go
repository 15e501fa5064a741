package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/doorman/id"
)

func TestRegistryPutGet(t *testing.T) {
	r := NewRegistry(WithTTL(time.Minute))

	jobID := id.NewJobID()
	r.Put(&Job{ID: jobID, Source: "manual.pdf", Status: StatusQueued, CreatedAt: time.Now()})

	got, ok := r.Get(jobID)
	if !ok {
		t.Fatal("expected job to be tracked")
	}
	if got.Status != StatusQueued {
		t.Fatalf("expected queued, got %s", got.Status)
	}

	if _, ok := r.Get(id.NewJobID()); ok {
		t.Fatal("expected miss for unknown job id")
	}
}

func TestRegistryTTLExpiry(t *testing.T) {
	r := NewRegistry(WithTTL(1 * time.Millisecond))

	jobID := id.NewJobID()
	r.Put(&Job{ID: jobID, Status: StatusCompleted, CreatedAt: time.Now()})
	time.Sleep(5 * time.Millisecond)

	if _, ok := r.Get(jobID); ok {
		t.Fatal("expected miss after TTL expiry")
	}
}

func TestRegistryMaxSize(t *testing.T) {
	r := NewRegistry(WithMaxSize(2))

	for i := 0; i < 5; i++ {
		r.Put(&Job{ID: id.NewJobID(), Status: StatusQueued, CreatedAt: time.Now()})
	}

	r.mu.RLock()
	size := len(r.entries)
	r.mu.RUnlock()
	if size > 2 {
		t.Fatalf("expected max 2 entries, got %d", size)
	}
}

func TestRegistryListNewestFirst(t *testing.T) {
	r := NewRegistry()

	base := time.Now()
	old := &Job{ID: id.NewJobID(), Source: "old", Status: StatusCompleted, CreatedAt: base.Add(-time.Hour)}
	recent := &Job{ID: id.NewJobID(), Source: "recent", Status: StatusQueued, CreatedAt: base}
	r.Put(old)
	r.Put(recent)

	jobs := r.List()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Source != "recent" {
		t.Fatalf("expected newest job first, got %s", jobs[0].Source)
	}
}

func TestRunnerCompletesJob(t *testing.T) {
	pipeline := PipelineFunc(func(_ context.Context, doc *Document) (int, error) {
		if doc.Source != "notes.txt" {
			t.Errorf("unexpected source %q", doc.Source)
		}
		return 7, nil
	})
	r := NewRunner(pipeline)

	job := r.Enqueue(context.Background(), &Document{Text: "hello", Source: "notes.txt"})
	if job.Status != StatusQueued {
		t.Fatalf("expected queued, got %s", job.Status)
	}
	r.Wait()

	done, ok := r.Registry().Get(job.ID)
	if !ok {
		t.Fatal("expected finished job to stay tracked")
	}
	if done.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", done.Status)
	}
	if done.NumChunks != 7 {
		t.Fatalf("expected 7 chunks, got %d", done.NumChunks)
	}
	if done.FinishedAt == nil {
		t.Fatal("expected finished timestamp")
	}
}

func TestRunnerRecordsFailure(t *testing.T) {
	pipeline := PipelineFunc(func(_ context.Context, _ *Document) (int, error) {
		return 0, errors.New("embedding service unavailable")
	})
	r := NewRunner(pipeline)

	job := r.Enqueue(context.Background(), &Document{Text: "x", Source: "bad"})
	r.Wait()

	done, ok := r.Registry().Get(job.ID)
	if !ok {
		t.Fatal("expected failed job to stay tracked")
	}
	if done.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", done.Status)
	}
	if done.Error == "" {
		t.Fatal("expected error message on failed job")
	}
}

func TestRunnerOutlivesRequestContext(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	pipeline := PipelineFunc(func(ctx context.Context, _ *Document) (int, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 1, nil
	})
	r := NewRunner(pipeline)

	ctx, cancel := context.WithCancel(context.Background())
	job := r.Enqueue(ctx, &Document{Text: "x", Source: "s"})

	<-started
	cancel()
	close(release)
	r.Wait()

	done, _ := r.Registry().Get(job.ID)
	if done.Status != StatusCompleted {
		t.Fatalf("job should survive request cancellation, got %s: %s", done.Status, done.Error)
	}
}
