package plugin

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/doorman/ingest"
	"github.com/xraph/doorman/session"
	"github.com/xraph/doorman/signup"
)

// recorder implements every hook and counts invocations.
type recorder struct {
	beforeResolve  int
	afterResolve   int
	sessionCreated int
	sessionExpired int
	quotaExhausted int
	signupReceived int
	signupApproved int
	signupDenied   int
	ingestQueued   int
	ingestFinished int
	shutdown       int
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) OnBeforeResolve(context.Context, any) error {
	r.beforeResolve++
	return nil
}
func (r *recorder) OnAfterResolve(context.Context, any, any) error {
	r.afterResolve++
	return nil
}
func (r *recorder) OnSessionCreated(context.Context, *session.DemoSession) error {
	r.sessionCreated++
	return nil
}
func (r *recorder) OnSessionExpired(context.Context, string) error {
	r.sessionExpired++
	return nil
}
func (r *recorder) OnQuotaExhausted(context.Context, *session.DemoSession) error {
	r.quotaExhausted++
	return nil
}
func (r *recorder) OnSignupReceived(context.Context, *signup.Request) error {
	r.signupReceived++
	return nil
}
func (r *recorder) OnSignupApproved(context.Context, *signup.Request) error {
	r.signupApproved++
	return nil
}
func (r *recorder) OnSignupDenied(context.Context, *signup.Request) error {
	r.signupDenied++
	return nil
}
func (r *recorder) OnIngestQueued(context.Context, *ingest.Job) error {
	r.ingestQueued++
	return nil
}
func (r *recorder) OnIngestFinished(context.Context, *ingest.Job) error {
	r.ingestFinished++
	return nil
}
func (r *recorder) OnShutdown(context.Context) error {
	r.shutdown++
	return nil
}

// namedOnly implements just the base interface.
type namedOnly struct{}

func (namedOnly) Name() string { return "named-only" }

// failing returns an error from every hook it implements.
type failing struct{ calls int }

func (f *failing) Name() string { return "failing" }
func (f *failing) OnSessionCreated(context.Context, *session.DemoSession) error {
	f.calls++
	return errors.New("boom")
}

func TestRegistryDispatchesAllHooks(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(slog.Default())

	rec := &recorder{}
	reg.Register(rec)
	reg.Register(namedOnly{})

	s := &session.DemoSession{SessionID: "s1", HitCount: 1, ExpiresAt: time.Now().Add(time.Hour)}
	sr := &signup.Request{Email: "new@example.com"}
	job := &ingest.Job{Source: "doc.pdf", Status: ingest.StatusQueued}

	reg.EmitBeforeResolve(ctx, nil)
	reg.EmitAfterResolve(ctx, nil, nil)
	reg.EmitSessionCreated(ctx, s)
	reg.EmitSessionExpired(ctx, "s1")
	reg.EmitQuotaExhausted(ctx, s)
	reg.EmitSignupReceived(ctx, sr)
	reg.EmitSignupApproved(ctx, sr)
	reg.EmitSignupDenied(ctx, sr)
	reg.EmitIngestQueued(ctx, job)
	reg.EmitIngestFinished(ctx, job)
	reg.EmitShutdown(ctx)

	counts := []struct {
		hook string
		got  int
	}{
		{"beforeResolve", rec.beforeResolve},
		{"afterResolve", rec.afterResolve},
		{"sessionCreated", rec.sessionCreated},
		{"sessionExpired", rec.sessionExpired},
		{"quotaExhausted", rec.quotaExhausted},
		{"signupReceived", rec.signupReceived},
		{"signupApproved", rec.signupApproved},
		{"signupDenied", rec.signupDenied},
		{"ingestQueued", rec.ingestQueued},
		{"ingestFinished", rec.ingestFinished},
		{"shutdown", rec.shutdown},
	}
	for _, c := range counts {
		if c.got != 1 {
			t.Errorf("%s: expected 1 invocation, got %d", c.hook, c.got)
		}
	}

	if len(reg.Plugins()) != 2 {
		t.Fatalf("expected 2 registered plugins, got %d", len(reg.Plugins()))
	}
}

func TestRegistryHookErrorsDoNotPropagate(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(slog.Default())

	f := &failing{}
	rec := &recorder{}
	reg.Register(f)
	reg.Register(rec)

	// The failing plugin must not stop later plugins from running.
	reg.EmitSessionCreated(ctx, &session.DemoSession{SessionID: "s1"})

	if f.calls != 1 {
		t.Fatalf("expected failing hook to be called once, got %d", f.calls)
	}
	if rec.sessionCreated != 1 {
		t.Fatalf("expected recorder to still run, got %d", rec.sessionCreated)
	}
}
