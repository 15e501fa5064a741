package audit_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/xraph/doorman"
	"github.com/xraph/doorman/audit"
	idmemory "github.com/xraph/doorman/identity/memory"
	"github.com/xraph/doorman/store/memory"
)

func TestTrailRingBuffer(t *testing.T) {
	tr := audit.NewTrail(3)
	for _, role := range []string{"a", "b", "c", "d"} {
		tr.Record(&audit.Entry{Role: role})
	}

	if tr.Len() != 3 {
		t.Fatalf("len = %d, want 3", tr.Len())
	}
	recent := tr.Recent(10)
	if len(recent) != 3 {
		t.Fatalf("recent = %d entries, want 3", len(recent))
	}
	// Newest first, and the oldest entry was overwritten.
	if recent[0].Role != "d" || recent[1].Role != "c" || recent[2].Role != "b" {
		t.Errorf("recent order = %s %s %s", recent[0].Role, recent[1].Role, recent[2].Role)
	}
}

func TestPluginRecordsResolutions(t *testing.T) {
	p := audit.NewPlugin(audit.NewTrail(16))
	eng, err := doorman.NewEngine(
		doorman.WithStore(memory.New()),
		doorman.WithProvider(idmemory.New()),
		doorman.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		doorman.WithPlugin(p),
	)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	ctx := context.Background()
	req := &doorman.ResolveRequest{SessionID: "sess-audit"}
	for i := 0; i < 4; i++ {
		_, _ = eng.Resolve(ctx, req)
	}

	// 3 admitted hits plus 1 refusal.
	if p.Trail().Len() != 4 {
		t.Fatalf("trail len = %d, want 4", p.Trail().Len())
	}
	recent := p.Trail().Recent(1)
	if !recent[0].Refused {
		t.Error("newest entry should be the refused hit")
	}
	if recent[0].SessionID != "sess-audit" {
		t.Errorf("session id = %q", recent[0].SessionID)
	}
}
