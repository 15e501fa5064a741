package sqlite

import (
	"testing"
	"time"

	"github.com/xraph/doorman/session"
)

func TestSessionModelRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 30, 45, 123456000, time.UTC)
	in := &session.DemoSession{
		SessionID: "s1",
		HitCount:  2,
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
		LastHit:   now,
	}

	out, err := sessionFromModel(sessionToModel(in))
	if err != nil {
		t.Fatalf("sessionFromModel: %v", err)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) || !out.ExpiresAt.Equal(in.ExpiresAt) || !out.LastHit.Equal(in.LastHit) {
		t.Fatalf("timestamps changed in round trip: %+v vs %+v", out, in)
	}
	if out.HitCount != 2 {
		t.Fatalf("hit count changed: %d", out.HitCount)
	}
}

// Rows written by earlier tooling carry different fractional precision
// and offset notation; the read path must accept them all.
func TestSessionModelLegacyTimestamps(t *testing.T) {
	want := time.Date(2025, 6, 15, 12, 30, 45, 0, time.UTC)

	for _, stored := range []string{
		"2025-06-15T12:30:45",
		"2025-06-15T12:30:45Z",
		"2025-06-15T12:30:45+00:00",
		"2025-06-15 12:30:45.123",
	} {
		m := &sessionModel{
			SessionID: "legacy",
			HitCount:  1,
			CreatedAt: stored,
			ExpiresAt: stored,
			LastHit:   stored,
		}
		ds, err := sessionFromModel(m)
		if err != nil {
			t.Fatalf("sessionFromModel(%q): %v", stored, err)
		}
		if !ds.ExpiresAt.Truncate(time.Second).Equal(want) {
			t.Errorf("expires_at %q parsed to %v, want %v", stored, ds.ExpiresAt, want)
		}
	}
}

func TestSessionModelCorruptTimestamp(t *testing.T) {
	m := &sessionModel{SessionID: "bad", CreatedAt: "not-a-time", ExpiresAt: "x", LastHit: "y"}
	if _, err := sessionFromModel(m); err == nil {
		t.Fatal("corrupt timestamp must be a loud error, not a silent default")
	}
}
