package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// startPostgres provisions a throwaway Postgres with the Doorman schema
// applied and returns a connection to it.
func startPostgres(t *testing.T) *pgx.Conn {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("doorman"),
		tcpostgres.WithUsername("doorman"),
		tcpostgres.WithPassword("doorman"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("could not start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = ctr.Terminate(context.Background())
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close(context.Background())
	})

	for _, schema := range []string{sessionsSchema, signupsSchema} {
		if _, err := conn.Exec(ctx, schema); err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}

func TestConditionalIncrementStatement(t *testing.T) {
	conn := startPostgres(t)
	ctx := context.Background()

	now := time.Now().UTC()
	_, err := conn.Exec(ctx,
		`INSERT INTO doorman_sessions (session_id, hit_count, created_at, expires_at, last_hit)
		 VALUES ($1, $2, $3, $4, $5)`,
		"sess-1", 1, now, now.Add(24*time.Hour), now)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	// The same guarded UPDATE the store issues for atomic tracking.
	increment := `UPDATE doorman_sessions
		 SET hit_count = hit_count + 1, last_hit = $2
		 WHERE session_id = $1 AND expires_at >= $2 AND hit_count < $3`

	tag, err := conn.Exec(ctx, increment, "sess-1", now, 3)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if tag.RowsAffected() != 1 {
		t.Fatalf("expected 1 row affected, got %d", tag.RowsAffected())
	}

	// Second increment takes the session to the limit; the third is refused.
	if tag, _ = conn.Exec(ctx, increment, "sess-1", now, 3); tag.RowsAffected() != 1 {
		t.Fatal("third hit should be granted")
	}
	if tag, _ = conn.Exec(ctx, increment, "sess-1", now, 3); tag.RowsAffected() != 0 {
		t.Fatal("hit beyond the limit must not mutate the row")
	}

	var hits int
	if err := conn.QueryRow(ctx, `SELECT hit_count FROM doorman_sessions WHERE session_id = $1`, "sess-1").Scan(&hits); err != nil {
		t.Fatalf("select: %v", err)
	}
	if hits != 3 {
		t.Fatalf("persisted count must never exceed the limit, got %d", hits)
	}

	// An expired row is never incremented.
	_, err = conn.Exec(ctx,
		`INSERT INTO doorman_sessions (session_id, hit_count, created_at, expires_at, last_hit)
		 VALUES ($1, $2, $3, $4, $5)`,
		"stale", 1, now.Add(-25*time.Hour), now.Add(-time.Hour), now.Add(-25*time.Hour))
	if err != nil {
		t.Fatalf("insert stale: %v", err)
	}
	if tag, _ = conn.Exec(ctx, increment, "stale", now, 3); tag.RowsAffected() != 0 {
		t.Fatal("expired session must not be incremented")
	}
}

func TestSignupEmailUniqueViolation(t *testing.T) {
	conn := startPostgres(t)
	ctx := context.Background()

	insert := `INSERT INTO doorman_signups (id, email, created_at) VALUES ($1, $2, $3)`
	now := time.Now().UTC()

	if _, err := conn.Exec(ctx, insert, "sreq_1", "new@example.com", now); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	_, err := conn.Exec(ctx, insert, "sreq_2", "new@example.com", now)
	if err == nil {
		t.Fatal("expected unique violation on duplicate email")
	}
	if !isUniqueViolation(err) {
		t.Fatalf("expected code %s, got %v", pgUniqueViolation, err)
	}
}
