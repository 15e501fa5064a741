package doorman_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/doorman"
	"github.com/xraph/doorman/identity"
	idmemory "github.com/xraph/doorman/identity/memory"
	"github.com/xraph/doorman/session"
	"github.com/xraph/doorman/store/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(t *testing.T, opts ...doorman.Option) (*doorman.Engine, *memory.Store, *idmemory.Provider) {
	t.Helper()
	st := memory.New()
	prov := idmemory.New()
	base := []doorman.Option{
		doorman.WithStore(st),
		doorman.WithProvider(prov),
		doorman.WithLogger(discardLogger()),
	}
	eng, err := doorman.NewEngine(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng, st, prov
}

// ──────────────────────────────────────────────────
// Credential path
// ──────────────────────────────────────────────────

func TestResolveStoredRole(t *testing.T) {
	eng, _, prov := newEngine(t)
	tok := prov.AddAccount(&identity.Account{Email: "root@example.com", Role: "admin"})

	res, err := eng.Resolve(context.Background(), &doorman.ResolveRequest{Credential: tok})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Role != doorman.RoleAdmin {
		t.Errorf("role = %q, want admin", res.Role)
	}
	if res.Source != doorman.SourceProvider {
		t.Errorf("source = %q, want provider", res.Source)
	}
	if res.AccountID == "" {
		t.Error("account id not set")
	}
	if res.HitsUsed != 0 || res.HitsLimit != 0 {
		t.Errorf("quota fields leaked into provider result: %d/%d", res.HitsUsed, res.HitsLimit)
	}
}

func TestResolveDefaultsToTrusted(t *testing.T) {
	eng, _, prov := newEngine(t)
	tok := prov.AddAccount(&identity.Account{Email: "new@example.com"}) // no role record

	res, err := eng.Resolve(context.Background(), &doorman.ResolveRequest{Credential: tok})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Role != doorman.RoleTrusted {
		t.Errorf("role = %q, want trusted", res.Role)
	}
}

func TestResolveRoleLookupFailureDefaultsToTrusted(t *testing.T) {
	prov := &faultProvider{
		validate: func(string) (string, error) { return "acct-1", nil },
		role:     func(string) (string, error) { return "", errors.New("role service down") },
	}
	eng, err := doorman.NewEngine(
		doorman.WithStore(memory.New()),
		doorman.WithProvider(prov),
		doorman.WithLogger(discardLogger()),
	)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	res, err := eng.Resolve(context.Background(), &doorman.ResolveRequest{Credential: "tok"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Role != doorman.RoleTrusted {
		t.Errorf("role = %q, want trusted when the role lookup fails", res.Role)
	}
}

// An unusable credential demotes the caller to the demo path instead of
// producing an authentication error.
func TestResolveBadCredentialFallsThroughToDemo(t *testing.T) {
	eng, _, _ := newEngine(t)

	res, err := eng.Resolve(context.Background(), &doorman.ResolveRequest{
		Credential: "tok-forged",
		SessionID:  "sess-1",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Role != doorman.RoleDemo || res.Source != doorman.SourceDemo {
		t.Errorf("got %s/%s, want demo/demo", res.Role, res.Source)
	}
	if res.HitsUsed != 1 {
		t.Errorf("hits used = %d, want 1", res.HitsUsed)
	}
}

// A bad credential with no session id falls all the way through to the
// missing-session rejection.
func TestResolveBadCredentialNoSession(t *testing.T) {
	eng, _, _ := newEngine(t)

	_, err := eng.Resolve(context.Background(), &doorman.ResolveRequest{Credential: "tok-forged"})
	if !errors.Is(err, doorman.ErrMissingSession) {
		t.Fatalf("err = %v, want ErrMissingSession", err)
	}
}

func TestResolveRevokedAccount(t *testing.T) {
	eng, _, prov := newEngine(t)
	tok := prov.AddAccount(&identity.Account{ID: "acct-rv", Email: "gone@example.com", Role: "admin"})
	prov.SetRevoked("acct-rv", true)

	_, err := eng.Resolve(context.Background(), &doorman.ResolveRequest{Credential: tok})
	if !errors.Is(err, doorman.ErrAccountRevoked) {
		t.Fatalf("err = %v, want ErrAccountRevoked", err)
	}
	// Presenting a still-valid token for a revoked account must kill the
	// provider-side sessions too.
	if prov.Tokens() != 0 {
		t.Errorf("%d live tokens after revoked resolve, want 0", prov.Tokens())
	}
}

func TestResolveRevocationCheckUnavailable(t *testing.T) {
	prov := &faultProvider{
		validate: func(string) (string, error) { return "acct-1", nil },
		role:     func(string) (string, error) { return "admin", nil },
		revoked:  func(string) (bool, error) { return false, errors.New("provider timeout") },
	}
	eng, err := doorman.NewEngine(
		doorman.WithStore(memory.New()),
		doorman.WithProvider(prov),
		doorman.WithLogger(discardLogger()),
	)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	_, err = eng.Resolve(context.Background(), &doorman.ResolveRequest{Credential: "tok"})
	if !errors.Is(err, doorman.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}

// ──────────────────────────────────────────────────
// Demo quota path
// ──────────────────────────────────────────────────

func TestDemoRequiresSession(t *testing.T) {
	eng, _, _ := newEngine(t)

	_, err := eng.Resolve(context.Background(), &doorman.ResolveRequest{})
	if !errors.Is(err, doorman.ErrMissingSession) {
		t.Fatalf("err = %v, want ErrMissingSession", err)
	}
}

func TestDemoQuotaLifecycle(t *testing.T) {
	eng, st, _ := newEngine(t)
	ctx := context.Background()
	req := &doorman.ResolveRequest{SessionID: "sess-q"}

	for want := 1; want <= 3; want++ {
		res, err := eng.Resolve(ctx, req)
		if err != nil {
			t.Fatalf("hit %d: %v", want, err)
		}
		if res.HitsUsed != want || res.HitsLimit != 3 {
			t.Fatalf("hit %d: got %d/%d", want, res.HitsUsed, res.HitsLimit)
		}
	}

	_, err := eng.Resolve(ctx, req)
	if !errors.Is(err, doorman.ErrDemoLimitReached) {
		t.Fatalf("4th hit: err = %v, want ErrDemoLimitReached", err)
	}

	// The refusal must not bump the counter.
	ds, err := st.GetSession(ctx, "sess-q")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if ds.HitCount != 3 {
		t.Errorf("stored hit count = %d, want 3 after refused hit", ds.HitCount)
	}
}

func TestDemoExpiredWindowRecreated(t *testing.T) {
	eng, st, _ := newEngine(t)
	ctx := context.Background()

	past := time.Now().UTC().Add(-25 * time.Hour)
	if err := st.InsertSession(ctx, &session.DemoSession{
		SessionID: "sess-old",
		HitCount:  3,
		CreatedAt: past,
		ExpiresAt: past.Add(24 * time.Hour),
		LastHit:   past,
	}); err != nil {
		t.Fatalf("InsertSession: %v", err)
	}

	res, err := eng.Resolve(ctx, &doorman.ResolveRequest{SessionID: "sess-old"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.HitsUsed != 1 {
		t.Errorf("hits used = %d, want 1 after window rollover", res.HitsUsed)
	}

	ds, err := st.GetSession(ctx, "sess-old")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if ds.HitCount != 1 || ds.ExpiresAt.Before(time.Now().UTC()) {
		t.Errorf("window not recreated: count=%d expires=%v", ds.HitCount, ds.ExpiresAt)
	}
}

func TestDemoWriteErrorsSurface(t *testing.T) {
	ctx := context.Background()

	t.Run("create", func(t *testing.T) {
		st := &faultStore{Store: memory.New(), failInsert: true}
		eng := mustEngine(t, doorman.WithStore(st), doorman.WithProvider(idmemory.New()), doorman.WithLogger(discardLogger()))
		_, err := eng.Resolve(ctx, &doorman.ResolveRequest{SessionID: "sess-w"})
		if !errors.Is(err, doorman.ErrSessionWrite) {
			t.Fatalf("err = %v, want ErrSessionWrite", err)
		}
	})

	t.Run("increment", func(t *testing.T) {
		st := &faultStore{Store: memory.New(), failUpdate: true}
		now := time.Now().UTC()
		if err := st.Store.InsertSession(ctx, &session.DemoSession{
			SessionID: "sess-w",
			HitCount:  1,
			CreatedAt: now,
			ExpiresAt: now.Add(24 * time.Hour),
			LastHit:   now,
		}); err != nil {
			t.Fatalf("InsertSession: %v", err)
		}
		eng := mustEngine(t, doorman.WithStore(st), doorman.WithProvider(idmemory.New()), doorman.WithLogger(discardLogger()))
		_, err := eng.Resolve(ctx, &doorman.ResolveRequest{SessionID: "sess-w"})
		if !errors.Is(err, doorman.ErrSessionWrite) {
			t.Fatalf("err = %v, want ErrSessionWrite", err)
		}
	})
}

// With atomic tracking on, the under-limit increment goes through the
// store's conditional update but the observable quota behavior is the same.
func TestDemoAtomicTracking(t *testing.T) {
	eng, st, _ := newEngine(t, doorman.WithConfig(doorman.Config{
		DemoHitLimit:   2,
		DemoWindow:     time.Hour,
		AtomicTracking: true,
	}))
	ctx := context.Background()
	req := &doorman.ResolveRequest{SessionID: "sess-a"}

	for want := 1; want <= 2; want++ {
		res, err := eng.Resolve(ctx, req)
		if err != nil {
			t.Fatalf("hit %d: %v", want, err)
		}
		if res.HitsUsed != want || res.HitsLimit != 2 {
			t.Fatalf("hit %d: got %d/%d", want, res.HitsUsed, res.HitsLimit)
		}
	}

	_, err := eng.Resolve(ctx, req)
	if !errors.Is(err, doorman.ErrDemoLimitReached) {
		t.Fatalf("err = %v, want ErrDemoLimitReached", err)
	}

	ds, err := st.GetSession(ctx, "sess-a")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if ds.HitCount != 2 {
		t.Errorf("stored hit count = %d, want 2", ds.HitCount)
	}
}

// ──────────────────────────────────────────────────
// Enforce
// ──────────────────────────────────────────────────

func TestEnforce(t *testing.T) {
	eng, _, prov := newEngine(t)
	ctx := context.Background()
	admin := prov.AddAccount(&identity.Account{Email: "a@example.com", Role: "admin"})
	trusted := prov.AddAccount(&identity.Account{Email: "t@example.com"})

	if _, err := eng.Enforce(ctx, &doorman.ResolveRequest{Credential: admin}, doorman.RoleAdmin); err != nil {
		t.Fatalf("admin enforce: %v", err)
	}
	_, err := eng.Enforce(ctx, &doorman.ResolveRequest{Credential: trusted}, doorman.RoleAdmin)
	if !errors.Is(err, doorman.ErrRoleDenied) {
		t.Fatalf("trusted against admin-only: err = %v, want ErrRoleDenied", err)
	}
	if _, err := eng.Enforce(ctx, &doorman.ResolveRequest{Credential: trusted}, doorman.RoleAdmin, doorman.RoleTrusted); err != nil {
		t.Fatalf("trusted enforce: %v", err)
	}
	if _, err := eng.Enforce(ctx, &doorman.ResolveRequest{SessionID: "sess-e"}); err != nil {
		t.Fatalf("enforce without role list: %v", err)
	}
}

// ──────────────────────────────────────────────────
// Plugin emissions
// ──────────────────────────────────────────────────

func TestPluginEmissions(t *testing.T) {
	rec := &recorderPlugin{}
	eng, st, _ := newEngine(t, doorman.WithPlugin(rec))
	ctx := context.Background()

	if _, err := eng.Resolve(ctx, &doorman.ResolveRequest{SessionID: "sess-p"}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rec.before != 1 || rec.after != 1 || rec.created != 1 {
		t.Errorf("fresh session hooks: before=%d after=%d created=%d", rec.before, rec.after, rec.created)
	}

	for i := 0; i < 3; i++ {
		_, _ = eng.Resolve(ctx, &doorman.ResolveRequest{SessionID: "sess-p"})
	}
	if rec.exhausted != 1 {
		t.Errorf("exhausted = %d, want 1", rec.exhausted)
	}

	past := time.Now().UTC().Add(-48 * time.Hour)
	if err := st.InsertSession(ctx, &session.DemoSession{
		SessionID: "sess-x",
		HitCount:  1,
		CreatedAt: past,
		ExpiresAt: past.Add(24 * time.Hour),
		LastHit:   past,
	}); err != nil {
		t.Fatalf("InsertSession: %v", err)
	}
	if _, err := eng.Resolve(ctx, &doorman.ResolveRequest{SessionID: "sess-x"}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rec.expired != 1 {
		t.Errorf("expired = %d, want 1", rec.expired)
	}

	if err := eng.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if rec.shutdown != 1 {
		t.Errorf("shutdown = %d, want 1", rec.shutdown)
	}
}

// ──────────────────────────────────────────────────
// Test doubles
// ──────────────────────────────────────────────────

func mustEngine(t *testing.T, opts ...doorman.Option) *doorman.Engine {
	t.Helper()
	eng, err := doorman.NewEngine(opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng
}

// faultProvider lets individual provider calls fail on demand.
type faultProvider struct {
	validate func(token string) (string, error)
	role     func(accountID string) (string, error)
	revoked  func(accountID string) (bool, error)
}

var _ identity.Provider = (*faultProvider)(nil)

func (p *faultProvider) ValidateToken(_ context.Context, token string) (string, error) {
	if p.validate != nil {
		return p.validate(token)
	}
	return "", identity.ErrInvalidToken
}

func (p *faultProvider) GetRole(_ context.Context, accountID string) (string, error) {
	if p.role != nil {
		return p.role(accountID)
	}
	return "", nil
}

func (p *faultProvider) IsRevoked(_ context.Context, accountID string) (bool, error) {
	if p.revoked != nil {
		return p.revoked(accountID)
	}
	return false, nil
}

func (p *faultProvider) RevokeSessions(context.Context, string) error { return nil }

func (p *faultProvider) CreateAccount(context.Context, *identity.NewAccount) (*identity.Account, error) {
	return nil, errors.New("not implemented")
}

func (p *faultProvider) DisableAccount(context.Context, string) error { return nil }

// faultStore wraps the memory store and fails selected session writes.
type faultStore struct {
	*memory.Store
	failInsert bool
	failUpdate bool
}

func (s *faultStore) InsertSession(ctx context.Context, ds *session.DemoSession) error {
	if s.failInsert {
		return fmt.Errorf("disk full")
	}
	return s.Store.InsertSession(ctx, ds)
}

func (s *faultStore) UpdateSession(ctx context.Context, ds *session.DemoSession) error {
	if s.failUpdate {
		return fmt.Errorf("disk full")
	}
	return s.Store.UpdateSession(ctx, ds)
}

// recorderPlugin counts hook invocations.
type recorderPlugin struct {
	before, after, created, expired, exhausted, shutdown int
}

func (r *recorderPlugin) Name() string { return "recorder" }

func (r *recorderPlugin) OnBeforeResolve(context.Context, any) error {
	r.before++
	return nil
}

func (r *recorderPlugin) OnAfterResolve(context.Context, any, any) error {
	r.after++
	return nil
}

func (r *recorderPlugin) OnSessionCreated(context.Context, *session.DemoSession) error {
	r.created++
	return nil
}

func (r *recorderPlugin) OnSessionExpired(context.Context, string) error {
	r.expired++
	return nil
}

func (r *recorderPlugin) OnQuotaExhausted(context.Context, *session.DemoSession) error {
	r.exhausted++
	return nil
}

func (r *recorderPlugin) OnShutdown(context.Context) error {
	r.shutdown++
	return nil
}
