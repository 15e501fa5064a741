package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/doorman/identity"
)

func TestValidateToken(t *testing.T) {
	ctx := context.Background()
	p := New()
	token := p.AddAccount(&identity.Account{Email: "a@example.com", Role: "trusted"})

	accountID, err := p.ValidateToken(ctx, token)
	if err != nil {
		t.Fatal(err)
	}
	if accountID == "" {
		t.Fatal("expected account id")
	}

	_, err = p.ValidateToken(ctx, "garbage")
	if !errors.Is(err, identity.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRevokeSessions(t *testing.T) {
	ctx := context.Background()
	p := New()
	token := p.AddAccount(&identity.Account{Email: "a@example.com"})

	accountID, err := p.ValidateToken(ctx, token)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.RevokeSessions(ctx, accountID); err != nil {
		t.Fatal(err)
	}
	if _, err := p.ValidateToken(ctx, token); !errors.Is(err, identity.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after revocation, got %v", err)
	}
}

func TestCreateAndDisableAccount(t *testing.T) {
	ctx := context.Background()
	p := New()

	a, err := p.CreateAccount(ctx, &identity.NewAccount{Email: "new@example.com", Role: "trusted"})
	if err != nil {
		t.Fatal(err)
	}

	role, err := p.GetRole(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if role != "trusted" {
		t.Fatalf("expected trusted, got %q", role)
	}

	revoked, err := p.IsRevoked(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if revoked {
		t.Fatal("fresh account should not be revoked")
	}

	if err := p.DisableAccount(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	revoked, err = p.IsRevoked(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !revoked {
		t.Fatal("expected revoked after disable")
	}
}

func TestUnknownAccount(t *testing.T) {
	ctx := context.Background()
	p := New()

	if _, err := p.GetRole(ctx, "nope"); !errors.Is(err, identity.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := p.IsRevoked(ctx, "nope"); !errors.Is(err, identity.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
