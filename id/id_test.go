package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/doorman/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"SignupID", id.NewSignupID, "sreq_"},
		{"JobID", id.NewJobID, "ingj_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixSignup)
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixSignup {
		t.Errorf("expected prefix %q, got %q", id.PrefixSignup, i.Prefix())
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"SignupID", id.NewSignupID, id.ParseSignupID},
		{"JobID", id.NewJobID, id.ParseJobID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := tt.newFn()
			parsed, err := tt.parseFn(orig.String())
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if parsed.String() != orig.String() {
				t.Errorf("round trip mismatch: %q != %q", parsed, orig)
			}
		})
	}
}

func TestParseWithPrefixMismatch(t *testing.T) {
	jobID := id.NewJobID()
	if _, err := id.ParseSignupID(jobID.String()); err == nil {
		t.Fatal("expected prefix mismatch error")
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := id.Parse(""); err == nil {
		t.Fatal("expected error for empty string")
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := id.Parse("!!not-a-typeid!!"); err == nil {
		t.Fatal("expected error for malformed input")
	}
}

func TestNilID(t *testing.T) {
	var n id.ID
	if !n.IsNil() {
		t.Fatal("zero value should be nil")
	}
	if n.String() != "" {
		t.Errorf("nil ID should stringify to empty, got %q", n.String())
	}
}

func TestTextMarshalRoundTrip(t *testing.T) {
	orig := id.NewSignupID()
	data, err := orig.MarshalText()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var parsed id.ID
	if err := parsed.UnmarshalText(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.String() != orig.String() {
		t.Errorf("round trip mismatch: %q != %q", parsed, orig)
	}
}

func TestScanValue(t *testing.T) {
	orig := id.NewJobID()
	v, err := orig.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var scanned id.ID
	if err := scanned.Scan(v); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if scanned.String() != orig.String() {
		t.Errorf("round trip mismatch: %q != %q", scanned, orig)
	}

	var nilScanned id.ID
	if err := nilScanned.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if !nilScanned.IsNil() {
		t.Fatal("scanning nil should produce the Nil ID")
	}
}
