package entitlement_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"tonehub/internal/entitlement"
	"tonehub/internal/logging"
	"tonehub/internal/services"
	"tonehub/internal/statestore"
)

const storageKey = "tonehub.entitlement.authorized"

func newGate(t *testing.T, store statestore.KV) *entitlement.Gate {
	t.Helper()
	gate, err := entitlement.New(context.Background(), store,
		entitlement.NewSharedSecretVerifier("tone-pro-2026"), logging.NewNop(),
		entitlement.Options{StorageKey: storageKey})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return gate
}

func TestVerifyAcceptsAnyCaseAndWhitespace(t *testing.T) {
	for _, input := range []string{"tone-pro-2026", "  TONE-PRO-2026\n", "Tone-Pro-2026"} {
		store := statestore.NewMemory()
		gate := newGate(t, store)
		if err := gate.Verify(context.Background(), input); err != nil {
			t.Fatalf("Verify(%q): %v", input, err)
		}
		if gate.State() != entitlement.Unlocked {
			t.Fatalf("expected unlocked after %q", input)
		}
		if v, ok, _ := store.Get(context.Background(), storageKey); !ok || v != "true" {
			t.Fatalf("expected persisted flag, got %q ok=%v", v, ok)
		}
	}
}

func TestVerifyRejectsWrongKeyAndAllowsRetry(t *testing.T) {
	store := statestore.NewMemory()
	gate := newGate(t, store)

	for i := 0; i < 5; i++ {
		err := gate.Verify(context.Background(), "wrong")
		var verr *entitlement.VerifyError
		if !errors.As(err, &verr) || !errors.Is(err, entitlement.ErrInvalidKey) {
			t.Fatalf("expected invalid key error, got %v", err)
		}
		if verr.Error() == "" {
			t.Fatal("expected user-visible message")
		}
	}
	if gate.Authorized() {
		t.Fatal("wrong key must leave the gate locked")
	}
	if _, ok, _ := store.Get(context.Background(), storageKey); ok {
		t.Fatal("wrong key must not persist anything")
	}
	if err := gate.Verify(context.Background(), "tone-pro-2026"); err != nil {
		t.Fatalf("retry after failures: %v", err)
	}
}

func TestUnlockSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := statestore.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	gate := newGate(t, store)
	if gate.Authorized() {
		t.Fatal("fresh state must be locked")
	}
	if err := gate.Verify(context.Background(), "TONE-PRO-2026"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	_ = store.Close()

	reopened, err := statestore.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	if !newGate(t, reopened).Authorized() {
		t.Fatal("expected unlock to survive restart")
	}
}

func TestConfirmPaymentUnlocksUnconditionally(t *testing.T) {
	store := statestore.NewMemory()
	gate := newGate(t, store)

	var mu sync.Mutex
	var seen []entitlement.State
	gate.Subscribe(func(s entitlement.State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	if err := gate.ConfirmPayment(context.Background(), entitlement.Payment{PayerName: "Ada"}); err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if !gate.Authorized() {
		t.Fatal("expected payment to unlock")
	}
	if err := gate.ConfirmPayment(context.Background(), entitlement.Payment{PayerName: "Ada"}); err != nil {
		t.Fatalf("second ConfirmPayment: %v", err)
	}
	if err := gate.Verify(context.Background(), "wrong"); err != nil {
		t.Fatalf("Verify after unlock should be a no-op, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0] != entitlement.Unlocked {
		t.Fatalf("expected exactly one transition notification, got %v", seen)
	}
}

func TestPersistFailureStillUnlocksSession(t *testing.T) {
	store := statestore.NewMemory()
	store.FailWrites = errors.New("read-only filesystem")
	gate := newGate(t, store)

	err := gate.Verify(context.Background(), "tone-pro-2026")
	if err == nil || !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient persistence error, got %v", err)
	}
	if !gate.Authorized() {
		t.Fatal("expected in-memory unlock despite persistence failure")
	}
}

func TestVerifierErrorKeepsGateLocked(t *testing.T) {
	boom := errors.New("verification service down")
	gate, err := entitlement.New(context.Background(), statestore.NewMemory(),
		entitlement.VerifierFunc(func(context.Context, string) (bool, error) { return false, boom }),
		nil, entitlement.Options{StorageKey: storageKey})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := gate.Verify(context.Background(), "anything"); !errors.Is(err, boom) {
		t.Fatalf("expected verifier error, got %v", err)
	}
	if gate.Authorized() {
		t.Fatal("expected locked gate")
	}
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	verifier := entitlement.NewSharedSecretVerifier("k")
	if _, err := entitlement.New(context.Background(), nil, verifier, nil, entitlement.Options{StorageKey: storageKey}); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := entitlement.New(context.Background(), statestore.NewMemory(), verifier, nil, entitlement.Options{}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSharedSecretVerifierRejectsEmpty(t *testing.T) {
	v := entitlement.NewSharedSecretVerifier("tone-pro-2026")
	if ok, _ := v.Verify(context.Background(), "   "); ok {
		t.Fatal("blank input must not verify")
	}
	if ok, _ := entitlement.NewSharedSecretVerifier("").Verify(context.Background(), ""); ok {
		t.Fatal("empty secret must never verify")
	}
}
