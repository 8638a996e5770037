package statestore_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"tonehub/internal/statestore"
)

func TestStoreRoundTripAndReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	store, err := statestore.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "flag", "false"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, "flag", "true"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := statestore.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })

	value, ok, err := reopened.Get(ctx, "flag")
	if err != nil || !ok || value != "true" {
		t.Fatalf("expected persisted value, got %q ok=%v err=%v", value, ok, err)
	}

	if err := reopened.Delete(ctx, "flag"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := reopened.Delete(ctx, "flag"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
	if _, ok, _ := reopened.Get(ctx, "flag"); ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestStoreRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := statestore.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := statestore.Open(path); !errors.Is(err, statestore.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestStoreRejectsEmptyPath(t *testing.T) {
	if _, err := statestore.Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	var mem statestore.Memory
	if err := mem.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok, _ := mem.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("unexpected value %q ok=%v", v, ok)
	}

	boom := errors.New("disk full")
	mem.FailWrites = boom
	if err := mem.Set(ctx, "k", "w"); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if v, _, _ := mem.Get(ctx, "k"); v != "v" {
		t.Fatalf("failed write must not change value, got %q", v)
	}
}
