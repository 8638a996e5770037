package testsupport

import (
	"testing"

	"tonehub/internal/config"
	"tonehub/internal/statestore"
)

// MustOpenStore opens the config's state store and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *statestore.Store {
	t.Helper()

	store, err := statestore.Open(cfg.StatePath())
	if err != nil {
		t.Fatalf("statestore.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
