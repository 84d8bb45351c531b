package testsupport

import (
	"context"
	"testing"

	"velociplayer/internal/config"
	"velociplayer/internal/library"
	"velociplayer/internal/logging"
)

// MustOpenLibrary opens a library.Store for tests and registers cleanup.
func MustOpenLibrary(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustImport imports a UTF-8 payload and returns the stored record.
func MustImport(t testing.TB, store *library.Store, name, payload string) *library.Subtitle {
	t.Helper()

	sub, _, err := store.Import(context.Background(), name, []byte(payload), "")
	if err != nil {
		t.Fatalf("store.Import: %v", err)
	}
	return sub
}
