package library_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"velociplayer/internal/captions"
	"velociplayer/internal/library"
	"velociplayer/internal/logging"
	"velociplayer/internal/services"
	"velociplayer/internal/testsupport"
)

func TestImportStoresDecodedMetadata(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)
	ctx := context.Background()

	sub, created, err := store.Import(ctx, "episode.srt", []byte(testsupport.SampleSRT), "")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !created {
		t.Fatal("expected a new row")
	}
	if sub.ID == 0 || sub.Name != "episode.srt" || sub.Charset != "utf-8" {
		t.Fatalf("unexpected record %+v", sub)
	}
	if sub.CaptionCount != 2 || sub.EndSeconds != 6.5 {
		t.Fatalf("unexpected caption metadata %+v", sub)
	}
	if sub.Size != len(testsupport.SampleSRT) {
		t.Fatalf("size = %d", sub.Size)
	}
	if sub.Digest != library.Digest([]byte(testsupport.SampleSRT)) {
		t.Fatalf("digest mismatch")
	}
	if sub.ImportedAt.IsZero() {
		t.Fatal("expected import time")
	}
}

func TestImportDeduplicatesByDigest(t *testing.T) {
	store := testsupport.MustOpenLibrary(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first := testsupport.MustImport(t, store, "a.srt", testsupport.SampleSRT)
	second, created, err := store.Import(ctx, "b.srt", []byte(testsupport.SampleSRT), "")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if created || second.ID != first.ID || second.Name != "a.srt" {
		t.Fatalf("expected existing record, got created=%v %+v", created, second)
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 row, got %d", len(list))
	}
}

func TestImportDeduplicatesPerCharset(t *testing.T) {
	store := testsupport.MustOpenLibrary(t, testsupport.NewConfig(t))
	ctx := context.Background()

	payload := []byte("1\n00:00:01,000 --> 00:00:02,000\ncaf\xe8\n")
	western, created, err := store.Import(ctx, "western.srt", payload, "windows-1252")
	if err != nil || !created {
		t.Fatalf("Import windows-1252: created=%v err=%v", created, err)
	}

	// An alias of the same charset is the same import.
	alias, created, err := store.Import(ctx, "alias.srt", payload, "cp1252")
	if err != nil {
		t.Fatalf("Import cp1252: %v", err)
	}
	if created || alias.ID != western.ID {
		t.Fatalf("expected cp1252 to match #%d, got created=%v %+v", western.ID, created, alias)
	}

	central, created, err := store.Import(ctx, "central.srt", payload, "iso-8859-2")
	if err != nil {
		t.Fatalf("Import iso-8859-2: %v", err)
	}
	if !created || central.ID == western.ID || central.Charset != "iso-8859-2" {
		t.Fatalf("expected a separate record for iso-8859-2, got created=%v %+v", created, central)
	}

	for id, want := range map[int64]string{western.ID: "cafè", central.ID: "caf\u010d"} {
		track, err := store.Track(ctx, id)
		if err != nil {
			t.Fatalf("Track(%d): %v", id, err)
		}
		if got := track.At(1).TextOrEmpty(); got != want {
			t.Fatalf("#%d decoded %q, want %q", id, got, want)
		}
	}
}

func TestImportRejectsUndecodablePayloads(t *testing.T) {
	store := testsupport.MustOpenLibrary(t, testsupport.NewConfig(t))
	ctx := context.Background()

	tests := []struct {
		name    string
		data    []byte
		charset string
		cause   error
	}{
		{"no blocks", []byte("just some text"), "", captions.ErrNoEntriesParsed},
		{"bad utf8", []byte("1\n00:00:01,000 --> 00:00:02,000\n\xff\xfe\xfd\n"), "utf-8", captions.ErrInvalidEncoding},
		{"unknown charset", []byte(testsupport.SampleSRT), "klingon-8", captions.ErrInvalidEncoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := store.Import(ctx, "bad.srt", tt.data, tt.charset)
			if !errors.Is(err, services.ErrValidation) || !errors.Is(err, tt.cause) {
				t.Fatalf("expected validation error wrapping %v, got %v", tt.cause, err)
			}
		})
	}
	if _, _, err := store.Import(ctx, "  ", []byte(testsupport.SampleSRT), ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("rejected payloads were stored: %+v", list)
	}
}

func TestImportLegacyCharsetRoundTrip(t *testing.T) {
	store := testsupport.MustOpenLibrary(t, testsupport.NewConfig(t))
	ctx := context.Background()

	payload := []byte("1\n00:00:01,000 --> 00:00:02,000\ncaf\xe9\n")
	sub, _, err := store.Import(ctx, "latin.srt", payload, "Windows-1252")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	data, charset, err := store.Payload(ctx, sub.ID)
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	if string(data) != string(payload) || charset != "windows-1252" {
		t.Fatalf("payload round trip mismatch: %q %q", data, charset)
	}
	track, err := store.Track(ctx, sub.ID)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if got := track.At(1).TextOrEmpty(); got != "café" {
		t.Fatalf("decoded text %q", got)
	}
}

func TestGetAndRemoveMissing(t *testing.T) {
	store := testsupport.MustOpenLibrary(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := store.Get(ctx, 99); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("Get missing: %v", err)
	}
	if _, _, err := store.Payload(ctx, 99); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("Payload missing: %v", err)
	}
	if err := store.Remove(ctx, 99); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("Remove missing: %v", err)
	}

	sub := testsupport.MustImport(t, store, "x.srt", testsupport.SampleSRT)
	if err := store.Remove(ctx, sub.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := store.Get(ctx, sub.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("Get after remove: %v", err)
	}
}

func TestListOrdersByID(t *testing.T) {
	store := testsupport.MustOpenLibrary(t, testsupport.NewConfig(t))
	testsupport.MustImport(t, store, "one.srt", testsupport.SampleSRT)
	testsupport.MustImport(t, store, "two.srt", "1\n00:00:00,000 --> 00:00:01,000\nOther\n")

	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "one.srt" || list[1].Name != "two.srt" {
		t.Fatalf("unexpected list %+v", list)
	}
	if list[1].CaptionCount != 1 || list[1].EndSeconds != 1 {
		t.Fatalf("unexpected metadata %+v", list[1])
	}
}

func TestReopenKeepsRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := library.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	testsupport.MustImport(t, store, "keep.srt", testsupport.SampleSRT)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenLibrary(t, cfg)
	list, err := reopened.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Name != "keep.srt" {
		t.Fatalf("unexpected rows after reopen %+v", list)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)
	store.Close()

	db, err := sql.Open("sqlite", cfg.Paths.LibraryPath)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("update version: %v", err)
	}
	db.Close()

	if _, err := library.Open(cfg, logging.NewNop()); !errors.Is(err, library.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
