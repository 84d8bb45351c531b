package main

import (
	"encoding/json"
	"testing"

	"velociplayer/internal/testsupport"
)

func TestLibraryImportListShowRemove(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"library", "import", env.srtPath, "--name", "Episode 1"}, env.configPath)
	if err != nil {
		t.Fatalf("library import: %v", err)
	}
	requireContains(t, out, "Imported Episode 1 as #1 (2 captions, ends at 6.500s)")

	out, _, err = runCLI(t, []string{"library", "import", env.srtPath}, env.configPath)
	if err != nil {
		t.Fatalf("library import duplicate: %v", err)
	}
	requireContains(t, out, "Already imported as #1 (Episode 1)")

	latin := testsupport.WriteFile(t, t.TempDir(), "latin.srt", []byte("1\n00:00:01,000 --> 00:00:02,000\ncaf\xe9\n"))
	if _, _, err := runCLI(t, []string{"library", "import", "--charset", "windows-1252", latin}, env.configPath); err != nil {
		t.Fatalf("library import latin: %v", err)
	}

	out, _, err = runCLI(t, []string{"library", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("library list: %v", err)
	}
	requireContains(t, out, "Episode 1")
	requireContains(t, out, "latin.srt")
	requireContains(t, out, "windows-1252")

	out, _, err = runCLI(t, []string{"library", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("library list --json: %v", err)
	}
	var subs []struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Charset string `json:"charset"`
	}
	if err := json.Unmarshal([]byte(out), &subs); err != nil {
		t.Fatalf("decode list %q: %v", out, err)
	}
	if len(subs) != 2 || subs[1].Charset != "windows-1252" {
		t.Fatalf("unexpected list %+v", subs)
	}

	out, _, err = runCLI(t, []string{"library", "show", "#2"}, env.configPath)
	if err != nil {
		t.Fatalf("library show: %v", err)
	}
	requireContains(t, out, "#2 latin.srt")
	requireContains(t, out, "café")

	if _, _, err := runCLI(t, []string{"library", "remove", "1"}, env.configPath); err != nil {
		t.Fatalf("library remove: %v", err)
	}
	if _, _, err := runCLI(t, []string{"library", "show", "1"}, env.configPath); err == nil {
		t.Fatal("expected show of removed subtitle to fail")
	}
	if _, _, err := runCLI(t, []string{"library", "remove", "1"}, env.configPath); err == nil {
		t.Fatal("expected second remove to fail")
	}
}

func TestLibraryRejectsBadInput(t *testing.T) {
	env := setupCLITestEnv(t)
	garbage := testsupport.WriteFile(t, t.TempDir(), "notes.srt", []byte("no captions"))

	for _, args := range [][]string{
		{"library", "import", garbage},
		{"library", "show", "abc"},
		{"library", "remove", "0"},
	} {
		if _, _, err := runCLI(t, args, env.configPath); err == nil {
			t.Fatalf("%v: expected error", args)
		}
	}

	out, _, err := runCLI(t, []string{"library", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("library list: %v", err)
	}
	requireContains(t, out, "Library is empty")
}
