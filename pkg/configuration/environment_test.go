package configuration

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnv_FallsBackToGoModRoot(t *testing.T) {
	tmp := t.TempDir()

	requireWriteFile(t, filepath.Join(tmp, "go.mod"), "module example.com/test\n\ngo 1.22\n")
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "AKDEMIA_TEST_ENV_LOAD=ok\n")

	sub := filepath.Join(tmp, "pkg", "excel")
	requireMkdirAll(t, sub)

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(sub); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	_ = os.Unsetenv("AKDEMIA_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("AKDEMIA_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded from repo root, got %q", got)
	}
}

func TestImportOptions_Validate(t *testing.T) {
	cases := []struct {
		name    string
		opts    ImportOptions
		wantErr bool
	}{
		{"defaults", ImportOptions{FuzzyThreshold: 0.85, SessionTTL: 1, MaxRows: 1}, false},
		{"threshold too high", ImportOptions{FuzzyThreshold: 1.2, SessionTTL: 1, MaxRows: 1}, true},
		{"negative threshold", ImportOptions{FuzzyThreshold: -0.1, SessionTTL: 1, MaxRows: 1}, true},
		{"zero ttl", ImportOptions{FuzzyThreshold: 0.85, SessionTTL: 0, MaxRows: 1}, true},
		{"zero max rows", ImportOptions{FuzzyThreshold: 0.85, SessionTTL: 1, MaxRows: 0}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func requireMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}
