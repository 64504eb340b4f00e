package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestResolveWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), `
[limits]
max_line = 100
max_jobs = 3

[lock]
path = "/tmp/annogen.lock"

[cache]
enabled = false
`)
	nested := filepath.Join(root, "src", "drivers")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg, err := Resolve("", nested)
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Limits.MaxLine = 100
	want.Limits.MaxJobs = 3
	want.Lock.Path = "/tmp/annogen.lock"
	want.Cache.Enabled = false
	want.Path = filepath.Join(root, FileName)
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.Lock.Backoff() != 50*time.Millisecond {
		t.Errorf("Backoff = %v", cfg.Lock.Backoff())
	}
}

func TestResolveWithoutFile(t *testing.T) {
	cfg, err := Resolve("", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[limits\n", "failed to parse TOML"},
		{"unknown key", "[limits]\nmax_lines = 3\n", "unknown keys: limits.max_lines"},
		{"zero line limit", "[limits]\nmax_line = 0\n", "max_line must be positive"},
		{"negative jobs", "[limits]\nmax_jobs = -1\n", "max_jobs must not be negative"},
		{"empty format", "[output]\ntimestamp_format = \" \"\n", "timestamp_format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			writeFile(t, path, tt.content)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}
