package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestPathFromEnvironment(t *testing.T) {
	t.Setenv(EnvPath, "/etc/chester.json")
	if got := Path(); got != "/etc/chester.json" {
		t.Errorf("Path() = %q", got)
	}
}

func TestPathFromConfigDir(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("uses XDG_CONFIG_HOME")
	}
	base := t.TempDir()
	t.Setenv(EnvPath, "")
	t.Setenv("XDG_CONFIG_HOME", base)

	if got := Path(); got != "" {
		t.Errorf("Path() = %q before the file exists, want \"\"", got)
	}

	dir := filepath.Join(base, "chester")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "config.json")
	if err := os.WriteFile(want, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Path(); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}
