package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPaths(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("NETINV_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("NETINV_HOME", "/custom/netinv")

		p, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths() error = %v", err)
		}
		want := Paths{ConfigPath: "/custom/config.toml", BaseDir: "/custom/netinv", LogDir: "/custom/netinv/log"}
		if p != want {
			t.Errorf("DefaultPaths() = %+v, want %+v", p, want)
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("NETINV_CONFIG_PATH", "")
		t.Setenv("NETINV_HOME", "")

		p, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()
		wantBase := filepath.Join(homeDir, ".local", "share", "netinv")
		want := Paths{
			ConfigPath: filepath.Join(homeDir, ".config", "netinv.toml"),
			BaseDir:    wantBase,
			LogDir:     filepath.Join(wantBase, "log"),
		}
		if p != want {
			t.Errorf("DefaultPaths() = %+v, want %+v", p, want)
		}
	})
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "NETINV_TEST_BUCKET=inventory\nNETINV_TEST_REGION=eu-west-3\n"
	if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NETINV_TEST_BUCKET", "already-set")
	t.Setenv("NETINV_TEST_REGION", "")
	os.Unsetenv("NETINV_TEST_REGION")

	if err := LoadEnv(filepath.Join(dir, "missing.env"), envFile); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv("NETINV_TEST_BUCKET"); got != "already-set" {
		t.Errorf("NETINV_TEST_BUCKET = %q, want the existing value", got)
	}
	if got := os.Getenv("NETINV_TEST_REGION"); got != "eu-west-3" {
		t.Errorf("NETINV_TEST_REGION = %q, want eu-west-3", got)
	}
}
