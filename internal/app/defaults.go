package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Paths holds the default locations of the config file and data directories.
type Paths struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// DefaultPaths resolves the default paths, checking environment variables first.
// Environment variables:
//   - NETINV_CONFIG_PATH: config file location (default: ~/.config/netinv.toml)
//   - NETINV_HOME: base directory for netinv data (default: ~/.local/share/netinv)
func DefaultPaths() (Paths, error) {
	var homeDir string
	home := func() (string, error) {
		if homeDir != "" {
			return homeDir, nil
		}
		dir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		homeDir = dir
		return dir, nil
	}

	p := Paths{
		ConfigPath: os.Getenv("NETINV_CONFIG_PATH"),
		BaseDir:    os.Getenv("NETINV_HOME"),
	}
	if p.ConfigPath == "" {
		dir, err := home()
		if err != nil {
			return Paths{}, err
		}
		p.ConfigPath = filepath.Join(dir, ".config", "netinv.toml")
	}
	if p.BaseDir == "" {
		dir, err := home()
		if err != nil {
			return Paths{}, err
		}
		p.BaseDir = filepath.Join(dir, ".local", "share", "netinv")
	}
	p.LogDir = filepath.Join(p.BaseDir, "log")
	return p, nil
}

// LoadEnv reads KEY=value files into the process environment. Variables that
// are already set win, and missing files are skipped.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}
