package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"memorymatch/config"
)

// Preferences are the player's saved defaults.
type Preferences struct {
	Name       string `toml:"name"`
	Difficulty string `toml:"difficulty"`
	APIURL     string `toml:"api_url"`
	CachePath  string `toml:"cache_path"`
	Offline    bool   `toml:"offline"`
	NoColor    bool   `toml:"no_color"`
}

// xdgConfigHome returns XDG_CONFIG_HOME or the default path.
func xdgConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

func defaultPrefsPath() string {
	return filepath.Join(xdgConfigHome(), "memorymatch", "config.toml")
}

// loadPreferences reads path; a missing file yields zero preferences.
func loadPreferences(path string) (Preferences, error) {
	var p Preferences
	if _, err := toml.DecodeFile(path, &p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Preferences{}, nil
		}
		return Preferences{}, fmt.Errorf("error decoding preferences %s: %w", path, err)
	}
	return p, nil
}

func savePreferences(path string, p Preferences) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating preferences file: %w", err)
	}
	defer file.Close()
	if err := toml.NewEncoder(file).Encode(p); err != nil {
		return fmt.Errorf("error encoding preferences: %w", err)
	}
	return nil
}

// clientConfig layers defaults, preferences and environment, in that order.
func clientConfig(p Preferences) (config.ClientConfig, error) {
	cfg := config.DefaultConfig()
	if p.APIURL != "" {
		cfg.Client.APIURL = p.APIURL
	}
	if p.CachePath != "" {
		cfg.Client.CachePath = p.CachePath
	}
	if p.Name != "" {
		cfg.Client.PlayerName = p.Name
	}
	if p.Difficulty != "" {
		cfg.Client.Difficulty = p.Difficulty
	}
	if p.Offline {
		cfg.Client.APIURL = ""
	}
	if err := config.Overlay(cfg); err != nil {
		return config.ClientConfig{}, err
	}
	return cfg.Client, nil
}
