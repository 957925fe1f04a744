package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferencesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memorymatch", "config.toml")

	p, err := loadPreferences(path)
	require.NoError(t, err)
	assert.Equal(t, Preferences{}, p)

	want := Preferences{Name: "Ann", Difficulty: "hard", APIURL: "http://scores.local/api", NoColor: true}
	require.NoError(t, savePreferences(path, want))
	got, err := loadPreferences(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPreferencesCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = "), 0o600))
	_, err := loadPreferences(path)
	assert.Error(t, err)
}

func TestDefaultPrefsPathUsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "memorymatch", "config.toml"), defaultPrefsPath())
}

func TestClientConfigLayers(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MEMORYMATCH_API_URL", "")
	t.Setenv("MEMORYMATCH_DIFFICULTY", "")

	cfg, err := clientConfig(Preferences{Name: "Ann", Difficulty: "medium", APIURL: "http://prefs.local/api"})
	require.NoError(t, err)
	assert.Equal(t, "http://prefs.local/api", cfg.APIURL)
	assert.Equal(t, "medium", cfg.Difficulty)
	assert.Equal(t, "Ann", cfg.PlayerName)

	t.Setenv("MEMORYMATCH_API_URL", "http://env.local/api")
	cfg, err = clientConfig(Preferences{APIURL: "http://prefs.local/api"})
	require.NoError(t, err)
	assert.Equal(t, "http://env.local/api", cfg.APIURL)

	t.Setenv("MEMORYMATCH_API_URL", "")
	cfg, err = clientConfig(Preferences{Offline: true})
	require.NoError(t, err)
	assert.Empty(t, cfg.APIURL)

	_, err = clientConfig(Preferences{Difficulty: "extreme"})
	assert.Error(t, err)
}
