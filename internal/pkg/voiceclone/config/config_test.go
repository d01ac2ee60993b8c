package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	return LoadAndParse(args)
}

func TestDefaults(t *testing.T) {
	cfg, err := load(t, "hello world")
	require.NoError(t, err)

	assert.Equal(t, "hello world", cfg.Text)
	assert.Equal(t, "my_voice", cfg.Voice)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, float32(1.0), cfg.Speed)
	assert.Equal(t, "xtts", cfg.Backend)
	assert.Equal(t, "http://127.0.0.1:8020", cfg.ServerURL)
	assert.Equal(t, "voices", cfg.VoicesDir)
	assert.Equal(t, "outputs", cfg.OutputDir)
	assert.Equal(t, filepath.Join("data", "history.db"), cfg.HistoryDB)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 7860, cfg.Port)
	assert.False(t, cfg.HasMode())
}

func TestFlagsOverrideDefaults(t *testing.T) {
	cfg, err := load(t,
		"-t", "hola",
		"-v", "alice",
		"-l", "es",
		"-s", "1.5",
		"--server-url", "http://tts.local:8020",
		"--api-key", "secret",
		"--play",
	)
	require.NoError(t, err)

	assert.Equal(t, "hola", cfg.Text)
	assert.Equal(t, "alice", cfg.Voice)
	assert.Equal(t, "es", cfg.Language)
	assert.Equal(t, float32(1.5), cfg.Speed)
	assert.Equal(t, "http://tts.local:8020", cfg.ServerURL)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.True(t, cfg.Play)
}

func TestTextFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speech.txt")
	require.NoError(t, os.WriteFile(path, []byte("  from a file \n"), 0o644))

	cfg, err := load(t, "-f", path)
	require.NoError(t, err)
	assert.Equal(t, "from a file", cfg.Text)
}

func TestPositionalTextJoined(t *testing.T) {
	cfg, err := load(t, "hello", "there")
	require.NoError(t, err)
	assert.Equal(t, "hello there", cfg.Text)
}

func TestTextRequiredWithoutMode(t *testing.T) {
	_, err := load(t)
	assert.ErrorContains(t, err, "text is required")
}

func TestModeWithoutText(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"list voices", []string{"--list-voices"}},
		{"interactive", []string{"-i"}},
		{"serve", []string{"--serve"}},
		{"record", []string{"--record", "10"}},
		{"history", []string{"--history"}},
		{"input", []string{"--input", "take.wav"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := load(t, tc.args...)
			require.NoError(t, err)
			assert.True(t, cfg.HasMode())
		})
	}
}

func TestSpeedBounds(t *testing.T) {
	_, err := load(t, "-t", "hi", "-s", "3.0")
	assert.ErrorContains(t, err, "speed must be between")

	_, err = load(t, "-t", "hi", "-s", "0.1")
	assert.ErrorContains(t, err, "speed must be between")
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voiceclone.cfg")
	require.NoError(t, os.WriteFile(path, []byte("voice = \"carol\"\nspeed = 2.0\n"), 0o644))

	cfg, err := load(t, "-c", path, "-t", "hi")
	require.NoError(t, err)
	assert.Equal(t, "carol", cfg.Voice)
	assert.Equal(t, float32(2.0), cfg.Speed)
}

func TestUnknownFlag(t *testing.T) {
	_, err := load(t, "--no-such-flag")
	assert.Error(t, err)
}
