package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perlw/myrcube/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
	assert.Equal(t, 2, cfg.FramesInFlight)
	assert.Equal(t, "Vulkan Uniform Buffers", cfg.Title)
}

func TestDecodeKeepsDefaults(t *testing.T) {
	cfg, err := config.Decode(strings.NewReader(`
width = 1024
frames_in_flight = 3

[camera]
speed = 2.5
`))
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
	assert.Equal(t, 3, cfg.FramesInFlight)
	assert.Equal(t, float32(2.5), cfg.Camera.Speed)
	assert.Equal(t, float32(0.01), cfg.Camera.AngleSpeed)

	opts := cfg.Options()
	assert.Equal(t, 3, opts.FramesInFlight)
	assert.Equal(t, "shaders", opts.ShaderDir)
	assert.Equal(t, float32(2.5), opts.CameraSpeed)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "colour = true"},
		{"bad syntax", "width = "},
		{"zero frames", "frames_in_flight = 0"},
		{"negative size", "height = -1"},
		{"empty shader dir", `shader_dir = ""`},
		{"negative speed", "[camera]\nangle_speed = -1.0"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := config.Decode(strings.NewReader(test.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "myr.toml")
	require.NoError(t, os.WriteFile(path, []byte("title = \"cube\"\nhud = true\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cube", cfg.Title)
	assert.True(t, cfg.HUD)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
