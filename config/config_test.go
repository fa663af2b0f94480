package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/spritestage/render"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	ec := cfg.EngineSettings()
	assert.Equal(t, 480.0, ec.Width)
	assert.Equal(t, 60, ec.FPS)
	assert.Equal(t, int64(600), ec.WaitHorizon)
	assert.Equal(t, render.CapManualDrag, ec.Capabilities)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
canvas:
  width: 640
engine:
  fps: 30
render:
  backend: physics
persist:
  kind: file
  path: snapshots
  autosave: 5s
`), 0o644))

	l := NewLoader().SetLookupEnv(envMap(map[string]string{
		"SPRITESTAGE_ENGINE_FPS":   "24",
		"SPRITESTAGE_HTTP_ADDR":    "127.0.0.1:8080",
		"SPRITESTAGE_AUDIO_VOLUME": " 0.25 ",
	}))
	cfg, err := l.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 640.0, cfg.Canvas.Width)
	assert.Equal(t, 360.0, cfg.Canvas.Height, "absent fields keep defaults")
	assert.Equal(t, 24, cfg.Engine.FPS, "env wins over file")
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.Addr)
	assert.Equal(t, 0.25, cfg.Audio.Volume)
	assert.Equal(t, 5*time.Second, cfg.Persist.Autosave)
	assert.Equal(t, render.BackendPhysics, cfg.Backend())
	assert.Equal(t, render.CapPhysicsDrag, cfg.EngineSettings().Capabilities)
}

func TestLoad_Errors(t *testing.T) {
	l := NewLoader().SetLookupEnv(envMap(nil))

	_, err := l.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = l.LoadFromReader(strings.NewReader("canvas: [1, 2"))
	assert.ErrorIs(t, err, ErrParse)

	_, err = l.LoadFromReader(strings.NewReader("canvas:\n  depth: 3\n"))
	assert.ErrorIs(t, err, ErrParse, "unknown fields are rejected")

	bad := NewLoader().SetLookupEnv(envMap(map[string]string{"SPRITESTAGE_ENGINE_FPS": "fast"}))
	_, err = bad.Load("")
	assert.ErrorIs(t, err, ErrEnv)
}

func TestLoadFromReader_Empty(t *testing.T) {
	cfg, err := NewLoader().LoadFromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero width", func(c *Config) { c.Canvas.Width = 0 }, ErrInvalidCanvas},
		{"fps", func(c *Config) { c.Engine.FPS = 0 }, ErrInvalidFPS},
		{"inset", func(c *Config) { c.Engine.ClampInset = 500 }, ErrInvalid},
		{"backend", func(c *Config) { c.Render.Backend = "webgl" }, ErrInvalidBackend},
		{"volume", func(c *Config) { c.Audio.Volume = 2 }, ErrInvalidAudio},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, ErrInvalidLog},
		{"file path", func(c *Config) { c.Persist.Kind = "file" }, ErrInvalidPersist},
		{"redis addr", func(c *Config) { c.Persist.Kind = "redis" }, ErrInvalidPersist},
		{"persist kind", func(c *Config) { c.Persist.Kind = "s3" }, ErrInvalidPersist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}
