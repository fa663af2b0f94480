// Package config loads stage configuration from YAML and SPRITESTAGE_* environment overrides
package config

import (
	"fmt"
	"time"

	"github.com/lixenwraith/spritestage/audio"
	"github.com/lixenwraith/spritestage/engine"
	"github.com/lixenwraith/spritestage/logging"
	"github.com/lixenwraith/spritestage/parameter"
	"github.com/lixenwraith/spritestage/render"
)

// Config is the full host configuration
type Config struct {
	Canvas  CanvasConfig  `yaml:"canvas"`
	Engine  EngineConfig  `yaml:"engine"`
	Render  RenderConfig  `yaml:"render"`
	Audio   AudioConfig   `yaml:"audio"`
	Log     LogConfig     `yaml:"log"`
	HTTP    HTTPConfig    `yaml:"http"`
	Persist PersistConfig `yaml:"persist"`
}

type CanvasConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type EngineConfig struct {
	FPS           int     `yaml:"fps"`
	WaitHorizon   int64   `yaml:"wait_horizon"`
	DragThreshold float64 `yaml:"drag_threshold"`
	ClampInset    float64 `yaml:"clamp_inset"`
	Seed          int64   `yaml:"seed"`
}

type RenderConfig struct {
	Backend string `yaml:"backend"`
}

type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Debug bool   `yaml:"debug"`
	Dir   string `yaml:"dir"`
}

// HTTPConfig enables the control surface when Addr is set
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// PersistConfig selects the actor snapshot store
// Kind is "", "file" or "redis"; empty disables persistence
type PersistConfig struct {
	Kind      string        `yaml:"kind"`
	Path      string        `yaml:"path"`
	RedisAddr string        `yaml:"redis_addr"`
	Key       string        `yaml:"key"`
	Autosave  time.Duration `yaml:"autosave"`
}

// Default returns the stock configuration
func Default() *Config {
	return &Config{
		Canvas: CanvasConfig{
			Width:  parameter.DefaultCanvasWidth,
			Height: parameter.DefaultCanvasHeight,
		},
		Engine: EngineConfig{
			FPS:           parameter.DefaultFPS,
			WaitHorizon:   parameter.WaitHorizonFrames,
			DragThreshold: parameter.DragThreshold,
			ClampInset:    parameter.ClampInset,
		},
		Render: RenderConfig{Backend: string(render.BackendDraw)},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: parameter.DefaultSampleRate,
			Volume:     0.5,
		},
		Log: LogConfig{Level: "info", Dir: "logs"},
		Persist: PersistConfig{Key: "stage"},
	}
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("%w: %gx%g", ErrInvalidCanvas, c.Canvas.Width, c.Canvas.Height)
	}
	if c.Engine.FPS <= 0 || c.Engine.FPS > 240 {
		return fmt.Errorf("%w: %d", ErrInvalidFPS, c.Engine.FPS)
	}
	if c.Engine.WaitHorizon < 0 || c.Engine.DragThreshold < 0 || c.Engine.ClampInset < 0 {
		return fmt.Errorf("%w: engine tunables must not be negative", ErrInvalid)
	}
	if 2*c.Engine.ClampInset > min(c.Canvas.Width, c.Canvas.Height) {
		return fmt.Errorf("%w: clamp inset %g leaves no room", ErrInvalid, c.Engine.ClampInset)
	}
	if _, err := render.ParseBackend(c.Render.Backend); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackend, err)
	}
	if c.Audio.SampleRate < 0 || c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("%w: rate %d volume %g", ErrInvalidAudio, c.Audio.SampleRate, c.Audio.Volume)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLog, err)
	}
	switch c.Persist.Kind {
	case "":
	case "file":
		if c.Persist.Path == "" {
			return fmt.Errorf("%w: file store needs a path", ErrInvalidPersist)
		}
	case "redis":
		if c.Persist.RedisAddr == "" {
			return fmt.Errorf("%w: redis store needs an address", ErrInvalidPersist)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidPersist, c.Persist.Kind)
	}
	if c.Persist.Kind != "" && c.Persist.Key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidPersist)
	}
	if c.Persist.Autosave < 0 {
		return fmt.Errorf("%w: negative autosave interval", ErrInvalidPersist)
	}
	return nil
}

// EngineSettings converts to the engine's tunables; call after Validate
func (c *Config) EngineSettings() engine.Config {
	backend, _ := render.ParseBackend(c.Render.Backend)
	return engine.Config{
		Width:         c.Canvas.Width,
		Height:        c.Canvas.Height,
		FPS:           c.Engine.FPS,
		WaitHorizon:   c.Engine.WaitHorizon,
		DragThreshold: c.Engine.DragThreshold,
		ClampInset:    c.Engine.ClampInset,
		Capabilities:  backend.Capabilities(),
		Seed:          c.Engine.Seed,
	}
}

// AudioSettings converts to the tone sink configuration
func (c *Config) AudioSettings() audio.Config {
	return audio.Config{
		SampleRate: c.Audio.SampleRate,
		Volume:     c.Audio.Volume,
	}
}

// Backend returns the parsed render backend; call after Validate
func (c *Config) Backend() render.Backend {
	b, _ := render.ParseBackend(c.Render.Backend)
	return b
}
