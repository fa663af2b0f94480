package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "SPRITESTAGE"

// Loader builds a Config from defaults, an optional YAML file and the environment
type Loader struct {
	envPrefix string
	lookupEnv func(string) (string, bool)
}

// NewLoader creates a loader reading the process environment
func NewLoader() *Loader {
	return &Loader{
		envPrefix: EnvPrefix,
		lookupEnv: os.LookupEnv,
	}
}

// SetEnvPrefix sets the environment variable prefix
func (l *Loader) SetEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// SetLookupEnv replaces the environment source, for tests
func (l *Loader) SetLookupEnv(fn func(string) (string, bool)) *Loader {
	l.lookupEnv = fn
	return l
}

// Load reads filename over the defaults, applies env overrides and validates
// An empty filename skips the file; a missing named file is an error
func (l *Loader) Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", filename, err)
		}
		if err := decodeInto(bytes.NewReader(data), cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML over the defaults without env overrides
func (l *Loader) LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decodeInto(r, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// decodeInto overlays YAML onto cfg; fields absent from the document keep their values
func decodeInto(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}

// loadFromEnv applies SPRITESTAGE_<SECTION>_<FIELD> overrides
func (l *Loader) loadFromEnv(cfg *Config) error {
	var errs []error

	l.envFloat("CANVAS_WIDTH", &cfg.Canvas.Width, &errs)
	l.envFloat("CANVAS_HEIGHT", &cfg.Canvas.Height, &errs)

	l.envInt("ENGINE_FPS", &cfg.Engine.FPS, &errs)
	l.envInt64("ENGINE_WAIT_HORIZON", &cfg.Engine.WaitHorizon, &errs)
	l.envFloat("ENGINE_DRAG_THRESHOLD", &cfg.Engine.DragThreshold, &errs)
	l.envFloat("ENGINE_CLAMP_INSET", &cfg.Engine.ClampInset, &errs)
	l.envInt64("ENGINE_SEED", &cfg.Engine.Seed, &errs)

	l.envString("RENDER_BACKEND", &cfg.Render.Backend)

	l.envBool("AUDIO_ENABLED", &cfg.Audio.Enabled, &errs)
	l.envInt("AUDIO_SAMPLE_RATE", &cfg.Audio.SampleRate, &errs)
	l.envFloat("AUDIO_VOLUME", &cfg.Audio.Volume, &errs)

	l.envString("LOG_LEVEL", &cfg.Log.Level)
	l.envBool("LOG_DEBUG", &cfg.Log.Debug, &errs)
	l.envString("LOG_DIR", &cfg.Log.Dir)

	l.envString("HTTP_ADDR", &cfg.HTTP.Addr)

	l.envString("PERSIST_KIND", &cfg.Persist.Kind)
	l.envString("PERSIST_PATH", &cfg.Persist.Path)
	l.envString("PERSIST_REDIS_ADDR", &cfg.Persist.RedisAddr)
	l.envString("PERSIST_KEY", &cfg.Persist.Key)
	l.envDuration("PERSIST_AUTOSAVE", &cfg.Persist.Autosave, &errs)

	return errors.Join(errs...)
}

func (l *Loader) get(name string) (string, string, bool) {
	key := l.envPrefix + "_" + name
	val, ok := l.lookupEnv(key)
	return key, strings.TrimSpace(val), ok && strings.TrimSpace(val) != ""
}

func (l *Loader) envString(name string, dst *string) {
	if _, val, ok := l.get(name); ok {
		*dst = val
	}
}

func (l *Loader) envFloat(name string, dst *float64, errs *[]error) {
	if key, val, ok := l.get(name); ok {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("%w: %s=%q", ErrEnv, key, val))
			return
		}
		*dst = f
	}
}

func (l *Loader) envInt(name string, dst *int, errs *[]error) {
	if key, val, ok := l.get(name); ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("%w: %s=%q", ErrEnv, key, val))
			return
		}
		*dst = n
	}
}

func (l *Loader) envInt64(name string, dst *int64, errs *[]error) {
	if key, val, ok := l.get(name); ok {
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("%w: %s=%q", ErrEnv, key, val))
			return
		}
		*dst = n
	}
}

func (l *Loader) envBool(name string, dst *bool, errs *[]error) {
	if key, val, ok := l.get(name); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("%w: %s=%q", ErrEnv, key, val))
			return
		}
		*dst = b
	}
}

func (l *Loader) envDuration(name string, dst *time.Duration, errs *[]error) {
	if key, val, ok := l.get(name); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("%w: %s=%q", ErrEnv, key, val))
			return
		}
		*dst = d
	}
}
