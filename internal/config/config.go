package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/faiface/beep"
	"gopkg.in/yaml.v3"

	"github.com/iburimskiy/audio-boxes/internal/spectrum"
)

const (
	WindowWidth  = 1024
	WindowHeight = 512

	// Button dimensions
	ButtonWidth  = 120
	ButtonHeight = 40
	ButtonX      = 20
	ButtonY      = 50

	// Audio bar
	BarHeight = 60
	BarMargin = 20

	// EnvPath overrides the config file location.
	EnvPath = "VISUALIZER_CONFIG"
)

var ErrInvalid = errors.New("invalid config")

// Config holds the visualizer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Audio    AudioConfig    `yaml:"audio"`
	Analyser AnalyserConfig `yaml:"analyser"`
	HUD      HUDConfig      `yaml:"hud"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type AudioConfig struct {
	SampleRate      int `yaml:"sampleRate"`
	BufferMillis    int `yaml:"bufferMillis"`
	ResampleQuality int `yaml:"resampleQuality"`
}

type AnalyserConfig struct {
	FFTSize     int     `yaml:"fftSize"`
	Smoothing   float64 `yaml:"smoothing"`
	MinDecibels float64 `yaml:"minDecibels"`
	MaxDecibels float64 `yaml:"maxDecibels"`
}

type HUDConfig struct {
	Visible bool `yaml:"visible"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	p := spectrum.DefaultParams()
	return &Config{
		Window: WindowConfig{
			Title:  "Audio Boxes - O: open file, Space: play/pause, H: HUD, Esc/Q: quit",
			Width:  WindowWidth,
			Height: WindowHeight,
		},
		Audio: AudioConfig{
			SampleRate:      44100,
			BufferMillis:    50,
			ResampleQuality: 4,
		},
		Analyser: AnalyserConfig{
			FFTSize:     p.FFTSize,
			Smoothing:   p.Smoothing,
			MinDecibels: p.MinDecibels,
			MaxDecibels: p.MaxDecibels,
		},
		HUD: HUDConfig{Visible: true},
	}
}

// Path returns the config file location: $VISUALIZER_CONFIG, or
// audio-boxes/config.yaml under the user config directory.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "audio-boxes", "config.yaml")
}

// Load reads the config at path and applies VISUALIZER_* environment
// overrides. A missing file yields Default() with overrides and no error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) applyEnv() {
	c.Audio.SampleRate = envInt("VISUALIZER_SAMPLE_RATE", c.Audio.SampleRate)
	c.Audio.BufferMillis = envInt("VISUALIZER_BUFFER_MS", c.Audio.BufferMillis)
	c.Analyser.FFTSize = envInt("VISUALIZER_FFT_SIZE", c.Analyser.FFTSize)
	c.Analyser.Smoothing = envFloat("VISUALIZER_SMOOTHING", c.Analyser.Smoothing)
	c.Window.Title = envStr("VISUALIZER_TITLE", c.Window.Title)
}

// Validate checks ranges the audio and render code depend on.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalid, c.Audio.SampleRate)
	}
	if c.Audio.BufferMillis <= 0 {
		return fmt.Errorf("%w: buffer %dms", ErrInvalid, c.Audio.BufferMillis)
	}
	if c.Audio.ResampleQuality < 1 || c.Audio.ResampleQuality > 64 {
		return fmt.Errorf("%w: resample quality %d", ErrInvalid, c.Audio.ResampleQuality)
	}
	if err := c.AnalyserParams().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// AnalyserParams converts the analyser section.
func (c *Config) AnalyserParams() spectrum.Params {
	return spectrum.Params{
		FFTSize:     c.Analyser.FFTSize,
		Smoothing:   c.Analyser.Smoothing,
		MinDecibels: c.Analyser.MinDecibels,
		MaxDecibels: c.Analyser.MaxDecibels,
	}
}

func (c *Config) SampleRate() beep.SampleRate { return beep.SampleRate(c.Audio.SampleRate) }

func (c *Config) Buffer() time.Duration {
	return time.Duration(c.Audio.BufferMillis) * time.Millisecond
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
