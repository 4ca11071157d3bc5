// Package config loads the emoji maker settings. The values are taken from
// the defaults, then from an optional YAML file, then from the EMOJIMAKER_*
// environment variables. The command line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the command line, the preview window
// and the HTTP server.
type Config struct {
	// Assets is the directory holding one sub-directory per category.
	Assets string `yaml:"assets" env:"EMOJIMAKER_ASSETS"`
	// Width and Height set the canvas size. When zero, the gallery manifest
	// size is used, falling back to Size.
	Width  int `yaml:"width"  env:"EMOJIMAKER_WIDTH"`
	Height int `yaml:"height" env:"EMOJIMAKER_HEIGHT"`
	Size   int `yaml:"size"   env:"EMOJIMAKER_SIZE"`
	// Background is a hex color (#rgb, #rrggbb or #rrggbbaa) or "transparent".
	Background string `yaml:"background" env:"EMOJIMAKER_BACKGROUND"`
	Op         string `yaml:"op"         env:"EMOJIMAKER_OP"`
	Blend      string `yaml:"blend"      env:"EMOJIMAKER_BLEND"`
	Addr       string `yaml:"addr"       env:"EMOJIMAKER_ADDR"`
	Workers    int    `yaml:"workers"    env:"EMOJIMAKER_WORKERS"`
	Debug      bool   `yaml:"debug"      env:"EMOJIMAKER_DEBUG"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Assets:     "assets",
		Size:       512,
		Background: "transparent",
		Op:         "src_over",
		Blend:      "normal",
		Addr:       ":8080",
	}
}

// Load returns the default settings overridden by the YAML file at path,
// if not empty, then by the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return cfg, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %q does not exist", path)
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Width < 0 || c.Height < 0 || c.Size < 0 {
		return fmt.Errorf("invalid canvas size: %dx%d (size %d)", c.Width, c.Height, c.Size)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid number of workers: %d", c.Workers)
	}
	if _, err := ParseColor(c.Background); err != nil {
		return err
	}
	return nil
}

// CanvasSize returns the canvas dimension. The explicit width and height
// win over the manifest size mw x mh, which wins over Size.
func (c Config) CanvasSize(mw, mh int) (int, int) {
	w, h := c.Size, c.Size
	if mw > 0 && mh > 0 {
		w, h = mw, mh
	}
	if c.Width > 0 {
		w = c.Width
	}
	if c.Height > 0 {
		h = c.Height
	}
	return w, h
}

// BackgroundColor returns the parsed background color, nil if transparent.
func (c Config) BackgroundColor() color.Color {
	col, _ := ParseColor(c.Background)
	return col
}

// ParseColor parses a hex color. An empty string or "transparent" returns a nil color.
func ParseColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "transparent" || s == "none" {
		return nil, nil
	}
	hex := strings.TrimPrefix(s, "#")

	// Expand the short form.
	if len(hex) == 3 || len(hex) == 4 {
		var b strings.Builder
		for _, r := range hex {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		hex = b.String()
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
