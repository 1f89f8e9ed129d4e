// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"image/color"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/bagannotate/pkg/orchestrator"
)

// Config represents the full configuration for bagannotate.
type Config struct {
	// Input/Output
	BagPath         string `yaml:"bag"`
	Topic           string `yaml:"topic"`
	AnnotationsPath string `yaml:"annotations"`
	OutputPath      string `yaml:"output"`

	// Encoding
	Codec         string `yaml:"codec"`
	JPEGQuality   int    `yaml:"jpeg_quality"`
	CRF           int    `yaml:"crf"`
	Bitrate       int    `yaml:"bitrate"`
	FFmpegPath    string `yaml:"ffmpeg_path"`
	AllowFallback bool   `yaml:"allow_fallback"`

	// Overlay
	Overlay      bool    `yaml:"overlay"`
	OverlayColor string  `yaml:"overlay_color"`
	OverlayWidth float64 `yaml:"overlay_width"`
	ShowIDs      bool    `yaml:"show_ids"`
	Workers      int     `yaml:"workers"`

	// Output
	SummaryPath string `yaml:"summary"`
	LogLevel    string `yaml:"log_level"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Codec:         "jpeg",
		JPEGQuality:   90,
		CRF:           23,
		AllowFallback: true,

		OverlayColor: "#c80000",
		OverlayWidth: 2,
		Workers:      4,

		LogLevel: "info",
		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file on top of Defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// ParseColor parses a hex color string ("#rrggbb") to color.Color.
// Malformed input yields opaque black.
func ParseColor(hex string) color.Color {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return color.Black
	}

	var rgb [3]uint8
	for i := range rgb {
		rgb[i] = hexValue(hex[2*i])<<4 | hexValue(hex[2*i+1])
	}
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
}

func hexValue(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// Quality returns the quality setting for the encoder that writes fourcc.
func (c Config) Quality(fourcc string) int {
	if fourcc == "avc1" {
		return c.CRF
	}
	return c.JPEGQuality
}

// ToOrchestratorConfig converts Config to orchestrator.Config for an encoder
// writing fourcc.
func (c Config) ToOrchestratorConfig(fourcc string) orchestrator.Config {
	oc := orchestrator.DefaultConfig()
	oc.Topic = c.Topic
	oc.AnnotationsPath = c.AnnotationsPath
	oc.OutputPath = c.OutputPath

	oc.Overlay = c.Overlay
	oc.OverlayStyle.Color = ParseColor(c.OverlayColor)
	if c.OverlayWidth > 0 {
		oc.OverlayStyle.StrokeWidth = c.OverlayWidth
	}
	oc.OverlayStyle.ShowIDs = c.ShowIDs

	oc.Quality = c.Quality(fourcc)
	oc.Bitrate = c.Bitrate
	return oc
}
