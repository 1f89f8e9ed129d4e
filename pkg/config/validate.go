package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/user/bagannotate/pkg/adapters/smartencoder"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid value")

var hexColor = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// Validate checks the configuration for a conversion run.
func (c *Config) Validate() error {
	if err := c.validateIO(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if err := c.validateOverlay(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateIO() error {
	if strings.TrimSpace(c.BagPath) == "" {
		return fmt.Errorf("%w: bag must be set", ErrInvalid)
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return fmt.Errorf("%w: output must be set", ErrInvalid)
	}
	switch strings.ToLower(filepath.Ext(c.OutputPath)) {
	case ".mp4", ".m4v", ".mov":
	default:
		return fmt.Errorf("%w: output %q must end in .mp4, .m4v or .mov", ErrInvalid, c.OutputPath)
	}
	if c.Debug && strings.TrimSpace(c.DebugDir) == "" {
		return fmt.Errorf("%w: debug_dir must be set when debug is enabled", ErrInvalid)
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if tags := smartencoder.Tags(); !slices.Contains(tags, c.Codec) {
		return fmt.Errorf("%w: codec %q (want %s)", ErrInvalid, c.Codec, strings.Join(tags, " or "))
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("%w: jpeg_quality %d (want 1-100)", ErrInvalid, c.JPEGQuality)
	}
	if c.CRF < 0 || c.CRF > 51 {
		return fmt.Errorf("%w: crf %d (want 0-51)", ErrInvalid, c.CRF)
	}
	if c.Bitrate < 0 {
		return fmt.Errorf("%w: bitrate must not be negative", ErrInvalid)
	}
	return nil
}

func (c *Config) validateOverlay() error {
	if !hexColor.MatchString(c.OverlayColor) {
		return fmt.Errorf("%w: overlay_color %q (want #rrggbb)", ErrInvalid, c.OverlayColor)
	}
	if c.OverlayWidth <= 0 {
		return fmt.Errorf("%w: overlay_width must be positive", ErrInvalid)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalid)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "quiet":
		return nil
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
}
