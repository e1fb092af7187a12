package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	defaultAddr      = ":8080"
	defaultLogLevel  = "info"
	defaultLogFormat = "console"
	defaultFrameRate = 30
	defaultTickRate  = 60
	defaultWidth     = 1280
	defaultHeight    = 720
)

// Defaults fills unspecified fields. A config without panels gets a single
// full-screen panel named "main".
func (c *Config) Defaults() {
	if c.Addr == "" {
		c.Addr = defaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = defaultLogFormat
	}
	if c.Renderer == "" {
		c.Renderer = RendererHeadless
	}
	if c.FrameRate <= 0 {
		c.FrameRate = defaultFrameRate
	}
	if c.TickRate <= 0 {
		c.TickRate = defaultTickRate
	}
	if c.Screen.Width <= 0 {
		c.Screen.Width = defaultWidth
	}
	if c.Screen.Height <= 0 {
		c.Screen.Height = defaultHeight
	}
	if len(c.Panels) == 0 {
		c.Panels = []Panel{{Name: "main", Width: 1, Height: 1}}
	}
}

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var errs []error
	switch c.Renderer {
	case RendererHeadless, RendererSynthetic:
	default:
		errs = append(errs, fmt.Errorf("renderer: unknown backend %q", c.Renderer))
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format: must be console or json, got %q", c.LogFormat))
	}
	if c.URLTemplate != "" && !strings.Contains(c.URLTemplate, "{name}") && len(c.Panels) > 1 {
		errs = append(errs, errors.New("url_template: needs a {name} placeholder when several panels are configured"))
	}
	seen := make(map[string]bool, len(c.Panels))
	for i, p := range c.Panels {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("panels[%d]: name is required", i))
			continue
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("panels[%d]: duplicate name %q", i, p.Name))
		}
		seen[p.Name] = true
		if p.Width <= 0 || p.Height <= 0 || p.X < 0 || p.Y < 0 || p.X+p.Width > 1 || p.Y+p.Height > 1 {
			errs = append(errs, fmt.Errorf("panels[%d] %q: area must lie within the unit square", i, p.Name))
		}
	}
	return errors.Join(errs...)
}
