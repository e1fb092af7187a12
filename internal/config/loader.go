package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Renderer backends.
const (
	RendererHeadless  = "headless"
	RendererSynthetic = "synthetic"
)

// Screen is the host screen size in pixels.
type Screen struct {
	Width  int `json:"width" yaml:"width" toml:"width"`
	Height int `json:"height" yaml:"height" toml:"height"`
}

// Panel places a named panel on screen in normalized coordinates (0..1).
type Panel struct {
	Name   string  `json:"name" yaml:"name" toml:"name"`
	X      float64 `json:"x" yaml:"x" toml:"x"`
	Y      float64 `json:"y" yaml:"y" toml:"y"`
	Width  float64 `json:"width" yaml:"width" toml:"width"`
	Height float64 `json:"height" yaml:"height" toml:"height"`
}

// CORS configures the optional CORS middleware of the HTTP surface.
type CORS struct {
	Enabled bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins"`
}

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by Defaults.
type Config struct {
	Addr        string  `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel    string  `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat   string  `json:"log_format" yaml:"log_format" toml:"log_format"`
	Renderer    string  `json:"renderer" yaml:"renderer" toml:"renderer"`
	ChromePath  string  `json:"chrome_path" yaml:"chrome_path" toml:"chrome_path"`
	ContentDir  string  `json:"content_dir" yaml:"content_dir" toml:"content_dir"`
	URLTemplate string  `json:"url_template" yaml:"url_template" toml:"url_template"`
	FrameRate   float64 `json:"frame_rate" yaml:"frame_rate" toml:"frame_rate"`
	TickRate    float64 `json:"tick_rate" yaml:"tick_rate" toml:"tick_rate"`
	Screen      Screen  `json:"screen" yaml:"screen" toml:"screen"`
	Panels      []Panel `json:"panels" yaml:"panels" toml:"panels"`
	CORS        CORS    `json:"cors" yaml:"cors" toml:"cors"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
