package config

import (
	"fmt"
	"os"
	"strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WEBVIDEO_"

// ApplyEnv overlays WEBVIDEO_* variables onto c.
func (c *Config) ApplyEnv() {
	c.Addr = envStr(EnvPrefix+"ADDR", c.Addr)
	c.LogLevel = envStr(EnvPrefix+"LOG_LEVEL", c.LogLevel)
	c.LogFormat = envStr(EnvPrefix+"LOG_FORMAT", c.LogFormat)
	c.Renderer = envStr(EnvPrefix+"RENDERER", c.Renderer)
	c.ChromePath = envStr(EnvPrefix+"CHROME_PATH", c.ChromePath)
	c.ContentDir = envStr(EnvPrefix+"CONTENT_DIR", c.ContentDir)
	c.URLTemplate = envStr(EnvPrefix+"URL_TEMPLATE", c.URLTemplate)
	c.FrameRate = envFloat(EnvPrefix+"FRAME_RATE", c.FrameRate)
	c.TickRate = envFloat(EnvPrefix+"TICK_RATE", c.TickRate)
	c.Screen.Width = envInt(EnvPrefix+"SCREEN_WIDTH", c.Screen.Width)
	c.Screen.Height = envInt(EnvPrefix+"SCREEN_HEIGHT", c.Screen.Height)
	c.CORS.Enabled = envBool(EnvPrefix+"CORS_ENABLED", c.CORS.Enabled)
	if v := os.Getenv(EnvPrefix + "CORS_ORIGINS"); v != "" {
		c.CORS.Origins = SplitCSV(v)
	}
}

// SplitCSV splits a comma-separated list, trimming blanks.
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	s := strings.ToLower(v)
	return s == "1" || s == "true" || s == "yes"
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		var f float64
		if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
			return f
		}
	}
	return def
}
