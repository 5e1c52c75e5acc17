package scaffold

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config carries the studio defaults every scaffolded project starts
// from. Values load from an optional yaml file and can be overridden
// per key through FRAMEWRIGHT_* environment variables.
type Config struct {
	FPS              int    `yaml:"fps"`
	Width            int    `yaml:"width"`
	Height           int    `yaml:"height"`
	DurationInFrames int    `yaml:"duration_in_frames"`
	SceneName        string `yaml:"scene_name"`
}

// DefaultConfig returns the stock 30fps full-HD five-second timeline.
func DefaultConfig() Config {
	return Config{
		FPS:              30,
		Width:            1920,
		Height:           1080,
		DurationInFrames: 150,
		SceneName:        "Scene",
	}
}

// LoadConfig reads the studio config at path, merges it over the
// defaults, and applies the environment overlay. An empty path skips
// the file and keeps defaults plus environment.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("scaffold: read config: %w", err)
		}
		var loaded Config
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return cfg, fmt.Errorf("scaffold: parse config: %w", err)
		}
		cfg.merge(loaded)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) merge(loaded Config) {
	if loaded.FPS > 0 {
		c.FPS = loaded.FPS
	}
	if loaded.Width > 0 {
		c.Width = loaded.Width
	}
	if loaded.Height > 0 {
		c.Height = loaded.Height
	}
	if loaded.DurationInFrames > 0 {
		c.DurationInFrames = loaded.DurationInFrames
	}
	if strings.TrimSpace(loaded.SceneName) != "" {
		c.SceneName = strings.TrimSpace(loaded.SceneName)
	}
}

func (c *Config) applyEnv() {
	if v := envInt("FRAMEWRIGHT_FPS"); v > 0 {
		c.FPS = v
	}
	if v := envInt("FRAMEWRIGHT_WIDTH"); v > 0 {
		c.Width = v
	}
	if v := envInt("FRAMEWRIGHT_HEIGHT"); v > 0 {
		c.Height = v
	}
	if v := envInt("FRAMEWRIGHT_DURATION"); v > 0 {
		c.DurationInFrames = v
	}
	if v := strings.TrimSpace(os.Getenv("FRAMEWRIGHT_SCENE_NAME")); v != "" {
		c.SceneName = v
	}
}

func envInt(key string) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// Spec builds a project spec for name from these defaults. sceneSource
// may be empty, in which case the starter scene is used.
func (c Config) Spec(name, sceneSource string) Spec {
	return Spec{
		Name:             name,
		SceneName:        c.SceneName,
		FPS:              c.FPS,
		Width:            c.Width,
		Height:           c.Height,
		DurationInFrames: c.DurationInFrames,
		SceneSource:      sceneSource,
	}
}
