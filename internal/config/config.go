package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	appName       = "fourbraillebars"
	localFileName = appName + ".toml"

	SourceHost   = "host"
	SourceProcps = "procps"
)

type Config struct {
	LogLevel string `koanf:"log_level"` // debug, info, warn, error

	Metrics MetricsConfig `koanf:"metrics"`
	GPU     GPUConfig     `koanf:"gpu"`
	Render  RenderConfig  `koanf:"render"`
	Watch   WatchConfig   `koanf:"watch"`
}

// MetricsConfig selects where CPU and RAM figures come from.
type MetricsConfig struct {
	Source      string        `koanf:"source"`       // "host" (gopsutil) or "procps" (top/free)
	CPUInterval time.Duration `koanf:"cpu_interval"` // CPU sampling window, 0 = since boot
}

// GPUConfig holds nvidia-smi settings.
type GPUConfig struct {
	Enabled   *bool  `koanf:"enabled"`    // read GPU tracks at all (default: true)
	Optional  *bool  `koanf:"optional"`   // report 0 instead of failing (default: true)
	Index     int    `koanf:"index"`      // GPU to read when several are present
	NvidiaSMI string `koanf:"nvidia_smi"` // binary path (default: "nvidia-smi")
}

// RenderConfig controls how the bar is printed.
type RenderConfig struct {
	Delimiter    *string `koanf:"delimiter"`     // wraps the cpu-ram-gpu-vram bar (default: "|")
	Color        bool    `koanf:"color"`         // gradient colored output
	GradientFrom string  `koanf:"gradient_from"` // hex color of the first cell
	GradientTo   string  `koanf:"gradient_to"`   // hex color of the last cell
}

// WatchConfig holds live view settings.
type WatchConfig struct {
	Interval time.Duration `koanf:"interval"` // refresh period (default: 1s)
}

// Load reads the layered config files. explicit, when set, is loaded last and
// must exist.
func Load(explicit string) (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}

	if explicit != "" {
		explicit = expandPath(explicit)
		if err := k.Load(file.Provider(explicit), toml.Parser()); err != nil {
			return nil, fmt.Errorf("%s: %w", explicit, err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	return &Config{
		LogLevel: "warn",
		Metrics: MetricsConfig{
			Source:      SourceHost,
			CPUInterval: 200 * time.Millisecond,
		},
		GPU: GPUConfig{
			NvidiaSMI: "nvidia-smi",
		},
		Render: RenderConfig{
			GradientFrom: "#42b883",
			GradientTo:   "#ff5555",
		},
		Watch: WatchConfig{
			Interval: time.Second,
		},
	}
}

func (c *Config) normalize() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	c.Metrics.Source = strings.ToLower(strings.TrimSpace(c.Metrics.Source))
	switch c.Metrics.Source {
	case "":
		c.Metrics.Source = SourceHost
	case SourceHost, SourceProcps:
	default:
		return fmt.Errorf("metrics.source: unknown source %q (want %q or %q)",
			c.Metrics.Source, SourceHost, SourceProcps)
	}
	if c.Metrics.CPUInterval < 0 {
		c.Metrics.CPUInterval = 0
	}

	if c.GPU.Index < 0 {
		return fmt.Errorf("gpu.index: must not be negative, got %d", c.GPU.Index)
	}
	if c.GPU.NvidiaSMI == "" {
		c.GPU.NvidiaSMI = "nvidia-smi"
	}
	c.GPU.NvidiaSMI = expandPath(c.GPU.NvidiaSMI)

	if c.Watch.Interval <= 0 {
		c.Watch.Interval = time.Second
	}
	return nil
}

// GPUEnabled reports whether GPU tracks are read.
func (c *Config) GPUEnabled() bool {
	return c.GPU.Enabled == nil || *c.GPU.Enabled
}

// GPUOptional reports whether a failing GPU read falls back to 0.
func (c *Config) GPUOptional() bool {
	return c.GPU.Optional == nil || *c.GPU.Optional
}

// Delimiter returns the string printed around the system bar.
func (c *Config) Delimiter() string {
	if c.Render.Delimiter == nil {
		return "|"
	}
	return *c.Render.Delimiter
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := ParseLogLevel(c.LogLevel)
	return level
}

// ParseLogLevel accepts slog level names, case-insensitive. Empty means warn.
func ParseLogLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelWarn, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/fourbraillebars/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),

		// 2. ./fourbraillebars.toml (pwd, highest priority)
		localFileName,
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
