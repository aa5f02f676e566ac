//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points XDG_CONFIG_HOME and the working directory at empty temp
// dirs so the developer's own config files do not leak into a test.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/bin/nvidia-smi",
			expected: filepath.Join(home, "bin", "nvidia-smi"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/usr/bin/nvidia-smi",
			expected: "/usr/bin/nvidia-smi",
		},
		{
			name:     "bare command unchanged",
			input:    "nvidia-smi",
			expected: "nvidia-smi",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	paths := getConfigPaths()
	if len(paths) != 2 {
		t.Fatalf("getConfigPaths() returned %d paths, want 2", len(paths))
	}

	if want := filepath.Join(configHome, "fourbraillebars", "config.toml"); paths[0] != want {
		t.Errorf("first config path = %q, want %q", paths[0], want)
	}

	// Last path should be the local file
	if paths[1] != "fourbraillebars.toml" {
		t.Errorf("last config path = %q, want %q", paths[1], "fourbraillebars.toml")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
	assert.Equal(t, SourceHost, cfg.Metrics.Source)
	assert.Equal(t, 200*time.Millisecond, cfg.Metrics.CPUInterval)
	assert.True(t, cfg.GPUEnabled())
	assert.True(t, cfg.GPUOptional())
	assert.Equal(t, "nvidia-smi", cfg.GPU.NvidiaSMI)
	assert.Equal(t, "|", cfg.Delimiter())
	assert.False(t, cfg.Render.Color)
	assert.Equal(t, time.Second, cfg.Watch.Interval)
}

func TestLoad_LayeredFiles(t *testing.T) {
	dir := isolate(t)

	writeFile(t, filepath.Join(xdg.ConfigHome, "fourbraillebars", "config.toml"), `
log_level = "info"

[metrics]
source = "procps"
cpu_interval = "500ms"

[render]
color = true
`)
	writeFile(t, filepath.Join(dir, "fourbraillebars.toml"), `
[metrics]
cpu_interval = "1s"

[gpu]
enabled = false
`)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.Equal(t, SourceProcps, cfg.Metrics.Source, "user file value kept")
	assert.Equal(t, time.Second, cfg.Metrics.CPUInterval, "local file wins")
	assert.True(t, cfg.Render.Color)
	assert.False(t, cfg.GPUEnabled())
	assert.True(t, cfg.GPUOptional())
}

func TestLoad_ExplicitFileWins(t *testing.T) {
	dir := isolate(t)

	writeFile(t, filepath.Join(dir, "fourbraillebars.toml"), `
[render]
delimiter = "["
`)
	explicit := filepath.Join(t.TempDir(), "custom.toml")
	writeFile(t, explicit, `
[render]
delimiter = ""
gradient_from = "#000000"

[gpu]
optional = false
index = 1
nvidia_smi = "/opt/nvidia/bin/nvidia-smi"

[watch]
interval = "250ms"
`)

	cfg, err := Load(explicit)
	require.NoError(t, err)

	assert.Empty(t, cfg.Delimiter())
	assert.Equal(t, "#000000", cfg.Render.GradientFrom)
	assert.Equal(t, "#ff5555", cfg.Render.GradientTo, "unset keys keep defaults")
	assert.False(t, cfg.GPUOptional())
	assert.Equal(t, 1, cfg.GPU.Index)
	assert.Equal(t, "/opt/nvidia/bin/nvidia-smi", cfg.GPU.NvidiaSMI)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Interval)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown source", "[metrics]\nsource = \"wmi\"\n"},
		{"bad log level", "log_level = \"chatty\"\n"},
		{"negative gpu index", "[gpu]\nindex = -1\n"},
		{"invalid toml", "[metrics\nsource = \"host\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			writeFile(t, filepath.Join(dir, "fourbraillebars.toml"), tt.content)

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestNormalize_FixesOutOfRangeValues(t *testing.T) {
	cfg := Default()
	cfg.Metrics.Source = " HOST "
	cfg.Metrics.CPUInterval = -time.Second
	cfg.GPU.NvidiaSMI = ""
	cfg.Watch.Interval = 0

	require.NoError(t, cfg.normalize())
	assert.Equal(t, SourceHost, cfg.Metrics.Source)
	assert.Zero(t, cfg.Metrics.CPUInterval)
	assert.Equal(t, "nvidia-smi", cfg.GPU.NvidiaSMI)
	assert.Equal(t, time.Second, cfg.Watch.Interval)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelWarn},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLogLevel(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseLogLevel("loud"); err == nil {
		t.Error("ParseLogLevel(\"loud\") should fail")
	}
}
