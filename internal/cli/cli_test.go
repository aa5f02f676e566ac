package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/fourbraillebars/internal/config"
	"github.com/llehouerou/fourbraillebars/internal/metrics"
	"github.com/llehouerou/fourbraillebars/internal/ui/monitor"
)

type fakeSupplier struct {
	sample metrics.Sample
	err    error
}

func (f fakeSupplier) Sample(context.Context) (metrics.Sample, error) {
	return f.sample, f.err
}

// testApp returns an app using default config and the given supplier.
func testApp(supplier metrics.Supplier) (*app, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	a.loadConfig = func(string) (*config.Config, error) { return config.Default(), nil }
	a.newSupplier = func(*config.Config, *slog.Logger) metrics.Supplier { return supplier }
	a.runProgram = func(context.Context, tea.Model) error { return nil }
	return a, &stdout, &stderr
}

func TestRender4(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"plain integers", []string{"75", "50", "25", "100"}, "⣿⣿⣟⣛⣛⣉⣉⣁⣀⣀\n"},
		{"percent suffix and decimals", []string{"15%", "35.0", "5.5e1", "95%"}, "⣿⣷⣶⣦⣤⣄⣀⣀⣀⡀\n"},
		{"rounded onto boundaries", []string{"9", "10", "19", "20"}, "⣿⣤⠀⠀⠀⠀⠀⠀⠀⠀\n"},
		{"negative after separator", []string{"--", "-5", "0", "0", "0"}, "⠀⠀⠀⠀⠀⠀⠀⠀⠀⠀\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, stdout, stderr := testApp(metrics.Static{})
			code := run(context.Background(), a, append([]string{"render4"}, tt.args...))

			assert.Equal(t, 0, code, stderr.String())
			assert.Equal(t, tt.want, stdout.String())
			assert.Empty(t, stderr.String())
		})
	}
}

func TestRender4_InvalidPercentage(t *testing.T) {
	a, stdout, stderr := testApp(metrics.Static{})
	code := run(context.Background(), a, []string{"render4", "75", "half", "25", "100"})

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Equal(t, "Failed to parse percentages: \"half\": invalid syntax\n", stderr.String())
}

func TestRender4_WrongArgCount(t *testing.T) {
	a, stdout, stderr := testApp(metrics.Static{})
	code := run(context.Background(), a, []string{"render4", "75", "50"})

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "accepts 4 arg(s), received 2")
}

func TestRender4_Color(t *testing.T) {
	a, stdout, _ := testApp(metrics.Static{})
	code := run(context.Background(), a, []string{"--color", "render4", "75", "50", "25", "100"})

	require.Equal(t, 0, code)
	assert.Equal(t, "⣿⣿⣟⣛⣛⣉⣉⣁⣀⣀\n", ansi.Strip(stdout.String()))
}

func TestRender4_BadGradient(t *testing.T) {
	a, _, stderr := testApp(metrics.Static{})
	a.loadConfig = func(string) (*config.Config, error) {
		cfg := config.Default()
		cfg.Render.Color = true
		cfg.Render.GradientTo = "red"
		return cfg, nil
	}

	code := run(context.Background(), a, []string{"render4", "1", "2", "3", "4"})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Failed to render bar")
}

func TestSystemBar(t *testing.T) {
	a, stdout, stderr := testApp(metrics.Static{75, 50, 25, 100})
	code := run(context.Background(), a, []string{"cpu-ram-gpu-vram"})

	assert.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "|⣿⣿⣟⣛⣛⣉⣉⣁⣀⣀|\n", stdout.String())
}

func TestSystemBar_CustomDelimiter(t *testing.T) {
	a, stdout, _ := testApp(metrics.Static{50, 0, 0, 0})
	a.loadConfig = func(string) (*config.Config, error) {
		cfg := config.Default()
		empty := ""
		cfg.Render.Delimiter = &empty
		return cfg, nil
	}

	require.Equal(t, 0, run(context.Background(), a, []string{"cpu-ram-gpu-vram"}))
	assert.Equal(t, "⠉⠉⠉⠉⠉⠀⠀⠀⠀⠀\n", stdout.String())
}

func TestSystemBar_SupplierError(t *testing.T) {
	boom := errors.New("exec: \"nvidia-smi\": executable file not found in $PATH")
	a, stdout, stderr := testApp(fakeSupplier{err: boom})

	code := run(context.Background(), a, []string{"cpu-ram-gpu-vram"})
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Equal(t, "Failed to sample system metrics: "+boom.Error()+"\n", stderr.String())
}

func TestConfigError(t *testing.T) {
	a, _, stderr := testApp(metrics.Static{})
	a.loadConfig = func(string) (*config.Config, error) { return nil, errors.New("toml: bad key") }

	code := run(context.Background(), a, []string{"render4", "1", "2", "3", "4"})
	assert.Equal(t, 1, code)
	assert.Equal(t, "Failed to load configuration: toml: bad key\n", stderr.String())
}

func TestConfigFileFlag(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "bars.toml")
	require.NoError(t, os.WriteFile(path, []byte("[render]\ndelimiter = \"▕\"\n"), 0o644))

	a, stdout, stderr := testApp(metrics.Static{100, 100, 100, 100})
	a.loadConfig = config.Load

	code := run(context.Background(), a, []string{"--config", path, "cpu-ram-gpu-vram"})
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "▕⣿⣿⣿⣿⣿⣿⣿⣿⣿⣿▕\n", stdout.String())
}

func TestLogLevelFlag(t *testing.T) {
	a, _, stderr := testApp(metrics.Static{})
	code := run(context.Background(), a, []string{"--log-level", "debug", "render4", "1", "2", "3", "4"})

	require.Equal(t, 0, code)
	assert.Contains(t, stderr.String(), "level=DEBUG")
	assert.Contains(t, stderr.String(), "msg=encoded")
}

func TestLogLevelFlag_Invalid(t *testing.T) {
	a, _, stderr := testApp(metrics.Static{})
	code := run(context.Background(), a, []string{"--log-level", "chatty", "render4", "1", "2", "3", "4"})

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Failed to initialize application")
}

func TestWatch(t *testing.T) {
	a, _, _ := testApp(metrics.Static{75, 50, 25, 100})

	var got tea.Model
	a.runProgram = func(_ context.Context, m tea.Model) error {
		got = m
		return nil
	}

	require.Equal(t, 0, run(context.Background(), a, []string{"watch"}))
	_, ok := got.(monitor.Model)
	assert.True(t, ok, "watch should run the monitor model")
}

func TestWatch_ProgramError(t *testing.T) {
	a, _, stderr := testApp(metrics.Static{})
	a.runProgram = func(context.Context, tea.Model) error { return errors.New("could not open a new TTY") }

	assert.Equal(t, 1, run(context.Background(), a, []string{"watch"}))
	assert.Equal(t, "Failed to run live view: could not open a new TTY\n", stderr.String())
}

func TestSystemSupplier(t *testing.T) {
	t.Run("host source with gpu", func(t *testing.T) {
		cfg := config.Default()
		sys, ok := systemSupplier(cfg, slog.Default()).(*metrics.System)
		require.True(t, ok)

		host, ok := sys.Host.(*metrics.Host)
		require.True(t, ok)
		assert.Equal(t, 200*time.Millisecond, host.Interval)

		gpu, ok := sys.GPU.(*metrics.NvidiaSMI)
		require.True(t, ok)
		assert.Equal(t, "nvidia-smi", gpu.Path)
		assert.True(t, sys.GPUOptional)
	})

	t.Run("procps source without gpu", func(t *testing.T) {
		cfg := config.Default()
		cfg.Metrics.Source = config.SourceProcps
		disabled := false
		cfg.GPU.Enabled = &disabled

		sys, ok := systemSupplier(cfg, slog.Default()).(*metrics.System)
		require.True(t, ok)
		assert.IsType(t, &metrics.Procps{}, sys.Host)
		assert.Nil(t, sys.GPU)
	})
}
