// Package cli wires the commands: render4 prints a bar for four given
// percentages, cpu-ram-gpu-vram prints one for the current system load and
// watch keeps a live view open.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/llehouerou/fourbraillebars/internal/braille"
	"github.com/llehouerou/fourbraillebars/internal/config"
	"github.com/llehouerou/fourbraillebars/internal/errmsg"
	"github.com/llehouerou/fourbraillebars/internal/metrics"
	"github.com/llehouerou/fourbraillebars/internal/percent"
	"github.com/llehouerou/fourbraillebars/internal/ui/monitor"
	"github.com/llehouerou/fourbraillebars/internal/ui/styles"
)

// commandError prints as a user-facing message while keeping the cause.
type commandError struct {
	op  errmsg.Op
	err error
}

func (e *commandError) Error() string { return errmsg.Format(e.op, e.err) }
func (e *commandError) Unwrap() error { return e.err }

func fail(op errmsg.Op, err error) error {
	return &commandError{op: op, err: err}
}

type app struct {
	stdout io.Writer
	stderr io.Writer

	// flags
	configPath string
	color      bool
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger

	loadConfig  func(path string) (*config.Config, error)
	newSupplier func(cfg *config.Config, logger *slog.Logger) metrics.Supplier
	runProgram  func(ctx context.Context, m tea.Model) error
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:      stdout,
		stderr:      stderr,
		loadConfig:  config.Load,
		newSupplier: systemSupplier,
		runProgram:  runProgram,
	}
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return run(ctx, newApp(stdout, stderr), args)
}

func run(ctx context.Context, a *app, args []string) int {
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(a.stderr, err)
		return 1
	}
	return 0
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "fourbraillebars",
		Short: "Draw four percentages as one line of braille",
		Long: `fourbraillebars draws four 0-100 values as ten braille cells, one track per
dot row. Values are rounded to the nearest 5 before drawing.

Negative values must follow "--", e.g. fourbraillebars render4 -- -5 10 20 30.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file loaded after the default locations")
	flags.BoolVar(&a.color, "color", false, "color the bar with a gradient")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(a.render4Command(), a.systemCommand(), a.watchCommand())
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig(a.configPath)
	if err != nil {
		return fail(errmsg.OpLoadConfig, err)
	}

	if cmd.Flags().Changed("color") {
		cfg.Render.Color = a.color
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return fail(errmsg.OpInitialize, err)
	}

	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

func (a *app) render4Command() *cobra.Command {
	return &cobra.Command{
		Use:   "render4 P1 P2 P3 P4",
		Short: "Print the bar for four percentages (42, 42%, 37.5, 4.2e1)",
		Args:  cobra.ExactArgs(4),
		RunE: func(_ *cobra.Command, args []string) error {
			values, err := percent.ParseAll(args)
			if err != nil {
				return fail(errmsg.OpParseArgs, err)
			}
			bar, err := a.renderBar(values)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, bar)
			return err
		},
	}
}

func (a *app) systemCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cpu-ram-gpu-vram",
		Short: "Print the bar for CPU user, RAM used, GPU utilization and VRAM used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			supplier := a.newSupplier(a.cfg, a.logger)
			sample, err := supplier.Sample(cmd.Context())
			if err != nil {
				return fail(errmsg.OpSample, err)
			}
			bar, err := a.renderBar(sample.Values())
			if err != nil {
				return err
			}
			d := a.cfg.Delimiter()
			_, err = fmt.Fprintln(a.stdout, d+bar+d)
			return err
		},
	}
}

func (a *app) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep a live view of the system bar open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The alternate screen owns the terminal; sampling errors are
			// shown in the view instead of being logged to stderr.
			quiet := slog.New(slog.DiscardHandler)

			var opts []monitor.Option
			if a.cfg.Render.Color {
				g, err := a.gradient()
				if err != nil {
					return err
				}
				opts = append(opts, monitor.WithGradient(g))
			}

			m := monitor.New(a.newSupplier(a.cfg, quiet), a.cfg.Watch.Interval, opts...)
			if err := a.runProgram(cmd.Context(), m); err != nil {
				return fail(errmsg.OpWatch, err)
			}
			return nil
		},
	}
}

func (a *app) renderBar(values [4]float64) (string, error) {
	bar := braille.EncodeValues(values)
	a.logger.Debug("encoded", "values", values, "bar", bar)
	if !a.cfg.Render.Color {
		return bar, nil
	}
	g, err := a.gradient()
	if err != nil {
		return "", err
	}
	return g.Render(bar), nil
}

func (a *app) gradient() (styles.Gradient, error) {
	g, err := styles.NewGradient(a.cfg.Render.GradientFrom, a.cfg.Render.GradientTo)
	if err != nil {
		return styles.Gradient{}, fail(errmsg.OpRender, err)
	}
	return g, nil
}

// systemSupplier builds the metrics supplier described by cfg.
func systemSupplier(cfg *config.Config, logger *slog.Logger) metrics.Supplier {
	var host metrics.HostReader
	switch cfg.Metrics.Source {
	case config.SourceProcps:
		host = metrics.NewProcps()
	default:
		host = metrics.NewHost(cfg.Metrics.CPUInterval)
	}

	sys := &metrics.System{
		Host:        host,
		GPUOptional: cfg.GPUOptional(),
		Logger:      logger,
	}
	if cfg.GPUEnabled() {
		sys.GPU = metrics.NewNvidiaSMI(cfg.GPU.NvidiaSMI, cfg.GPU.Index)
	}
	return sys
}

func runProgram(ctx context.Context, m tea.Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
