// Package metrics supplies the four percentages drawn by the bar: CPU user
// time, RAM used, GPU utilization and GPU memory used.
package metrics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrNoGPU is returned when no GPU matches the configured index.
	ErrNoGPU = errors.New("no GPU found")

	// ErrParse is wrapped when a tool's output cannot be understood.
	ErrParse = errors.New("unexpected output")
)

// Sample is one reading of every track plus the raw figures behind it.
type Sample struct {
	CPUUser  float64 // percent of CPU time spent in user space
	RAMUsed  float64 // percent of RAM in use
	GPUUtil  float64 // percent GPU utilization
	VRAMUsed float64 // percent of GPU memory in use

	RAMTotalBytes uint64
	RAMUsedBytes  uint64

	GPU *GPUStats // nil when no GPU was read
}

// Values returns the percentages in track order.
func (s Sample) Values() [4]float64 {
	return [4]float64{s.CPUUser, s.RAMUsed, s.GPUUtil, s.VRAMUsed}
}

// Supplier produces samples. Implementations may block on I/O.
type Supplier interface {
	Sample(ctx context.Context) (Sample, error)
}

// HostStats holds the CPU and memory part of a sample.
type HostStats struct {
	CPUUser       float64
	RAMUsed       float64
	RAMTotalBytes uint64
	RAMUsedBytes  uint64
}

// HostReader reads CPU and memory usage.
type HostReader interface {
	Host(ctx context.Context) (HostStats, error)
}

// GPUReader reads usage for a single GPU.
type GPUReader interface {
	GPU(ctx context.Context) (GPUStats, error)
}

// Runner executes an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args. A failing command's stderr is folded into the
// returned error.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", commandLine(name, args), err, bytes.TrimSpace(exitErr.Stderr))
		}
		return nil, fmt.Errorf("%s: %w", commandLine(name, args), err)
	}
	return out, nil
}

// Static always returns the same values. Useful for tests and demos.
type Static [4]float64

// Sample implements Supplier.
func (s Static) Sample(context.Context) (Sample, error) {
	return Sample{CPUUser: s[0], RAMUsed: s[1], GPUUtil: s[2], VRAMUsed: s[3]}, nil
}

func commandLine(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func percentOf(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}
