package metrics

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// GPUStats is the subset of `nvidia-smi -q -x` the bar and the live view use.
type GPUStats struct {
	Name        string
	FanPercent  float64
	MemUsedMiB  float64
	MemTotalMiB float64
	UtilPercent float64
	PowerWatts  float64
	TempC       float64
}

// MemUsedPercent is the share of GPU memory in use.
func (g GPUStats) MemUsedPercent() float64 {
	return percentOf(g.MemUsedMiB, g.MemTotalMiB)
}

// MemUsedBytes is the GPU memory in use, in bytes.
func (g GPUStats) MemUsedBytes() uint64 {
	return mibFloatToBytes(g.MemUsedMiB)
}

// MemTotalBytes is the GPU memory size, in bytes.
func (g GPUStats) MemTotalBytes() uint64 {
	return mibFloatToBytes(g.MemTotalMiB)
}

type smiLog struct {
	GPUs []smiGPU `xml:"gpu"`
}

// smiGPU mirrors one <gpu> element. Drivers before 535 report power under
// power_readings instead of gpu_power_readings.
type smiGPU struct {
	ProductName     string `xml:"product_name"`
	FanSpeed        string `xml:"fan_speed"`
	MemUsed         string `xml:"fb_memory_usage>used"`
	MemTotal        string `xml:"fb_memory_usage>total"`
	GPUUtil         string `xml:"utilization>gpu_util"`
	GPUTemp         string `xml:"temperature>gpu_temp"`
	PowerDraw       string `xml:"gpu_power_readings>power_draw"`
	LegacyPowerDraw string `xml:"power_readings>power_draw"`
}

// ParseNvidiaSMI decodes `nvidia-smi -q -x` output and returns the GPU at index.
func ParseNvidiaSMI(out []byte, index int) (GPUStats, error) {
	var report smiLog
	if err := xml.Unmarshal(out, &report); err != nil {
		return GPUStats{}, fmt.Errorf("nvidia-smi: %w: %w", ErrParse, err)
	}
	if index < 0 || index >= len(report.GPUs) {
		return GPUStats{}, fmt.Errorf("nvidia-smi: %w at index %d (%d present)", ErrNoGPU, index, len(report.GPUs))
	}
	g := report.GPUs[index]

	power := g.PowerDraw
	if strings.TrimSpace(power) == "" {
		power = g.LegacyPowerDraw
	}

	stats := GPUStats{Name: strings.TrimSpace(g.ProductName)}
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"fan_speed", g.FanSpeed, &stats.FanPercent},
		{"fb_memory_usage/used", g.MemUsed, &stats.MemUsedMiB},
		{"fb_memory_usage/total", g.MemTotal, &stats.MemTotalMiB},
		{"utilization/gpu_util", g.GPUUtil, &stats.UtilPercent},
		{"power_draw", power, &stats.PowerWatts},
		{"temperature/gpu_temp", g.GPUTemp, &stats.TempC},
	}

	for _, f := range fields {
		v, err := parseQuantity(f.raw)
		if err != nil {
			return GPUStats{}, fmt.Errorf("nvidia-smi %s: %w", f.name, err)
		}
		*f.dst = v
	}
	return stats, nil
}

// parseQuantity reads values like "30 %", "1024 MiB" or "25.50 W". Fields the
// driver cannot report ("N/A", "[Not Supported]") and absent fields read as 0.
func parseQuantity(s string) (float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, nil
	}
	if fields[0] == "N/A" || strings.HasPrefix(fields[0], "[") {
		return 0, nil
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrParse, s)
	}
	return v, nil
}

// NvidiaSMI reads GPU usage from the nvidia-smi XML report.
type NvidiaSMI struct {
	Path   string
	Index  int
	Runner Runner
}

// NewNvidiaSMI returns a reader for the GPU at index, running the binary at path.
func NewNvidiaSMI(path string, index int) *NvidiaSMI {
	if path == "" {
		path = "nvidia-smi"
	}
	return &NvidiaSMI{Path: path, Index: index, Runner: ExecRunner{}}
}

// GPU implements GPUReader.
func (n *NvidiaSMI) GPU(ctx context.Context) (GPUStats, error) {
	out, err := n.Runner.Run(ctx, n.Path, "-q", "-x")
	if err != nil {
		return GPUStats{}, err
	}
	return ParseNvidiaSMI(out, n.Index)
}

func mibFloatToBytes(mib float64) uint64 {
	if mib <= 0 {
		return 0
	}
	return uint64(mib * mebibyte)
}
