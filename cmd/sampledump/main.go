// Manual check of every metrics reader against the local machine
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/fourbraillebars/internal/braille"
	"github.com/llehouerou/fourbraillebars/internal/config"
	"github.com/llehouerou/fourbraillebars/internal/metrics"
)

func main() {
	configPath := flag.String("config", "", "config file loaded after the default locations")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	readers := []struct {
		name string
		host metrics.HostReader
	}{
		{"gopsutil", metrics.NewHost(cfg.Metrics.CPUInterval)},
		{"procps", metrics.NewProcps()},
	}
	for _, r := range readers {
		start := time.Now()
		stats, err := r.host.Host(ctx)
		if err != nil {
			log.Printf("[%s] %v", r.name, err)
			continue
		}
		log.Printf("[%s] cpu user %.1f%%, ram %.1f%% (%s / %s) in %s",
			r.name, stats.CPUUser, stats.RAMUsed,
			humanize.IBytes(stats.RAMUsedBytes), humanize.IBytes(stats.RAMTotalBytes),
			time.Since(start).Round(time.Millisecond))
	}

	gpu := metrics.NewNvidiaSMI(cfg.GPU.NvidiaSMI, cfg.GPU.Index)
	stats, err := gpu.GPU(ctx)
	if err != nil {
		log.Printf("[nvidia-smi] %v", err)
	} else {
		log.Printf("[nvidia-smi] %s: util %.0f%%, vram %.1f%% (%.0f / %.0f MiB), %.0f°C, %.1f W, fan %.0f%%",
			stats.Name, stats.UtilPercent, stats.MemUsedPercent(),
			stats.MemUsedMiB, stats.MemTotalMiB, stats.TempC, stats.PowerWatts, stats.FanPercent)
	}

	sys := &metrics.System{
		Host:        metrics.NewHost(cfg.Metrics.CPUInterval),
		GPU:         gpu,
		GPUOptional: true,
	}
	sample, err := sys.Sample(ctx)
	if err != nil {
		log.Fatalf("Failed to sample: %v", err)
	}
	log.Printf("bar %v -> %s", sample.Values(), braille.EncodeValues(sample.Values()))
}
