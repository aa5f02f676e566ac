package metrics

import (
	"context"
	"log/slog"

	"github.com/llehouerou/fourbraillebars/internal/errmsg"
)

// System combines a host reader and an optional GPU reader into a Supplier.
type System struct {
	Host HostReader

	// GPU is nil when GPU tracks are disabled; they then read 0.
	GPU GPUReader

	// GPUOptional turns GPU read failures into a logged warning and zero
	// GPU tracks instead of an error.
	GPUOptional bool

	Logger *slog.Logger
}

// Sample implements Supplier.
func (s *System) Sample(ctx context.Context) (Sample, error) {
	host, err := s.Host.Host(ctx)
	if err != nil {
		return Sample{}, err
	}

	sample := Sample{
		CPUUser:       host.CPUUser,
		RAMUsed:       host.RAMUsed,
		RAMTotalBytes: host.RAMTotalBytes,
		RAMUsedBytes:  host.RAMUsedBytes,
	}

	if s.GPU != nil {
		gpu, err := s.GPU.GPU(ctx)
		switch {
		case err == nil:
			sample.GPUUtil = gpu.UtilPercent
			sample.VRAMUsed = gpu.MemUsedPercent()
			sample.GPU = &gpu
		case s.GPUOptional && ctx.Err() == nil:
			s.logger().Warn("GPU unavailable, reporting 0", "err", err)
		default:
			return Sample{}, errmsg.Error(errmsg.OpReadGPU, err)
		}
	}

	s.logger().Debug("sampled",
		"cpu_user", sample.CPUUser, "ram_used", sample.RAMUsed,
		"gpu_util", sample.GPUUtil, "vram_used", sample.VRAMUsed)
	return sample, nil
}

func (s *System) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
