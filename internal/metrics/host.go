package metrics

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/llehouerou/fourbraillebars/internal/errmsg"
)

// Host reads CPU and memory usage through gopsutil.
type Host struct {
	// Interval is the window CPU usage is measured over. Zero uses the
	// counters accumulated since boot.
	Interval time.Duration

	times  func(ctx context.Context) (cpu.TimesStat, error)
	memory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
}

// NewHost returns a Host measuring CPU usage over interval.
func NewHost(interval time.Duration) *Host {
	return &Host{
		Interval: interval,
		times:    totalTimes,
		memory:   mem.VirtualMemoryWithContext,
	}
}

// Host implements HostReader.
func (h *Host) Host(ctx context.Context) (HostStats, error) {
	cpuUser, err := h.cpuUser(ctx)
	if err != nil {
		return HostStats{}, errmsg.Error(errmsg.OpReadCPU, err)
	}

	vm, err := h.memory(ctx)
	if err != nil {
		return HostStats{}, errmsg.Error(errmsg.OpReadMemory, err)
	}

	return HostStats{
		CPUUser:       cpuUser,
		RAMUsed:       vm.UsedPercent,
		RAMTotalBytes: vm.Total,
		RAMUsedBytes:  vm.Used,
	}, nil
}

func (h *Host) cpuUser(ctx context.Context) (float64, error) {
	before, err := h.times(ctx)
	if err != nil {
		return 0, err
	}
	if h.Interval <= 0 {
		return userPercent(cpu.TimesStat{}, before), nil
	}

	timer := time.NewTimer(h.Interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-timer.C:
	}

	after, err := h.times(ctx)
	if err != nil {
		return 0, err
	}
	return userPercent(before, after), nil
}

// userPercent is the share of user and nice time between two snapshots.
func userPercent(before, after cpu.TimesStat) float64 {
	user := (after.User + after.Nice) - (before.User + before.Nice)
	total := timesTotal(after) - timesTotal(before)
	return percentOf(user, total)
}

func timesTotal(t cpu.TimesStat) float64 {
	return t.User + t.System + t.Nice + t.Idle + t.Iowait + t.Irq + t.Softirq + t.Steal
}

func totalTimes(ctx context.Context) (cpu.TimesStat, error) {
	all, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return cpu.TimesStat{}, err
	}
	if len(all) == 0 {
		return cpu.TimesStat{}, ErrParse
	}
	return all[0], nil
}
