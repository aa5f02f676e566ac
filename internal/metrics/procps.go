package metrics

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/llehouerou/fourbraillebars/internal/errmsg"
)

const mebibyte = 1 << 20

// TotalUsedFree is one row of `free -m`, in MiB.
type TotalUsedFree struct {
	Total int
	Used  int
	Free  int
}

// FreeMem is the parsed output of `free -m`.
type FreeMem struct {
	Mem  TotalUsedFree
	Swap TotalUsedFree
}

// CPUUsage is the `%Cpu(s):` summary line of `top`, in percent.
type CPUUsage struct {
	User    float64 // us
	System  float64 // sy
	Nice    float64 // ni
	Idle    float64 // id
	IOWait  float64 // wa
	HardIRQ float64 // hi
	SoftIRQ float64 // si
	Steal   float64 // st
}

// ParseFree parses the Mem: and Swap: rows printed by `free -m`.
func ParseFree(out []byte) (FreeMem, error) {
	var fm FreeMem
	var sawMem bool

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		var dst *TotalUsedFree
		switch fields[0] {
		case "Mem:":
			dst = &fm.Mem
			sawMem = true
		case "Swap:":
			dst = &fm.Swap
		default:
			continue
		}
		row, err := parseTotalUsedFree(fields[1:])
		if err != nil {
			return FreeMem{}, fmt.Errorf("free %s %w", fields[0], err)
		}
		*dst = row
	}
	if err := sc.Err(); err != nil {
		return FreeMem{}, err
	}
	if !sawMem {
		return FreeMem{}, fmt.Errorf("free: %w: no Mem: row", ErrParse)
	}
	return fm, nil
}

func parseTotalUsedFree(fields []string) (TotalUsedFree, error) {
	if len(fields) < 3 {
		return TotalUsedFree{}, fmt.Errorf("%w: want 3 columns, got %d", ErrParse, len(fields))
	}
	var vals [3]int
	for i := range vals {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return TotalUsedFree{}, fmt.Errorf("%w: %q", ErrParse, fields[i])
		}
		vals[i] = n
	}
	return TotalUsedFree{Total: vals[0], Used: vals[1], Free: vals[2]}, nil
}

// ParseTop parses the `%Cpu(s):` line printed by `top -b -n1`.
//
// Example: %Cpu(s):  3.1 us,  1.6 sy,  0.0 ni, 95.3 id,  0.0 wa,  0.0 hi,  0.0 si,  0.0 st
func ParseTop(out []byte) (CPUUsage, error) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		rest, ok := strings.CutPrefix(line, "%Cpu(s):")
		if !ok {
			continue
		}
		return parseCPULine(rest)
	}
	if err := sc.Err(); err != nil {
		return CPUUsage{}, err
	}
	return CPUUsage{}, fmt.Errorf("top: %w: no %%Cpu(s): line", ErrParse)
}

func parseCPULine(s string) (CPUUsage, error) {
	vals := make(map[string]float64, 8)
	for part := range strings.SplitSeq(s, ",") {
		fields := strings.Fields(part)
		if len(fields) != 2 {
			return CPUUsage{}, fmt.Errorf("top: %w: %q", ErrParse, part)
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return CPUUsage{}, fmt.Errorf("top: %w: %q", ErrParse, part)
		}
		vals[fields[1]] = v
	}

	var u CPUUsage
	for key, dst := range map[string]*float64{
		"us": &u.User, "sy": &u.System, "ni": &u.Nice, "id": &u.Idle,
		"wa": &u.IOWait, "hi": &u.HardIRQ, "si": &u.SoftIRQ, "st": &u.Steal,
	} {
		v, ok := vals[key]
		if !ok {
			return CPUUsage{}, fmt.Errorf("top: %w: missing %q", ErrParse, key)
		}
		*dst = v
	}
	return u, nil
}

// Procps reads CPU and memory usage by running `top` and `free`.
type Procps struct {
	Runner Runner
}

// NewProcps returns a Procps that runs the real tools.
func NewProcps() *Procps {
	return &Procps{Runner: ExecRunner{}}
}

// Host implements HostReader.
func (p *Procps) Host(ctx context.Context) (HostStats, error) {
	topOut, err := p.Runner.Run(ctx, "top", "-b", "-n1")
	if err != nil {
		return HostStats{}, errmsg.Error(errmsg.OpReadCPU, err)
	}
	cpu, err := ParseTop(topOut)
	if err != nil {
		return HostStats{}, errmsg.Error(errmsg.OpReadCPU, err)
	}

	freeOut, err := p.Runner.Run(ctx, "free", "-m")
	if err != nil {
		return HostStats{}, errmsg.Error(errmsg.OpReadMemory, err)
	}
	fm, err := ParseFree(freeOut)
	if err != nil {
		return HostStats{}, errmsg.Error(errmsg.OpReadMemory, err)
	}

	return HostStats{
		CPUUser:       cpu.User,
		RAMUsed:       percentOf(float64(fm.Mem.Used), float64(fm.Mem.Total)),
		RAMTotalBytes: mibToBytes(fm.Mem.Total),
		RAMUsedBytes:  mibToBytes(fm.Mem.Used),
	}, nil
}

func mibToBytes(mib int) uint64 {
	if mib <= 0 {
		return 0
	}
	return uint64(mib) * mebibyte
}
