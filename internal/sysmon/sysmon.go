// Package sysmon samples system and process resource usage for display while
// a merge runs. Merges hold every source and the output in memory, so the
// process resident size is the figure users watch.
package sysmon

import (
	"context"
	"os"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Stats holds a single snapshot of resource usage.
type Stats struct {
	CPUPercent float64 // system-wide, 0.0 .. 100.0
	MemPercent float64 // system-wide, 0.0 .. 100.0
	ProcessRSS uint64  // resident set size of this process, in bytes
}

// Sampler reads Stats for one process.
type Sampler struct {
	proc *process.Process
}

// NewSampler returns a sampler for the current process. Process figures are
// left at zero when the process handle cannot be opened.
func NewSampler() *Sampler {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return &Sampler{}
	}
	return &Sampler{proc: p}
}

// Sample collects a snapshot. CPU uses interval=0 (delta since last call).
// Fields whose source fails are left at zero.
func (s *Sampler) Sample(ctx context.Context) Stats {
	var st Stats
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		st.CPUPercent = pcts[0]
	}
	if vmem, err := mem.VirtualMemoryWithContext(ctx); err == nil && vmem != nil {
		st.MemPercent = vmem.UsedPercent
	}
	if s.proc != nil {
		if info, err := s.proc.MemoryInfoWithContext(ctx); err == nil && info != nil {
			st.ProcessRSS = info.RSS
		}
	}
	return st
}
