package common

import (
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// ResourceUsage represents current resource usage of the watcher process.
// The headless browser runs as child processes, so child count is tracked
// to spot leaked renderers.
type ResourceUsage struct {
	AllocMB              int64   // Currently allocated memory by application
	SysMB                int64   // System memory used by Go runtime
	Goroutines           int     // Number of goroutines
	ProcessRSSMB         int64   // Resident set size of this process
	ChildProcesses       int     // Number of direct child processes
	SystemMemUsedPercent float64 // System memory used percentage
}

// GetResourceUsage returns current resource usage statistics
func GetResourceUsage() ResourceUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	usage := ResourceUsage{
		AllocMB:    int64(m.Alloc / 1024 / 1024),
		SysMB:      int64(m.Sys / 1024 / 1024),
		Goroutines: runtime.NumGoroutine(),
	}

	if vmStat, err := mem.VirtualMemory(); err == nil {
		usage.SystemMemUsedPercent = vmStat.UsedPercent
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := proc.MemoryInfo(); err == nil && info != nil {
			usage.ProcessRSSMB = int64(info.RSS / 1024 / 1024)
		}
		if children, err := proc.Children(); err == nil {
			usage.ChildProcesses = len(children)
		}
	}

	return usage
}

// MarshalZerologObject lets ResourceUsage be logged with Object().
func (u ResourceUsage) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("alloc_mb", u.AllocMB).
		Int64("sys_mb", u.SysMB).
		Int("goroutines", u.Goroutines).
		Int64("rss_mb", u.ProcessRSSMB).
		Int("children", u.ChildProcesses).
		Float64("system_mem_used_percent", u.SystemMemUsedPercent)
}
