package observability

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/process"
)

// ProcessStats is one sample of the server's resource usage, logged
// periodically by the reporter worker.
type ProcessStats struct {
	CPUPercent  float64
	RSSMb       uint64
	AllocMemMb  uint64
	NumGC       uint32
	Goroutines  int
	Connections int
}

type StatsSampler struct {
	proc *process.Process
}

func NewStatsSampler() (*StatsSampler, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &StatsSampler{proc: proc}, nil
}

// Sample collects current process stats. connections is injected by the
// caller (a registry snapshot count) to keep this package free of
// runtime dependencies.
func (s *StatsSampler) Sample(connections int) ProcessStats {
	stats := ProcessStats{
		Goroutines:  runtime.NumGoroutine(),
		Connections: connections,
	}

	if cpu, err := s.proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	if memInfo, err := s.proc.MemoryInfo(); err == nil {
		stats.RSSMb = memInfo.RSS / 1024 / 1024
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats.AllocMemMb = memStats.Alloc / 1024 / 1024
	stats.NumGC = memStats.NumGC

	return stats
}
