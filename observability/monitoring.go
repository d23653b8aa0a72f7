// Package observability reports process-level telemetry while the server
// runs: memory, CPU, goroutines and the live connection count.
package observability

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// ConnectionCounter exposes the size of the live connection registry.
type ConnectionCounter interface {
	Len() int
}

// Monitor is a supervised worker logging self stats on an interval.
type Monitor struct {
	log         *slog.Logger
	connections ConnectionCounter
	interval    time.Duration
}

func NewMonitor(log *slog.Logger, connections ConnectionCounter, interval time.Duration) *Monitor {
	return &Monitor{log: log, connections: connections, interval: interval}
}

func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			m.log.Debug("Context done, stopping monitor")
			return nil
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				m.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)

			m.log.Info("Server stats",
				"connections", m.connections.Len(),
				"rss_mb", rss/1024/1024,
				"cpu_percent", cpu,
				"alloc_mb", ms.Alloc/1024/1024,
				"num_gc", ms.NumGC,
				"goroutines", runtime.NumGoroutine(),
			)
		}
	}
}

// selfStats retrieves RSS and CPU usage for the given process.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpu, nil
}
