package metrics_collectors

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/mem"
)

// CPUMetricCollector collects CPU usage across all cores.
type CPUMetricCollector struct{}

func (c *CPUMetricCollector) Name() string {
	return "cpu_percent"
}

func (c *CPUMetricCollector) Collect(ctx context.Context) (float64, error) {
	cpuPercentages, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, fmt.Errorf("failed to get CPU usage: %w", err)
	}
	if len(cpuPercentages) == 0 {
		return 0, errors.New("CPU usage data is empty")
	}
	return cpuPercentages[0], nil
}

// MemoryMetricCollector collects the percentage of used virtual memory.
type MemoryMetricCollector struct{}

func (m *MemoryMetricCollector) Name() string {
	return "memory_percent"
}

func (m *MemoryMetricCollector) Collect(ctx context.Context) (float64, error) {
	memStats, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve memory statistics: %w", err)
	}
	return memStats.UsedPercent, nil
}

// DiskMetricCollector collects the used space of the filesystem holding Path.
type DiskMetricCollector struct {
	Path string // defaults to "/"
}

func (d *DiskMetricCollector) Name() string {
	return "disk_percent"
}

func (d *DiskMetricCollector) Collect(ctx context.Context) (float64, error) {
	path := d.Path
	if path == "" {
		path = "/"
	}
	diskStats, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("failed to get disk usage of %s: %w", path, err)
	}
	return diskStats.UsedPercent, nil
}
