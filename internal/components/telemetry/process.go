package telemetry

import (
	"context"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/process"
	"go.opentelemetry.io/otel"
)

const report_process_stats = "process.stats"

// ProcessStats is a point in time reading of this process' resource usage.
type ProcessStats struct {
	CpuPercent  float64
	RssMb       int64
	AllocatedMb int64
	Goroutines  int64
}

// RecordProcessStats reads the current process' resource usage, records it on the
// global otel meter and reports it through tel.
func RecordProcessStats(ctx context.Context, tel API) (ProcessStats, error) {
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		tel.ReportBroken(report_process_stats, err)
		return ProcessStats{}, err
	}
	cpuPercent, err := proc.CPUPercentWithContext(ctx)
	if err != nil {
		tel.ReportBroken(report_process_stats, err)
		return ProcessStats{}, err
	}
	mem, err := proc.MemoryInfoWithContext(ctx)
	if err != nil {
		tel.ReportBroken(report_process_stats, err)
		return ProcessStats{}, err
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := ProcessStats{
		CpuPercent:  cpuPercent,
		RssMb:       int64(mem.RSS / 1_000_000),
		AllocatedMb: int64(memStats.Alloc / 1_000_000),
		Goroutines:  int64(runtime.NumGoroutine()),
	}

	meter := otel.Meter("yst.process")
	cpuGauge, _ := meter.Float64Gauge("cpu_usage")
	rssGauge, _ := meter.Int64Gauge("rss_mb")
	allocGauge, _ := meter.Int64Gauge("allocated_mb")
	goroutineGauge, _ := meter.Int64Gauge("goroutine_count")
	cpuGauge.Record(ctx, stats.CpuPercent)
	rssGauge.Record(ctx, stats.RssMb)
	allocGauge.Record(ctx, stats.AllocatedMb)
	goroutineGauge.Record(ctx, stats.Goroutines)

	tel.ReportCount("process.rss_mb", stats.RssMb)
	tel.ReportCount("process.goroutines", stats.Goroutines)

	return stats, nil
}
