// Package system provides process-level run statistics and reusable pixel
// buffers for the preview renderer.
package system

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"smartzoom/internal/pipeline"
)

// ResourceUsage is a snapshot of this process's resource consumption.
type ResourceUsage struct {
	RSS       uint64
	CPUUser   time.Duration
	CPUSystem time.Duration
}

// Usage samples the current process. Fields that cannot be read stay zero;
// only a process lookup failure is an error.
func Usage() (ResourceUsage, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return ResourceUsage{}, fmt.Errorf("inspect process: %w", err)
	}

	var usage ResourceUsage
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		usage.RSS = mem.RSS
	}
	if times, err := proc.Times(); err == nil && times != nil {
		usage.CPUUser = time.Duration(times.User * float64(time.Second))
		usage.CPUSystem = time.Duration(times.System * float64(time.Second))
	}
	return usage, nil
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// FormatReport renders the per-stage timing breakdown of one run, plus the
// process resource snapshot when it is available.
func FormatReport(res *pipeline.Result) string {
	var b strings.Builder
	b.WriteString("--- [PERFORMANCE REPORT] ---\n")
	fmt.Fprintf(&b, "Recording: %s (%.2fs)\n", res.Name, res.Duration)
	fmt.Fprintf(&b, "Total Time: %v\n", res.Stats.Total)
	fmt.Fprintf(&b, "Timeline: %v\n", res.Stats.Timeline)
	fmt.Fprintf(&b, "Classify: %v\n", res.Stats.Classify)
	fmt.Fprintf(&b, "Segment: %v\n", res.Stats.Segment)
	fmt.Fprintf(&b, "Frame: %v\n", res.Stats.Frame)
	fmt.Fprintf(&b, "Transitions: %v\n", res.Stats.Transitions)
	if total := res.Stats.Total.Seconds(); total > 0 && res.Duration > 0 {
		fmt.Fprintf(&b, "Realtime Factor: %.0fx\n", res.Duration/total)
	}
	if usage, err := Usage(); err == nil && usage.RSS > 0 {
		fmt.Fprintf(&b, "RSS: %s\n", FormatBytes(usage.RSS))
		fmt.Fprintf(&b, "CPU: %v user, %v system\n",
			usage.CPUUser.Round(time.Millisecond), usage.CPUSystem.Round(time.Millisecond))
	}
	b.WriteString("----------------------------\n")
	return b.String()
}
