package handlers

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/amarnathcjd/gogram/telegram"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
)

// AppStats holds both process and system info.
type AppStats struct {
	Uptime          string
	ProcessID       int32
	NumGoroutines   int
	CPUPercent      float64
	MemUsed         string
	MemPerc         float64
	MemLimit        string
	GoVersion       string
	Arch            string
	OS              string
	SystemCPUUsage  float64
	SystemMemUsed   string
	SystemMemTotal  string
	SystemDiskUsed  string
	SystemDiskTotal string
}

// Converts bytes to human-readable string.
func humanBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// firstOrZero guards against the empty slice gopsutil returns on error.
func firstOrZero(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return vals[0]
}

// Reads memory limit if running inside Docker.
func readContainerMemLimit() uint64 {
	if data, err := os.ReadFile("/sys/fs/cgroup/memory/memory.limit_in_bytes"); err == nil {
		if limit, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64); err == nil {
			if limit > 0 && limit < (1<<60) {
				return limit
			}
		}
	}

	if data, err := os.ReadFile("/sys/fs/cgroup/memory.max"); err == nil {
		val := strings.TrimSpace(string(data))
		if val != "max" {
			if limit, err := strconv.ParseUint(val, 10, 64); err == nil && limit > 0 && limit < (1<<60) {
				return limit
			}
		}
	}
	return 0
}

// Collects both app and system-level stats.
func gatherAppStats() (*AppStats, error) {
	pid := int32(os.Getpid())
	proc, err := process.NewProcess(pid)
	if err != nil {
		return nil, err
	}

	cpuPercent, _ := proc.CPUPercent()
	memInfo, _ := proc.MemoryInfo()
	memPerc, _ := proc.MemoryPercent()

	// ---- System stats ----
	vmem, _ := mem.VirtualMemory()
	cpus, _ := cpu.Percent(0, false)

	// Choose root path for disk usage
	rootPath := "/"
	if runtime.GOOS == "windows" {
		rootPath = "C:\\"
	}
	diskUsage, _ := disk.Usage(rootPath)

	stats := &AppStats{
		Uptime:          time.Since(startTime).Round(time.Second).String(),
		ProcessID:       pid,
		NumGoroutines:   runtime.NumGoroutine(),
		CPUPercent:      cpuPercent,
		MemUsed:         humanBytes(memInfo.RSS),
		MemPerc:         float64(memPerc),
		GoVersion:       runtime.Version(),
		Arch:            fmt.Sprintf("%s (%d CPU cores)", runtime.GOARCH, runtime.NumCPU()),
		OS:              runtime.GOOS,
		SystemCPUUsage:  firstOrZero(cpus),
		SystemMemUsed:   humanBytes(vmem.Used),
		SystemMemTotal:  humanBytes(vmem.Total),
		SystemDiskUsed:  humanBytes(diskUsage.Used),
		SystemDiskTotal: humanBytes(diskUsage.Total),
	}

	if limit := readContainerMemLimit(); limit > 0 {
		stats.MemLimit = humanBytes(limit)
	}

	return stats, nil
}

// Handles /stats command.
func sysStatsHandler(msg *telegram.NewMessage) error {
	sysMsg, err := msg.Reply("Gathering stats...")
	if err != nil {
		return err
	}

	info, err := gatherAppStats()
	if err != nil {
		_, _ = sysMsg.Edit(fmt.Sprintf("Failed to gather stats: %v", err))
		return nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 %s\n", msg.Client.Me().FirstName))
	sb.WriteString(strings.Repeat("-", 30) + "\n")
	sb.WriteString(fmt.Sprintf("Uptime: %s\n", info.Uptime))
	sb.WriteString(fmt.Sprintf("CPU: %.1f%%\n", info.CPUPercent))
	if info.MemLimit != "" {
		sb.WriteString(fmt.Sprintf("Memory: %s / %s (%.1f%%)\n", info.MemUsed, info.MemLimit, info.MemPerc))
	} else {
		sb.WriteString(fmt.Sprintf("Memory: %s (%.1f%%)\n", info.MemUsed, info.MemPerc))
	}
	sb.WriteString(fmt.Sprintf("Goroutines: %d\n", info.NumGoroutines))
	sb.WriteString(fmt.Sprintf("Go: %s on %s %s\n", info.GoVersion, info.OS, info.Arch))
	sb.WriteString(strings.Repeat("-", 30) + "\n")
	sb.WriteString(fmt.Sprintf("Server CPU: %.1f%%\n", info.SystemCPUUsage))
	sb.WriteString(fmt.Sprintf("Server RAM: %s / %s\n", info.SystemMemUsed, info.SystemMemTotal))
	sb.WriteString(fmt.Sprintf("Server disk: %s / %s", info.SystemDiskUsed, info.SystemDiskTotal))

	_, _ = sysMsg.Edit(sb.String())
	return nil
}
