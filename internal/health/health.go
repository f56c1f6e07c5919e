package health

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Pinger is anything whose reachability decides readiness
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// ClientCounter reports how many clients follow the change feed
type ClientCounter interface {
	ClientCount() int
}

type HealthChecker struct {
	storage   Pinger
	backend   string
	cache     Pinger        // optional
	feed      ClientCounter // optional
	startedAt time.Time
}

type HealthStatus struct {
	Status  string           `json:"status"`
	Storage ComponentHealth  `json:"storage"`
	Cache   *ComponentHealth `json:"cache,omitempty"`
}

type ComponentHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
}

type HostStats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsed    string  `json:"memory_used"`
	MemoryTotal   string  `json:"memory_total"`
	DiskPercent   float64 `json:"disk_percent"`
	DiskUsed      string  `json:"disk_used"`
	DiskTotal     string  `json:"disk_total"`
	Goroutines    int     `json:"goroutines"`
	Uptime        string  `json:"uptime"`
}

type DetailedStatus struct {
	HealthStatus
	Host        HostStats `json:"host"`
	FeedClients int       `json:"feed_clients"`
}

func NewHealthChecker(storage Pinger, backend string, cache Pinger) *HealthChecker {
	return &HealthChecker{storage: storage, backend: backend, cache: cache, startedAt: time.Now()}
}

// WatchFeed makes detailed checks report the change feed's subscribers
func (h *HealthChecker) WatchFeed(feed ClientCounter) *HealthChecker {
	h.feed = feed
	return h
}

// CheckBasic pings the blob store. The cache is reported but never makes
// the service unready, because every cache helper degrades to a no-op.
func (h *HealthChecker) CheckBasic(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:  "healthy",
		Storage: check(ctx, h.backend, h.storage),
	}
	if status.Storage.Status != "healthy" {
		status.Status = "unhealthy"
	}
	if h.cache != nil {
		c := check(ctx, "redis", h.cache)
		status.Cache = &c
	}
	return status
}

func check(ctx context.Context, name string, p Pinger) ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	result := ComponentHealth{
		Name:         name,
		Status:       "healthy",
		ResponseTime: time.Since(start).Milliseconds(),
	}
	if err != nil {
		result.Status = "unhealthy"
		result.Error = err.Error()
	}
	return result
}

// CheckDetailed adds host resource usage to the basic check
func (h *HealthChecker) CheckDetailed(ctx context.Context) DetailedStatus {
	status := DetailedStatus{
		HealthStatus: h.CheckBasic(ctx),
		Host:         h.hostStats(),
	}
	if h.feed != nil {
		status.FeedClients = h.feed.ClientCount()
	}
	return status
}

func (h *HealthChecker) hostStats() HostStats {
	stats := HostStats{
		Goroutines: runtime.NumGoroutine(),
		Uptime:     formatUptime(time.Since(h.startedAt)),
	}
	// Interval 0 compares against the previous call instead of sleeping
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryPercent = vm.UsedPercent
		stats.MemoryUsed = formatBytes(vm.Used)
		stats.MemoryTotal = formatBytes(vm.Total)
	}
	if du, err := disk.Usage("/"); err == nil {
		stats.DiskPercent = du.UsedPercent
		stats.DiskUsed = formatBytes(du.Used)
		stats.DiskTotal = formatBytes(du.Total)
	}
	return stats
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatUptime(d time.Duration) string {
	seconds := int(d.Seconds())
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
