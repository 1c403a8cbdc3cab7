// Package gpu reads GPU telemetry from Linux sysfs for the web UI's
// status bar.
package gpu

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const bytesPerGiB = 1073741824

// Stats is one telemetry sample served on /api/gpu.
type Stats struct {
	Power      string  `json:"power"`
	VRAMUsed   string  `json:"vram_used"`
	VRAMTotal  string  `json:"vram_total"`
	Percentage float64 `json:"percentage"`
}

// Collector samples a DRM device directory. Missing or unreadable sysfs
// files degrade to zero values rather than errors: the endpoint must keep
// answering on machines without a supported GPU.
type Collector struct {
	cardPath string
}

// NewCollector creates a collector rooted at the given sysfs device
// directory, e.g. /sys/class/drm/card0/device.
func NewCollector(cardPath string) *Collector {
	return &Collector{cardPath: cardPath}
}

// Sample reads the current power draw and VRAM usage.
func (c *Collector) Sample() Stats {
	stats := Stats{Power: "0W", VRAMUsed: "0", VRAMTotal: "0"}

	// power1_input reports microwatts.
	if data, err := os.ReadFile(filepath.Join(c.cardPath, "hwmon", "hwmon0", "power1_input")); err == nil {
		if uW, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
			stats.Power = fmt.Sprintf("%.1fW", float64(uW)/1000000.0)
		}
	}

	used, errU := c.readFloat("mem_info_vram_used")
	total, errT := c.readFloat("mem_info_vram_total")
	if errU == nil && errT == nil && total > 0 {
		stats.VRAMUsed = fmt.Sprintf("%.1f", used/bytesPerGiB)
		stats.VRAMTotal = fmt.Sprintf("%.1f", total/bytesPerGiB)
		stats.Percentage = used / total * 100
	}

	return stats
}

func (c *Collector) readFloat(name string) (float64, error) {
	data, err := os.ReadFile(filepath.Join(c.cardPath, name))
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
}
