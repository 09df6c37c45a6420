//go:build linux

package tuner

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Detect detects available system resources (CPU and RAM).
// On linux, it uses runtime.NumCPU() for CPU cores and the sysinfo
// syscall for memory information.
func Detect() (SystemResources, error) {
	resources := SystemResources{
		CPUCores: runtime.NumCPU(),
	}

	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return resources, fmt.Errorf("sysinfo: %w", err)
	}

	// Sysinfo reports memory in units of info.Unit bytes.
	unit := int64(info.Unit)
	if unit < 1 {
		unit = 1
	}
	resources.TotalRAM = int64(info.Totalram) * unit

	// Freeram undercounts usable memory because the page cache is
	// reclaimable; include buffers as a cheap approximation.
	resources.AvailableRAM = (int64(info.Freeram) + int64(info.Bufferram)) * unit

	return resources, nil
}
