// Package tuner provides resource detection and worker configuration
// calculation for the hashing engine. It detects system resources like
// CPU cores and RAM, then derives worker-pool bounds and a memory
// ceiling suited to I/O-bound digest work.
package tuner

// SystemResources contains detected system resources.
type SystemResources struct {
	// CPUCores is the number of logical CPU cores available.
	CPUCores int

	// TotalRAM is the total physical RAM in bytes.
	TotalRAM int64

	// AvailableRAM is the available (free) RAM in bytes.
	// This may be an estimate based on system heuristics.
	AvailableRAM int64
}
