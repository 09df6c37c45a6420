package tuner

// Worker configuration limits.
const (
	// maxWorkers is the hard ceiling for any pool. Beyond this the
	// scheduler overhead outweighs the extra disk parallelism.
	maxWorkers = 64

	// minWorkers is the adaptive floor; the pool never shrinks below it.
	minWorkers = 1
)

// Memory ceiling sizing constants.
const (
	// ceilingRAMFraction is the fraction of available RAM the engine is
	// allowed to occupy before the monitor starts shedding workers.
	ceilingRAMFraction = 0.25

	// minMemoryCeiling bounds the ceiling from below so tiny systems
	// still leave room for digest buffers.
	minMemoryCeiling = 128 * 1024 * 1024

	// maxMemoryCeiling bounds the ceiling from above; hashing gains
	// nothing from hoarding more.
	maxMemoryCeiling = 4 * 1024 * 1024 * 1024
)

// OptimalConfig contains tuned pool bounds optimized for the detected
// system resources.
type OptimalConfig struct {
	// InitialWorkers is the worker count the pool starts with.
	InitialWorkers int

	// MinWorkers is the adaptive floor under memory pressure.
	MinWorkers int

	// MaxWorkers is the adaptive ceiling when memory is plentiful.
	MaxWorkers int

	// MemoryCeiling is the memory budget in bytes handed to the monitor.
	MemoryCeiling int64
}

// Calculate returns pool bounds based on system resources.
//
// The calculation logic:
//   - InitialWorkers: NumCPU - digest computation keeps a core busy per
//     worker once the read completes
//   - MaxWorkers: NumCPU * 2 - hashing alternates between disk waits and
//     CPU work, so modest oversubscription helps on fast storage
//   - Both are capped at 64 to avoid excessive context switching
//   - MemoryCeiling is a bounded fraction of available RAM
func Calculate(resources SystemResources) OptimalConfig {
	initial := max(resources.CPUCores, minWorkers)
	initial = min(initial, maxWorkers)

	ceiling := max(resources.CPUCores*2, initial)
	ceiling = min(ceiling, maxWorkers)

	return OptimalConfig{
		InitialWorkers: initial,
		MinWorkers:     minWorkers,
		MaxWorkers:     ceiling,
		MemoryCeiling:  calculateMemoryCeiling(resources.AvailableRAM),
	}
}

// CalculateWithOverride applies a user worker override to the optimal
// config. If workerOverride is greater than 0, it pins the initial and
// maximum worker counts to that value (still respecting the cap of 64).
// If workerOverride is 0 or negative, the calculated values are used.
func CalculateWithOverride(resources SystemResources, workerOverride int) OptimalConfig {
	config := Calculate(resources)

	if workerOverride > 0 {
		workers := min(workerOverride, maxWorkers)
		config.InitialWorkers = workers
		config.MaxWorkers = workers
	}

	return config
}

// calculateMemoryCeiling determines the memory budget from available RAM.
func calculateMemoryCeiling(availableRAM int64) int64 {
	ceiling := int64(float64(availableRAM) * ceilingRAMFraction)

	ceiling = max(ceiling, minMemoryCeiling)
	ceiling = min(ceiling, maxMemoryCeiling)

	return ceiling
}
