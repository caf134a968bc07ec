package metrics

import "runtime"

// MemorySnapshot holds a point-in-time memory reading.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes in use by application
	HeapSys      uint64 // bytes obtained from OS for heap
	Sys          uint64 // total bytes obtained from OS
	NumGC        uint32 // number of completed GC cycles
	PauseTotalNs uint64 // cumulative GC pause time
	HeapObjects  uint64 // number of allocated heap objects
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads current memory statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		HeapSys:      m.HeapSys,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
		HeapObjects:  m.HeapObjects,
	}
}

// MergeFootprint compares two snapshots taken around a merge. Merges hold
// every source and the output in memory, so the heap growth is roughly the
// sum of input sizes plus the merged document.
type MergeFootprint struct {
	HeapGrowth int64  // HeapAlloc after minus before; negative if a GC ran
	PeakSys    uint64 // Sys after the merge
	GCCycles   uint32 // GC cycles completed during the merge
}

// Footprint returns the difference between before and after.
func Footprint(before, after MemorySnapshot) MergeFootprint {
	return MergeFootprint{
		HeapGrowth: int64(after.HeapAlloc) - int64(before.HeapAlloc),
		PeakSys:    after.Sys,
		GCCycles:   after.NumGC - before.NumGC,
	}
}
