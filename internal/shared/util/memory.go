package util

import (
	"fmt"
	"runtime"
)

// RuntimeStats is a point-in-time view of the process used by /health.
type RuntimeStats struct {
	HeapAllocMB uint64
	HeapObjects uint64
	NumGC       uint32
	Goroutines  int
}

func ReadRuntimeStats() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeStats{
		HeapAllocMB: m.HeapAlloc / 1024 / 1024,
		HeapObjects: m.HeapObjects,
		NumGC:       m.NumGC,
		Goroutines:  runtime.NumGoroutine(),
	}
}

func (s RuntimeStats) String() string {
	return fmt.Sprintf("%d MB heap, %d objects, %d gc cycles, %d goroutines",
		s.HeapAllocMB, s.HeapObjects, s.NumGC, s.Goroutines)
}
