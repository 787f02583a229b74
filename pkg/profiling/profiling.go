// Package profiling captures pprof profiles over the lifetime of the
// fetcher process. A CPU profile runs from Start to Stop; a heap profile is
// written once at Stop, after the final flush has settled.
package profiling

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

// Profiler writes CPU and heap profiles for one process run. Either path may
// be empty, in which case that profile is skipped.
type Profiler struct {
	cpuPath string
	memPath string
	cpuFile *os.File
}

// New creates a profiler targeting the given profile paths.
func New(cpuPath, memPath string) *Profiler {
	return &Profiler{cpuPath: cpuPath, memPath: memPath}
}

// Start begins CPU profiling when a CPU profile path is set.
func (p *Profiler) Start() error {
	if p.cpuPath == "" {
		return nil
	}

	f, err := os.Create(p.cpuPath)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("could not start CPU profile: %w", err)
	}
	p.cpuFile = f
	return nil
}

// Stop finalizes the CPU profile and writes the heap profile. It is safe to
// call after a failed Start.
func (p *Profiler) Stop() error {
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		p.cpuFile.Close()
		p.cpuFile = nil
	}

	if p.memPath == "" {
		return nil
	}

	f, err := os.Create(p.memPath)
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer f.Close()

	runtime.GC() // get up-to-date statistics
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}
	return nil
}

// CPUPath returns the CPU profile destination, if any.
func (p *Profiler) CPUPath() string {
	return p.cpuPath
}

// MemPath returns the heap profile destination, if any.
func (p *Profiler) MemPath() string {
	return p.memPath
}
