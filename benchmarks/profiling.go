package benchmarks

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"runtime/pprof"
)

var (
	cpuprofile string
	memprofile string
)

// startProfiling starts the cpu profile when requested. The returned
// function stops it and writes the memory profile.
func startProfiling(out io.Writer, savePath string) (func() error, error) {
	var cpuFile *os.File
	if cpuprofile != "" {
		cpuProfPath := path.Join(savePath, cpuprofile)
		fmt.Fprintln(out, "Profiling CPU to", cpuProfPath)
		f, err := os.Create(cpuProfPath)
		if err != nil {
			return nil, fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return nil, fmt.Errorf("could not start CPU profile: %w", err)
		}
		cpuFile = f
	}

	return func() error {
		if cpuFile != nil {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}
		if memprofile == "" {
			return nil
		}
		memProfPath := path.Join(savePath, memprofile)
		fmt.Fprintln(out, "Profiling Memory to", memProfPath)
		f, err := os.Create(memProfPath)
		if err != nil {
			return fmt.Errorf("could not create memory profile: %w", err)
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("could not write memory profile: %w", err)
		}
		return nil
	}, nil
}
