//go:build profile

package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"
)

// Enabled reports whether profiling support is compiled in.
const Enabled = true

// Profiling errors.
var (
	// ErrCPUProfileActive indicates CPU profiling is already active.
	ErrCPUProfileActive = errors.New("cpu profile already active")

	// ErrInvalidProfile indicates an unknown snapshot profile name.
	ErrInvalidProfile = errors.New("invalid profile")
)

// Profile names a pprof snapshot profile.
type Profile string

// Snapshot profiles.
const (
	ProfileHeap      Profile = "heap"
	ProfileAllocs    Profile = "allocs"
	ProfileGoroutine Profile = "goroutine"
)

// String returns the profile name.
func (p Profile) String() string {
	return string(p)
}

var (
	cpuMu   sync.Mutex
	cpuFile *os.File
)

// StartCPU starts CPU sampling into a new file at path.
// Returns [ErrCPUProfileActive] if sampling is already running.
func StartCPU(path string) error {
	cpuMu.Lock()
	defer cpuMu.Unlock()

	if cpuFile != nil {
		return ErrCPUProfileActive
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return err
	}
	cpuFile = f
	return nil
}

// StopCPU stops CPU sampling and closes the profile file. It is safe to call
// when sampling is not running.
func StopCPU() error {
	cpuMu.Lock()
	defer cpuMu.Unlock()

	if cpuFile == nil {
		return nil
	}
	pprof.StopCPUProfile()
	err := cpuFile.Close()
	cpuFile = nil
	return err
}

// IsCPUActive reports whether CPU sampling is running.
func IsCPUActive() bool {
	cpuMu.Lock()
	defer cpuMu.Unlock()
	return cpuFile != nil
}

// Write saves a snapshot profile to path. The heap profile is preceded by a
// garbage collection so it reflects live objects only.
func Write(p Profile, path string) error {
	pp := pprof.Lookup(string(p))
	if pp == nil {
		return fmt.Errorf("%w: %q", ErrInvalidProfile, p)
	}
	if p == ProfileHeap {
		runtime.GC()
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pp.WriteTo(f, 0); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Session is one profiling run configured from command line flags.
type Session struct {
	cpu bool
	mem string
}

// Start starts CPU sampling into cpuPath (if set) and arranges for a heap
// profile to be written to memPath (if set) when the session stops.
func Start(cpuPath, memPath string) (*Session, error) {
	s := &Session{mem: memPath}
	if cpuPath != "" {
		if err := StartCPU(cpuPath); err != nil {
			return nil, err
		}
		s.cpu = true
	}
	return s, nil
}

// Stop ends the session. It is safe to call more than once.
func (s *Session) Stop() error {
	var errs []error
	if s.cpu {
		errs = append(errs, StopCPU())
		s.cpu = false
	}
	if s.mem != "" {
		errs = append(errs, Write(ProfileHeap, s.mem))
		s.mem = ""
	}
	return errors.Join(errs...)
}
