//go:build !profile

package prof

// Enabled reports whether profiling support is compiled in.
const Enabled = false

// Profiling errors (defined for API compatibility but never returned by stubs).
var (
	// ErrCPUProfileActive indicates CPU profiling is already active.
	ErrCPUProfileActive error

	// ErrInvalidProfile indicates an unknown snapshot profile name.
	ErrInvalidProfile error
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

// StartCPU is a no-op when built without the "profile" tag.
func StartCPU(_ string) error { return nil }

// StopCPU is a no-op when built without the "profile" tag.
func StopCPU() error { return nil }

// IsCPUActive always returns false when built without the "profile" tag.
func IsCPUActive() bool { return false }

// Write is a no-op when built without the "profile" tag.
func Write(_ Profile, _ string) error { return nil }

// Session is one profiling run configured from command line flags.
type Session struct{}

// Start returns an inert session when built without the "profile" tag.
func Start(_, _ string) (*Session, error) { return &Session{}, nil }

// Stop is a no-op when built without the "profile" tag.
func (s *Session) Stop() error { return nil }
