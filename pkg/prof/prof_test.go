//go:build profile

package prof

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEnabled(t *testing.T) {
	if !Enabled {
		t.Error("Enabled = false with the profile tag")
	}
}

func TestStartCPU(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpu.prof")

	if err := StartCPU(path); err != nil {
		t.Fatalf("StartCPU() error = %v", err)
	}
	if !IsCPUActive() {
		t.Error("IsCPUActive() = false, want true")
	}

	// Second start fails fast
	if err := StartCPU(filepath.Join(t.TempDir(), "cpu2.prof")); !errors.Is(err, ErrCPUProfileActive) {
		t.Errorf("StartCPU() error = %v, want %v", err, ErrCPUProfileActive)
	}

	if err := StopCPU(); err != nil {
		t.Errorf("StopCPU() error = %v", err)
	}
	if IsCPUActive() {
		t.Error("IsCPUActive() = true after StopCPU()")
	}
	if err := StopCPU(); err != nil {
		t.Errorf("StopCPU() when inactive error = %v", err)
	}
}

func TestStartCPU_InvalidPath(t *testing.T) {
	if err := StartCPU("/nonexistent/directory/cpu.prof"); err == nil {
		t.Error("StartCPU() error = nil, want error for invalid path")
		StopCPU()
	}
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
	}{
		{"heap", ProfileHeap},
		{"allocs", ProfileAllocs},
		{"goroutine", ProfileGoroutine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.name+".prof")
			if err := Write(tt.profile, path); err != nil {
				t.Fatalf("Write(%v) error = %v", tt.profile, err)
			}
			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("os.Stat(%s) error = %v", path, err)
			}
			if info.Size() == 0 {
				t.Errorf("Write(%v) created empty file", tt.profile)
			}
		})
	}
}

func TestWrite_Invalid(t *testing.T) {
	if err := Write(Profile("bogus"), filepath.Join(t.TempDir(), "x.prof")); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("Write(bogus) error = %v, want %v", err, ErrInvalidProfile)
	}
	if err := Write(ProfileHeap, "/nonexistent/directory/heap.prof"); err == nil {
		t.Error("Write() error = nil, want error for invalid path")
	}
}

func TestSession(t *testing.T) {
	dir := t.TempDir()
	cpu := filepath.Join(dir, "cpu.prof")
	mem := filepath.Join(dir, "mem.prof")

	s, err := Start(cpu, mem)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !IsCPUActive() {
		t.Error("IsCPUActive() = false during session")
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}

	for _, path := range []string{cpu, mem} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("profile %s not written: %v", filepath.Base(path), err)
		}
	}
}

func TestSession_Empty(t *testing.T) {
	s, err := Start("", "")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if IsCPUActive() {
		t.Error("IsCPUActive() = true without a CPU path")
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
