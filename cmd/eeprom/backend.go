package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ardnew/softeeprom/eeprom"
	"github.com/ardnew/softeeprom/hal"
	"github.com/ardnew/softeeprom/hal/fifo"
	"github.com/ardnew/softeeprom/hal/periph"
	"github.com/ardnew/softeeprom/hal/sim"
	"github.com/ardnew/softeeprom/pkg"
)

// Bus backends.
const (
	backendPeriph = "periph"
	backendLinux  = "linux"
	backendFifo   = "fifo"
	backendSim    = "sim"
)

// busCloser is a bus the command owns and must release.
type busCloser interface {
	hal.Bus
	io.Closer
}

// openBus opens the configured backend.
func openBus(s settings) (busCloser, error) {
	switch s.Backend {
	case backendPeriph:
		b, err := periph.Open(s.BusName)
		if err != nil {
			return nil, err
		}
		if s.BusSpeed > 0 {
			if err := b.SetSpeed(s.BusSpeed); err != nil {
				b.Close()
				return nil, err
			}
		}
		return b, nil
	case backendLinux:
		return openLinux(s.BusName)
	case backendFifo:
		b, err := fifo.Dial(s.FifoDir)
		if err != nil {
			return nil, err
		}
		return b, nil
	case backendSim:
		b, err := openSimImage(s.BusName, s.Address, s.Driver.Size)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: backend %q", pkg.ErrInvalidParameter, s.Backend)
}

// simImage is an in-process simulated bus whose memory persists in an
// image file between invocations.
type simImage struct {
	*sim.Bus
	chip *sim.Chip
	path string
}

// openSimImage attaches a simulated chip at addr, preloaded from path if
// it exists. An empty path gives a blank chip that is discarded on Close.
func openSimImage(path string, addr hal.Address, size int) (*simImage, error) {
	if size <= 0 || size > eeprom.AddressSpace {
		size = sim.DefaultSize
	}
	bus, chip := sim.New(addr, sim.ChipConfig{Size: size})
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := chip.LoadImage(data); err != nil {
				pkg.LogWarn(pkg.ComponentCLI, "sim image rejected", "file", path, "bytes", len(data), "size", size)
				return nil, err
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("%w: %v", pkg.ErrBusNotReady, err)
		}
	}
	return &simImage{Bus: bus, chip: chip, path: path}, nil
}

// Close saves the chip contents to the image file.
func (s *simImage) Close() error {
	s.Bus.Close()
	if s.path == "" {
		return nil
	}
	return os.WriteFile(s.path, s.chip.Bytes(), 0o644)
}
