package hal

import (
	"errors"
	"fmt"

	"github.com/ardnew/softeeprom/pkg"
)

// Bus is the single I²C primitive every backend provides.
//
// Tx addresses the device at addr, writes w, then (after a repeated start)
// reads len(r) bytes into r, as one combined transaction. A nil or empty w
// or r skips the corresponding phase; both empty is a zero-length write
// used for presence probing.
//
// The signature matches TinyGo's machine.I2C and periph.io's i2c.Bus, so
// both satisfy this interface without adaptation.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
}

// Address is a 7-bit I²C slave address.
type Address uint8

// MaxAddress is the largest valid 7-bit slave address.
const MaxAddress Address = 0x7F

// Valid reports whether a fits in 7 bits.
func (a Address) Valid() bool {
	return a <= MaxAddress
}

// String returns the address in hexadecimal.
func (a Address) String() string {
	return fmt.Sprintf("0x%02x", uint8(a))
}

// ProbeMode selects how a Device checks for acknowledgment.
type ProbeMode uint8

// Probe modes.
const (
	// ProbeRead issues a 1-byte read. 24xx-series EEPROMs do not acknowledge
	// their address while an internal write cycle is in progress, and every
	// adapter supports plain reads.
	ProbeRead ProbeMode = iota

	// ProbeQuickWrite issues a zero-length write. Some adapters (notably
	// SMBus-only controllers) cannot generate it.
	ProbeQuickWrite
)

// String returns the probe mode name.
func (m ProbeMode) String() string {
	switch m {
	case ProbeRead:
		return "read"
	case ProbeQuickWrite:
		return "quick-write"
	default:
		return "unknown"
	}
}

// ParseProbeMode parses a probe mode name as returned by String.
func ParseProbeMode(s string) (ProbeMode, error) {
	switch s {
	case "", "read":
		return ProbeRead, nil
	case "quick-write", "quick":
		return ProbeQuickWrite, nil
	}
	return ProbeRead, fmt.Errorf("%w: probe mode %q", pkg.ErrInvalidParameter, s)
}

// Device binds a bus to one slave address and exposes the transactional
// operations a memory device driver needs.
//
// Device is a small value meant to be embedded in the driver that owns it.
// It is not safe for concurrent use.
type Device struct {
	bus  Bus
	addr Address
	mode ProbeMode

	// scratch for presence probes
	probeBuf [1]byte
}

// NewDevice returns a device binding for addr on bus.
func NewDevice(bus Bus, addr Address) Device {
	return Device{bus: bus, addr: addr}
}

// SetProbeMode selects how Probe and Detected check the device.
func (d *Device) SetProbeMode(m ProbeMode) {
	d.mode = m
}

// ProbeMode returns the configured probe mode.
func (d *Device) ProbeMode() ProbeMode {
	return d.mode
}

// Addr returns the slave address.
func (d *Device) Addr() Address {
	return d.addr
}

// Bus returns the underlying bus.
func (d *Device) Bus() Bus {
	return d.bus
}

// Open validates the binding and checks that the device acknowledges.
// A NAK is reported as pkg.ErrNoDevice; any other bus failure is returned
// as the bus reported it.
func (d *Device) Open() error {
	if d.bus == nil {
		return pkg.ErrBusNotReady
	}
	if !d.addr.Valid() {
		return fmt.Errorf("%w: %s", pkg.ErrInvalidAddress, d.addr)
	}
	if err := d.Probe(); err != nil {
		if errors.Is(err, pkg.ErrNAK) {
			return fmt.Errorf("%w at %s", pkg.ErrNoDevice, d.addr)
		}
		return fmt.Errorf("probe %s: %w", d.addr, err)
	}
	pkg.LogDebug(pkg.ComponentHAL, "device detected", "addr", d.addr, "probe", d.mode)
	return nil
}

// Write sends w to the device in one write transaction.
func (d *Device) Write(w []byte) error {
	return d.bus.Tx(uint16(d.addr), w, nil)
}

// WriteThenRead sends w and reads len(r) bytes into r in one combined
// transaction.
func (d *Device) WriteThenRead(w, r []byte) error {
	return d.bus.Tx(uint16(d.addr), w, r)
}

// Probe issues one presence probe and returns the bus result: nil when the
// device acknowledges, an error wrapping pkg.ErrNAK when it does not.
func (d *Device) Probe() error {
	if d.bus == nil {
		return pkg.ErrBusNotReady
	}
	switch d.mode {
	case ProbeQuickWrite:
		return d.bus.Tx(uint16(d.addr), nil, nil)
	default:
		return d.bus.Tx(uint16(d.addr), nil, d.probeBuf[:])
	}
}

// Detected reports whether the device acknowledges its address.
func (d *Device) Detected() bool {
	return d.Probe() == nil
}
