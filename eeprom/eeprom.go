package eeprom

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ardnew/softeeprom/hal"
	"github.com/ardnew/softeeprom/pkg"
)

// DefaultAddress is the base slave address of 24xx-series EEPROMs.
const DefaultAddress hal.Address = 0x50

// Write-cycle acknowledgment polling defaults.
const (
	DefaultPollAttempts = 100
	DefaultPollInterval = time.Millisecond
)

// AddressSpace is the size of the 16-bit memory address space.
const AddressSpace = 1 << 16

// Config holds driver tuning. Zero fields select the defaults.
type Config struct {
	PollAttempts int           // Acknowledgment probes after each byte write
	PollInterval time.Duration // Delay between probes
	Size         int           // Capacity bounding ReadAt/WriteAt (≤ AddressSpace)
	Probe        hal.ProbeMode // How presence is probed
}

// DefaultConfig returns the default driver configuration.
func DefaultConfig() Config {
	return Config{
		PollAttempts: DefaultPollAttempts,
		PollInterval: DefaultPollInterval,
		Size:         AddressSpace,
		Probe:        hal.ProbeRead,
	}
}

// normalize fills zero fields with defaults.
func (c Config) normalize() Config {
	d := DefaultConfig()
	if c.PollAttempts <= 0 {
		c.PollAttempts = d.PollAttempts
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.Size <= 0 || c.Size > AddressSpace {
		c.Size = d.Size
	}
	return c
}

// Driver reads and writes an I²C EEPROM with 16-bit memory addressing.
//
// Every operation issues bus transactions immediately; there is no cache.
// A Driver is not safe for concurrent use.
type Driver struct {
	dev  hal.Device
	cfg  Config
	open bool

	// transaction scratch
	buf [3]byte
}

// New returns an unopened driver with the given configuration.
func New(cfg Config) *Driver {
	return &Driver{cfg: cfg.normalize()}
}

// Open creates a driver bound to addr on bus and checks that the device
// responds.
func Open(ctx context.Context, bus hal.Bus, addr hal.Address, cfg Config) (*Driver, error) {
	d := New(cfg)
	if err := d.Open(ctx, bus, addr); err != nil {
		return nil, err
	}
	return d, nil
}

// Open binds the driver to addr on bus, replacing any previous binding, and
// checks that the device responds. A nil bus fails with pkg.ErrBusNotReady
// without constructing a device binding.
func (d *Driver) Open(ctx context.Context, bus hal.Bus, addr hal.Address) error {
	d.open = false
	if bus == nil {
		pkg.LogWarn(pkg.ComponentEEPROM, "open without bus", "addr", addr)
		return fmt.Errorf("eeprom %s: %w", addr, pkg.ErrBusNotReady)
	}
	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}

	d.dev = hal.NewDevice(bus, addr)
	d.dev.SetProbeMode(d.cfg.Probe)

	if err := d.dev.Open(); err != nil {
		return fmt.Errorf("eeprom %s: %w", addr, err)
	}
	d.open = true

	pkg.LogInfo(pkg.ComponentEEPROM, "device opened",
		"addr", addr,
		"probe", d.cfg.Probe,
		"pollAttempts", d.cfg.PollAttempts,
		"pollInterval", d.cfg.PollInterval)
	return nil
}

// IsOpen reports whether the last Open succeeded.
func (d *Driver) IsOpen() bool {
	return d.open
}

// Address returns the slave address of the bound device.
func (d *Driver) Address() hal.Address {
	return d.dev.Addr()
}

// Config returns the effective configuration.
func (d *Driver) Config() Config {
	return d.cfg
}

// Detected reports whether the device currently acknowledges its address.
// It is false while the chip is in an internal write cycle.
func (d *Driver) Detected() bool {
	return d.open && d.dev.Detected()
}

// WriteByteAt stores value at addr and waits for the chip to finish its
// write cycle.
//
// The write is one 3-byte transaction (address high, address low, value).
// If it fails, the bus error is returned without polling. Otherwise the
// device is probed up to PollAttempts times, PollInterval apart; the first
// acknowledgment returns nil, and an exhausted budget returns pkg.ErrTimeout.
// A probe failing with anything but a NAK ends polling with that error, and
// cancellation returns pkg.ErrCancelled.
func (d *Driver) WriteByteAt(ctx context.Context, addr uint16, value byte) error {
	if !d.open {
		return pkg.ErrNotOpen
	}
	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}

	d.buf[0] = byte(addr >> 8)
	d.buf[1] = byte(addr)
	d.buf[2] = value
	if err := d.dev.Write(d.buf[:3]); err != nil {
		return fmt.Errorf("eeprom %s: write %#04x: %w", d.dev.Addr(), addr, err)
	}

	polls, err := d.waitReady(ctx)
	if err != nil {
		pkg.LogDebug(pkg.ComponentEEPROM, "write not acknowledged",
			"addr", d.dev.Addr(), "mem", addr, "polls", polls, "error", err)
		return fmt.Errorf("eeprom %s: write %#04x: %w", d.dev.Addr(), addr, err)
	}
	return nil
}

// waitReady polls for acknowledgment and returns the number of probes issued.
// Only a NAK means the write cycle is still running; any other probe failure
// is returned at once.
func (d *Driver) waitReady(ctx context.Context) (int, error) {
	var timer *time.Timer
	for n := 1; n <= d.cfg.PollAttempts; n++ {
		err := d.dev.Probe()
		if err == nil {
			if timer != nil {
				timer.Stop()
			}
			return n, nil
		}
		if !errors.Is(err, pkg.ErrNAK) {
			if timer != nil {
				timer.Stop()
			}
			return n, fmt.Errorf("poll %d: %w", n, err)
		}
		if n == d.cfg.PollAttempts {
			break
		}
		if timer == nil {
			timer = time.NewTimer(d.cfg.PollInterval)
		} else {
			timer.Reset(d.cfg.PollInterval)
		}
		select {
		case <-ctx.Done():
			timer.Stop()
			return n, cancelled(ctx.Err())
		case <-timer.C:
		}
	}
	return d.cfg.PollAttempts, fmt.Errorf("%w after %d polls", pkg.ErrTimeout, d.cfg.PollAttempts)
}

// cancelled marks a context error as pkg.ErrCancelled, keeping the context
// error in the chain.
func cancelled(err error) error {
	return fmt.Errorf("%w: %w", pkg.ErrCancelled, err)
}

// ReadByteAt returns the byte stored at addr using one combined
// write-then-read transaction.
func (d *Driver) ReadByteAt(ctx context.Context, addr uint16) (byte, error) {
	if !d.open {
		return 0, pkg.ErrNotOpen
	}
	if err := ctx.Err(); err != nil {
		return 0, cancelled(err)
	}

	d.buf[0] = byte(addr >> 8)
	d.buf[1] = byte(addr)
	if err := d.dev.WriteThenRead(d.buf[:2], d.buf[2:3]); err != nil {
		return 0, fmt.Errorf("eeprom %s: read %#04x: %w", d.dev.Addr(), addr, err)
	}
	return d.buf[2], nil
}

// WriteBlock writes buf starting at addr, one byte (and one write cycle) at
// a time. The address wraps at the top of the 16-bit space.
//
// It stops at the first failure and returns the number of bytes committed
// before it; those bytes stay written.
func (d *Driver) WriteBlock(ctx context.Context, addr uint16, buf []byte) (int, error) {
	if len(buf) > AddressSpace {
		return 0, fmt.Errorf("%w: block of %d bytes exceeds address space", pkg.ErrInvalidParameter, len(buf))
	}
	for i, b := range buf {
		if err := d.WriteByteAt(ctx, addr+uint16(i), b); err != nil {
			pkg.LogDebug(pkg.ComponentEEPROM, "block write stopped", "start", addr, "written", i, "len", len(buf))
			return i, err
		}
	}
	return len(buf), nil
}

// ReadBlock fills buf from consecutive addresses starting at addr, one
// write-then-read transaction per byte.
//
// It stops at the first failure and returns the number of bytes stored;
// buf[n:] is left unmodified.
func (d *Driver) ReadBlock(ctx context.Context, addr uint16, buf []byte) (int, error) {
	if len(buf) > AddressSpace {
		return 0, fmt.Errorf("%w: block of %d bytes exceeds address space", pkg.ErrInvalidParameter, len(buf))
	}
	for i := range buf {
		b, err := d.ReadByteAt(ctx, addr+uint16(i))
		if err != nil {
			pkg.LogDebug(pkg.ComponentEEPROM, "block read stopped", "start", addr, "read", i, "len", len(buf))
			return i, err
		}
		buf[i] = b
	}
	return len(buf), nil
}

// Fill writes n copies of value starting at addr. It fails fast like
// WriteBlock.
func (d *Driver) Fill(ctx context.Context, addr uint16, n int, value byte) (int, error) {
	if n < 0 || n > AddressSpace {
		return 0, fmt.Errorf("%w: fill length %d", pkg.ErrInvalidParameter, n)
	}
	for i := 0; i < n; i++ {
		if err := d.WriteByteAt(ctx, addr+uint16(i), value); err != nil {
			return i, err
		}
	}
	return n, nil
}
