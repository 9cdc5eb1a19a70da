//go:build tinygo

package tinygo

import (
	"machine"

	"github.com/ardnew/softeeprom/hal"
	"github.com/ardnew/softeeprom/pkg"
)

// DefaultFrequency is the standard-mode I²C clock in hertz.
const DefaultFrequency = 100_000

// Bus wraps a configured machine.I2C peripheral.
type Bus struct {
	i2c *machine.I2C
}

// Open configures i2c at freq hertz (0 selects DefaultFrequency) using the
// board's default SCL and SDA pins.
func Open(i2c *machine.I2C, freq uint32) (*Bus, error) {
	if i2c == nil {
		return nil, pkg.ErrBusNotReady
	}
	if freq == 0 {
		freq = DefaultFrequency
	}
	if err := i2c.Configure(machine.I2CConfig{Frequency: freq}); err != nil {
		return nil, err
	}
	return &Bus{i2c: i2c}, nil
}

// Tx implements hal.Bus. Errors are reported as pkg.ErrNAK because the
// peripheral drivers do not distinguish a missing acknowledgment from
// other bus faults.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if err := b.i2c.Tx(addr, w, r); err != nil {
		return pkg.ErrNAK
	}
	return nil
}

// String returns the bus name.
func (b *Bus) String() string {
	return "machine.I2C"
}

var _ hal.Bus = (*Bus)(nil)
