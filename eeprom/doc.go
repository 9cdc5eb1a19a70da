// Package eeprom drives I²C EEPROMs with 16-bit memory addressing, such as
// the 24LC32 through 24LC512 and compatible parts.
//
// It is platform-agnostic and reaches hardware through the single
// transaction primitive of [hal.Bus]. Any TinyGo machine.I2C, periph.io
// i2c.Bus, or backend from the hal subpackages can be passed to [Open].
//
// # Wire Layout
//
// A byte write is one bus write of three bytes: address high, address low,
// value. A byte read is one combined transaction that writes the two
// address bytes and reads one byte after a repeated start.
//
// # Write Completion
//
// After a write the chip runs an internal write cycle during which it does
// not acknowledge its address. [Driver.WriteByteAt] polls the device until
// it acknowledges again, up to [Config.PollAttempts] probes spaced
// [Config.PollInterval] apart (100 × 1 ms by default), and reports
// [pkg.ErrTimeout] if it never does. Only a NAK keeps polling; a probe that
// fails any other way (a closed bus, an adapter error) ends the write with
// that error.
//
// # Errors
//
// [Open] distinguishes an absent device ([pkg.ErrNoDevice]) from a bus that
// cannot complete the probe ([pkg.ErrBus], [pkg.ErrClosed]). Context
// cancellation is reported as [pkg.ErrCancelled] wrapping the context error.
//
// # Block Transfers
//
// [Driver.WriteBlock] and [Driver.ReadBlock] move one byte per transaction
// and stop at the first failure, returning how many bytes were transferred.
// Bytes before the failure remain committed (or stored); nothing is rolled
// back. [Driver.ReadAt] and [Driver.WriteAt] expose the same operations as
// io.ReaderAt and io.WriterAt.
//
// # Example
//
//	bus, err := periph.Open("1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer bus.Close()
//
//	drv, err := eeprom.Open(ctx, bus, eeprom.DefaultAddress, eeprom.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := drv.WriteByteAt(ctx, 0x0010, 0xA5); err != nil {
//	    log.Fatal(err)
//	}
//	v, err := drv.ReadByteAt(ctx, 0x0010)
package eeprom
