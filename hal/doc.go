// Package hal defines the Hardware Abstraction Layer between the EEPROM
// driver and I²C bus hardware.
//
// The HAL is deliberately one method wide. A [Bus] performs a single
// combined write-then-read transaction against a slave address; everything
// a memory device needs (register/offset writes, reads, presence probes)
// is expressed with that primitive.
//
// # Design Principles
//
// The HAL is designed to be:
//   - Minimal: one transaction primitive, no bus state machine
//   - Portable: identical to TinyGo's machine.I2C.Tx and periph.io's i2c.Bus.Tx
//   - Explicit: there is no process-wide default bus; callers pass one in
//
// # Devices
//
// [Device] binds a bus to a 7-bit [Address]. It is a value type so a driver
// can own it directly for its lifetime without a separate allocation.
//
// # Backends
//
// Bus implementations live in subpackages:
//   - [github.com/ardnew/softeeprom/hal/periph]: host buses via periph.io
//   - [github.com/ardnew/softeeprom/hal/linux]: raw /dev/i2c-N via ioctl
//   - [github.com/ardnew/softeeprom/hal/tinygo]: machine.I2C on microcontrollers
//   - [github.com/ardnew/softeeprom/hal/fifo]: a bus tunnelled over named pipes
//   - [github.com/ardnew/softeeprom/hal/sim]: an in-memory EEPROM model
//
// # Example
//
//	dev := hal.NewDevice(bus, 0x50)
//	if err := dev.Open(); err != nil {
//	    log.Fatal(err)
//	}
//	var b [1]byte
//	err := dev.WriteThenRead([]byte{0x00, 0x10}, b[:])
package hal
